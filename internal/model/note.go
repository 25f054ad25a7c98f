package model

// Note 学生在某个视频上的笔记，VideoPosition 为记录时的播放位置（秒）
// swagger:model Note
type Note struct {
	BaseModel
	UserID        uint   `gorm:"index;not null" json:"userId"`
	VideoID       uint   `gorm:"index;not null" json:"videoId"`
	Content       string `gorm:"type:text;not null" json:"content"`
	VideoPosition int    `gorm:"default:0" json:"videoPosition"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Video Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Note) TableName() string {
	return "notes"
}
