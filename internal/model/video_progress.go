package model

// VideoProgress 每个 (user, video) 唯一的观看进度记录。
//
// ProgressPercentage 保存的是该视频所属课程的完成百分比，而不是单个视频的
// 播放百分比：每次心跳写入后都会按课程重新计算并写回本行。该字段对外的
// 含义与历史客户端保持一致，课程级聚合另见 CourseProgress。
// IsCompleted 一旦置位不会因后续心跳回退。
// swagger:model VideoProgress
type VideoProgress struct {
	BaseModel
	UserID              uint    `gorm:"uniqueIndex:idx_user_video;not null" json:"userId"`
	VideoID             uint    `gorm:"uniqueIndex:idx_user_video;not null" json:"videoId"`
	ProgressPercentage  float64 `gorm:"default:0" json:"progressPercentage"`
	LastWatchedPosition int     `gorm:"default:0" json:"lastWatchedPosition"` // 秒
	IsCompleted         bool    `gorm:"default:false" json:"isCompleted"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Video Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

func (VideoProgress) TableName() string {
	return "video_progress"
}

// CourseProgress 课程级完成度聚合，读时计算，不落库
// swagger:model CourseProgress
type CourseProgress struct {
	CourseTitle        string  `json:"courseTitle"`
	TotalVideos        int     `json:"totalVideos"`
	CompletedVideos    int     `json:"completedVideos"`
	ProgressPercentage float64 `json:"progressPercentage"`
}
