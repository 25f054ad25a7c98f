package model

import (
	"gorm.io/gorm"
)

// Notification 始终只面向一个用户；课程公告按报名名单展开为 N 行，
// CourseID 为空表示全局通知，两类通知走不同的查询接口。
// swagger:model Notification
type Notification struct {
	BaseModel
	NotificationID string `gorm:"size:36;uniqueIndex;not null" json:"notificationId"`
	UserID         uint   `gorm:"index;not null" json:"userId"`
	CourseID       *uint  `gorm:"index" json:"courseId,omitempty"`
	Message        string `gorm:"type:text;not null" json:"message"`
	IsRead         bool   `gorm:"default:false" json:"isRead"`

	User   User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.NotificationID == "" {
		n.NotificationID = GenerateUUID()
	}
	return
}
