package model

import (
	"time"
)

// Enrollment 选课记录，(user, course) 唯一，重复报名幂等返回已有记录
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID     uint      `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID   uint      `gorm:"uniqueIndex:idx_user_course;not null" json:"courseId"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolledAt"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
