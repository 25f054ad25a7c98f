package model

import (
	"fmt"
	"time"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartDate   time.Time `gorm:"not null" json:"startDate"`
	EndDate     time.Time `gorm:"not null" json:"endDate"`
	CreatedByID uint      `gorm:"index;not null" json:"createdById"`
	Image       string    `gorm:"size:255" json:"-"` // 课程封面在对象存储中的key

	CreatedBy User       `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"-"`
	Videos    []Video    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"videos,omitempty"`
	Resources []Resource `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Video
type Video struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	ObjectKey   string `gorm:"size:255;not null" json:"-"` // 视频文件key，客户端只拿签名URL
	Thumbnail   string `gorm:"size:255" json:"-"`
	Duration    int    `gorm:"not null" json:"duration"` // 秒
	IsPublished bool   `gorm:"default:true" json:"isPublished"`

	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Video) TableName() string {
	return "videos"
}

// FormattedDuration 格式化为 HH:MM:SS
func (v *Video) FormattedDuration() string {
	h := v.Duration / 3600
	m := (v.Duration % 3600) / 60
	s := v.Duration % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

type ResourceType string

const (
	ResourcePDF        ResourceType = "pdf"
	ResourceWord       ResourceType = "word"
	ResourcePowerPoint ResourceType = "powerpoint"
	ResourceExcel      ResourceType = "excel"
	ResourceLink       ResourceType = "link"
)

// ValidResourceType 校验资源类型是否合法
func ValidResourceType(t string) bool {
	switch ResourceType(t) {
	case ResourcePDF, ResourceWord, ResourcePowerPoint, ResourceExcel, ResourceLink:
		return true
	}
	return false
}

// swagger:model Resource
type Resource struct {
	BaseModel
	CourseID      uint         `gorm:"index;not null" json:"courseId"`
	Title         string       `gorm:"size:255;not null" json:"title"`
	ObjectKey     string       `gorm:"size:255;not null" json:"-"`
	Type          ResourceType `gorm:"size:50;default:'pdf'" json:"type"`
	DownloadCount uint         `gorm:"default:0" json:"downloadCount"`

	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Resource) TableName() string {
	return "resources"
}
