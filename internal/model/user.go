package model

import (
	"time"
)

type UserRole string

const (
	Admin   UserRole = "admin"
	Staff   UserRole = "staff"
	Student UserRole = "student"
)

// swagger:model User
type User struct {
	BaseModel
	Username  string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	FirstName string     `gorm:"size:100" json:"firstName"`
	LastName  string     `gorm:"size:100" json:"lastName"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"size:10;default:'student';index" json:"role"`
	Disabled  bool       `gorm:"default:false" json:"disabled"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`

	Profile Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// IsAdminOrStaff 是否具有管理端权限
func (u *User) IsAdminOrStaff() bool {
	return u.Role == Admin || u.Role == Staff
}

// swagger:model Profile
type Profile struct {
	BaseModel
	UserID  uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Avatar  string `gorm:"size:255" json:"avatar"` // 对象存储key
	Country string `gorm:"size:100" json:"country"`
	About   string `gorm:"type:text" json:"about"`
}

func (Profile) TableName() string {
	return "profiles"
}
