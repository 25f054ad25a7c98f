package util

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrUsernameRegistered  = errors.New("该用户名已被注册")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidOTP          = errors.New("invalid or expired OTP")
	ErrNotEnrolled         = errors.New("you are not enrolled in this course")
	ErrCourseNotFound      = errors.New("course not found")
	ErrVideoNotFound       = errors.New("video not found")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrNoteNotFound        = errors.New("note not found")
	ErrNotifNotFound       = errors.New("notification not found")
	ErrInvalidPosition     = errors.New("last watched position cannot be negative")
	ErrInvalidDateRange    = errors.New("end date cannot be earlier than start date")
	ErrInvalidResourceType = errors.New("invalid resource type")
	ErrInvalidVideoExt     = errors.New("unsupported video format")
	ErrEmptyMessage        = errors.New("message is required")
)
