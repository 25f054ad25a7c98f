package model

import (
	"time"
)

// EnrolledCourseSummary 学生仪表盘中的已选课程卡片
type EnrolledCourseSummary struct {
	CourseID           uint      `json:"courseId"`
	CourseTitle        string    `json:"courseTitle"`
	CourseDescription  string    `json:"courseDescription"`
	CourseImageURL     string    `json:"courseImageUrl,omitempty"`
	EnrolledAt         time.Time `json:"enrolledAt"`
	ProgressPercentage float64   `json:"progressPercentage"`
}

// ContinueWatchingItem 续播列表项，按最近更新倒序
type ContinueWatchingItem struct {
	VideoID             uint      `json:"videoId"`
	VideoTitle          string    `json:"videoTitle"`
	CourseID            uint      `json:"courseId"`
	CourseTitle         string    `json:"courseTitle"`
	LastWatchedPosition int       `json:"lastWatchedPosition"`
	ProgressPercentage  float64   `json:"progressPercentage"`
	ThumbnailURL        string    `json:"thumbnailUrl,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// AvailableCourse 未报名课程推荐
type AvailableCourse struct {
	CourseID       uint      `json:"courseId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	CourseImageURL string    `json:"courseImageUrl,omitempty"`
}

// PersonalDashboard 学生个人仪表盘
// swagger:model PersonalDashboard
type PersonalDashboard struct {
	UserID           uint                    `json:"userId"`
	Name             string                  `json:"name"`
	EnrolledCourses  []EnrolledCourseSummary `json:"enrolledCourses"`
	ContinueWatching []ContinueWatchingItem  `json:"continueWatching"`
	AvailableCourses []AvailableCourse       `json:"availableCourses"`
}

// DailyActiveUsers 某一天产生报名行为的去重用户数
type DailyActiveUsers struct {
	Date             string `json:"date"`
	ActiveUsersCount int64  `json:"activeUsersCount"`
}

// ActiveUserSummary 报名用户总量及周/月活跃
type ActiveUserSummary struct {
	TotalEnrolledUsers int64 `json:"totalEnrolledUsers"`
	WeeklyActiveUsers  int64 `json:"weeklyActiveUsers"`
	MonthlyActiveUsers int64 `json:"monthlyActiveUsers"`
}

// CourseCompletionRate 课程完成率
type CourseCompletionRate struct {
	CourseID       uint    `json:"courseId"`
	CourseTitle    string  `json:"courseTitle"`
	TotalStudents  int64   `json:"totalStudents"`
	CompletionRate float64 `json:"completionRate"`
}

// PlatformStatistics 平台总体统计
type PlatformStatistics struct {
	TotalUsers       int64 `json:"totalUsers"`
	TotalStudents    int64 `json:"totalStudents"`
	TotalCourses     int64 `json:"totalCourses"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalResources   int64 `json:"totalResources"`
	TotalEnrollments int64 `json:"totalEnrollments"`
	TotalDownloads   int64 `json:"totalDownloads"`
}
