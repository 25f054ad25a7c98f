package service

import (
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
)

// AnalyticsService 管理端运营统计
type AnalyticsService struct {
	AnalyticsRepo  *repository.AnalyticsRepository
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	VideoRepo      *repository.VideoRepository
	ResourceRepo   *repository.ResourceRepository
	ProgressRepo   *repository.VideoProgressRepository
}

func NewAnalyticsService(
	analyticsRepo *repository.AnalyticsRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	videoRepo *repository.VideoRepository,
	resourceRepo *repository.ResourceRepository,
	progressRepo *repository.VideoProgressRepository,
) *AnalyticsService {
	return &AnalyticsService{
		AnalyticsRepo:  analyticsRepo,
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		VideoRepo:      videoRepo,
		ResourceRepo:   resourceRepo,
		ProgressRepo:   progressRepo,
	}
}

// DailyActiveUsers 最近 days 天按报名行为统计的日活
func (s *AnalyticsService) DailyActiveUsers(days int) ([]model.DailyActiveUsers, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.EnrollmentRepo.DailyActiveUsers(since)
}

// ActiveUserSummary 报名用户总量及周/月活跃
func (s *AnalyticsService) ActiveUserSummary() (*model.ActiveUserSummary, error) {
	total, err := s.EnrollmentRepo.CountDistinctUsersSince(time.Time{})
	if err != nil {
		return nil, err
	}

	weekly, err := s.EnrollmentRepo.CountDistinctUsersSince(time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	monthly, err := s.EnrollmentRepo.CountDistinctUsersSince(time.Now().AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}

	return &model.ActiveUserSummary{
		TotalEnrolledUsers: total,
		WeeklyActiveUsers:  weekly,
		MonthlyActiveUsers: monthly,
	}, nil
}

// CompletionRates 每门课的完成率：
// 已完成进度行数 / (报名人数 × 视频数)，无内容或无人报名按 0
func (s *AnalyticsService) CompletionRates() ([]model.CourseCompletionRate, error) {
	courses, err := s.CourseRepo.FindAll()
	if err != nil {
		return nil, err
	}

	rates := make([]model.CourseCompletionRate, 0, len(courses))
	for _, course := range courses {
		students, err := s.EnrollmentRepo.CountByCourse(course.ID)
		if err != nil {
			return nil, err
		}
		videos, err := s.VideoRepo.CountByCourse(course.ID)
		if err != nil {
			return nil, err
		}

		rate := 0.0
		if students > 0 && videos > 0 {
			completed, err := s.ProgressRepo.CountCompletedByCourse(course.ID)
			if err != nil {
				return nil, err
			}
			rate = float64(completed) / float64(students*videos) * 100
		}

		rates = append(rates, model.CourseCompletionRate{
			CourseID:       course.ID,
			CourseTitle:    course.Title,
			TotalStudents:  students,
			CompletionRate: rate,
		})
	}
	return rates, nil
}

// PlatformStatistics 平台总量统计
func (s *AnalyticsService) PlatformStatistics() (*model.PlatformStatistics, error) {
	stats := &model.PlatformStatistics{}

	var err error
	if stats.TotalUsers, err = s.AnalyticsRepo.CountUsers(); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = s.AnalyticsRepo.CountStudents(); err != nil {
		return nil, err
	}
	if stats.TotalCourses, err = s.CourseRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalVideos, err = s.VideoRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalResources, err = s.ResourceRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalEnrollments, err = s.EnrollmentRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalDownloads, err = s.ResourceRepo.SumDownloads(); err != nil {
		return nil, err
	}
	return stats, nil
}
