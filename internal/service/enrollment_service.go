package service

import (
	"context"
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	VideoRepo      *repository.VideoRepository
	ProgressRepo   *repository.VideoProgressRepository
	Storage        *StorageService
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	videoRepo *repository.VideoRepository,
	progressRepo *repository.VideoProgressRepository,
	storage *StorageService,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		VideoRepo:      videoRepo,
		ProgressRepo:   progressRepo,
		Storage:        storage,
	}
}

// EnrollResult created=false 表示重复报名，返回的是已有记录
type EnrollResult struct {
	Enrollment *model.Enrollment
	Created    bool
}

// Enroll 幂等报名：同一 (user, course) 重复调用不会产生第二条记录
func (s *EnrollmentService) Enroll(userID, courseID uint) (*EnrollResult, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	enrollment, created, err := s.EnrollmentRepo.GetOrCreate(userID, courseID)
	if err != nil {
		return nil, err
	}

	if created {
		logger.Log.Info("user enrolled",
			zap.Uint("userID", userID),
			zap.Uint("courseID", courseID))
	}
	return &EnrollResult{Enrollment: enrollment, Created: created}, nil
}

// MyCourses 已选课程列表，附带课程级完成百分比
func (s *EnrollmentService) MyCourses(ctx context.Context, userID uint) ([]model.EnrolledCourseSummary, error) {
	enrollments, err := s.EnrollmentRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.EnrolledCourseSummary, 0, len(enrollments))
	for _, e := range enrollments {
		pct, err := s.coursePercentage(userID, e.CourseID)
		if err != nil {
			return nil, err
		}

		imageURL, err := s.Storage.SignedURL(ctx, e.Course.Image)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, model.EnrolledCourseSummary{
			CourseID:           e.CourseID,
			CourseTitle:        e.Course.Title,
			CourseDescription:  e.Course.Description,
			CourseImageURL:     imageURL,
			EnrolledAt:         e.EnrolledAt,
			ProgressPercentage: pct,
		})
	}
	return summaries, nil
}

func (s *EnrollmentService) IsEnrolled(userID, courseID uint) (bool, error) {
	return s.EnrollmentRepo.Exists(userID, courseID)
}

// coursePercentage 完成数 / 视频总数，没有视频的课程按 0 处理
func (s *EnrollmentService) coursePercentage(userID, courseID uint) (float64, error) {
	total, err := s.VideoRepo.CountByCourse(courseID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	completed, err := s.ProgressRepo.CountCompletedInCourse(userID, courseID)
	if err != nil {
		return 0, err
	}
	return float64(completed) / float64(total) * 100, nil
}
