package service

import (
	"context"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
)

const (
	continueWatchingLimit = 5
	availableCoursesLimit = 5
)

// DashboardService 学生个人仪表盘聚合
type DashboardService struct {
	UserRepo    *repository.UserRepository
	CourseRepo  *repository.CourseRepository
	Enrollments *EnrollmentService
	Progress    *ProgressService
	Storage     *StorageService
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	enrollments *EnrollmentService,
	progress *ProgressService,
	storage *StorageService,
) *DashboardService {
	return &DashboardService{
		UserRepo:    userRepo,
		CourseRepo:  courseRepo,
		Enrollments: enrollments,
		Progress:    progress,
		Storage:     storage,
	}
}

// Personal 已选课程 + 续播列表 + 可报名课程推荐
func (s *DashboardService) Personal(ctx context.Context, userID uint) (*model.PersonalDashboard, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	enrolledCourses, err := s.Enrollments.MyCourses(ctx, userID)
	if err != nil {
		return nil, err
	}

	continueWatching, err := s.Progress.ContinueWatching(ctx, userID, continueWatchingLimit)
	if err != nil {
		return nil, err
	}

	enrolledIDs := make([]uint, 0, len(enrolledCourses))
	for _, c := range enrolledCourses {
		enrolledIDs = append(enrolledIDs, c.CourseID)
	}

	latest, err := s.CourseRepo.FindLatestExcluding(enrolledIDs, availableCoursesLimit)
	if err != nil {
		return nil, err
	}

	available := make([]model.AvailableCourse, 0, len(latest))
	for _, course := range latest {
		imageURL, err := s.Storage.SignedURL(ctx, course.Image)
		if err != nil {
			return nil, err
		}
		available = append(available, model.AvailableCourse{
			CourseID:       course.ID,
			Title:          course.Title,
			Description:    course.Description,
			StartDate:      course.StartDate,
			EndDate:        course.EndDate,
			CourseImageURL: imageURL,
		})
	}

	return &model.PersonalDashboard{
		UserID:           user.ID,
		Name:             user.FullName(),
		EnrolledCourses:  enrolledCourses,
		ContinueWatching: continueWatching,
		AvailableCourses: available,
	}, nil
}
