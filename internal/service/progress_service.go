package service

import (
	"context"
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressService 播放进度与课程完成度。
// 进度行的 ProgressPercentage 字段保存课程级百分比而非单视频百分比，
// 每次心跳后重算并回写到本次心跳这一行，历史客户端依赖这一口径；
// 其他行保留各自写入时的快照。
type ProgressService struct {
	ProgressRepo   *repository.VideoProgressRepository
	VideoRepo      *repository.VideoRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Storage        *StorageService
}

func NewProgressService(
	progressRepo *repository.VideoProgressRepository,
	videoRepo *repository.VideoRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	storage *StorageService,
) *ProgressService {
	return &ProgressService{
		ProgressRepo:   progressRepo,
		VideoRepo:      videoRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Storage:        storage,
	}
}

type RecordProgressInput struct {
	LastWatchedPosition int  `json:"lastWatchedPosition" binding:"min=0"`
	Completed           bool `json:"completed"`
}

// Record 进度心跳：
//  1. 按 (user, video) 插入或更新位置，完成标记只升不降
//  2. 重算该课程完成百分比（完成数/视频总数，无视频按0）
//  3. 把百分比回写本次心跳的进度行；到 100 时顺带置位完成标记
func (s *ProgressService) Record(userID, videoID uint, input *RecordProgressInput) (*model.VideoProgress, float64, error) {
	if input.LastWatchedPosition < 0 {
		return nil, 0, util.ErrInvalidPosition
	}

	video, err := s.VideoRepo.FindByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrVideoNotFound
		}
		return nil, 0, err
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, video.CourseID)
	if err != nil {
		return nil, 0, err
	}
	if !enrolled {
		return nil, 0, util.ErrNotEnrolled
	}

	completed := input.Completed
	existing, err := s.ProgressRepo.FindByUserAndVideo(userID, videoID)
	if err == nil {
		completed = completed || existing.IsCompleted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}

	progress := &model.VideoProgress{
		UserID:              userID,
		VideoID:             videoID,
		LastWatchedPosition: input.LastWatchedPosition,
		IsCompleted:         completed,
	}
	if err := s.ProgressRepo.Upsert(progress); err != nil {
		return nil, 0, err
	}

	pct, err := s.coursePercentage(userID, video.CourseID)
	if err != nil {
		return nil, 0, err
	}

	if err := s.ProgressRepo.UpdatePercentage(userID, videoID, pct); err != nil {
		return nil, 0, err
	}

	record, err := s.ProgressRepo.FindByUserAndVideo(userID, videoID)
	if err != nil {
		return nil, 0, err
	}

	// 课程全部完成后，本行的完成标记也置位
	if pct == 100 && !record.IsCompleted {
		record.IsCompleted = true
		if err := s.ProgressRepo.Upsert(record); err != nil {
			return nil, 0, err
		}
	}

	return record, pct, nil
}

// CourseProgress 课程级完成度，读时计算
func (s *ProgressService) CourseProgress(userID, courseID uint) (*model.CourseProgress, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	total, err := s.VideoRepo.CountByCourse(courseID)
	if err != nil {
		return nil, err
	}

	var completed int64
	if total > 0 {
		completed, err = s.ProgressRepo.CountCompletedInCourse(userID, courseID)
		if err != nil {
			return nil, err
		}
	}

	pct := 0.0
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}

	return &model.CourseProgress{
		CourseTitle:        course.Title,
		TotalVideos:        int(total),
		CompletedVideos:    int(completed),
		ProgressPercentage: pct,
	}, nil
}

// ContinueWatching 续播列表：未完成且已有播放位置，最近观看在前
func (s *ProgressService) ContinueWatching(ctx context.Context, userID uint, limit int) ([]model.ContinueWatchingItem, error) {
	records, err := s.ProgressRepo.FindInProgressByUser(userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]model.ContinueWatchingItem, 0, len(records))
	for _, r := range records {
		thumbnailURL, err := s.Storage.SignedURL(ctx, r.Video.Thumbnail)
		if err != nil {
			return nil, err
		}
		items = append(items, model.ContinueWatchingItem{
			VideoID:             r.VideoID,
			VideoTitle:          r.Video.Title,
			CourseID:            r.Video.CourseID,
			CourseTitle:         r.Video.Course.Title,
			LastWatchedPosition: r.LastWatchedPosition,
			ProgressPercentage:  r.ProgressPercentage,
			ThumbnailURL:        thumbnailURL,
			UpdatedAt:           r.UpdatedAt,
		})
	}
	return items, nil
}

// History 用户全部观看记录，最近更新在前
func (s *ProgressService) History(userID uint) ([]model.VideoProgress, error) {
	return s.ProgressRepo.FindByUser(userID)
}

// VideoProgressByUser 某用户在某课程下的进度明细
func (s *ProgressService) VideoProgressByUser(userID, courseID uint) ([]model.VideoProgress, error) {
	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}
	return s.ProgressRepo.FindByUserAndCourse(userID, courseID)
}

// AdminVideoProgress 管理端查看某视频全部用户的进度
func (s *ProgressService) AdminVideoProgress(videoID uint) ([]model.VideoProgress, error) {
	if _, err := s.VideoRepo.FindByID(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVideoNotFound
		}
		return nil, err
	}
	return s.ProgressRepo.FindByVideo(videoID)
}

func (s *ProgressService) coursePercentage(userID, courseID uint) (float64, error) {
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
