package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// NoteService 学生视频笔记，全部操作限定属主
type NoteService struct {
	NoteRepo       *repository.NoteRepository
	VideoRepo      *repository.VideoRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewNoteService(
	noteRepo *repository.NoteRepository,
	videoRepo *repository.VideoRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *NoteService {
	return &NoteService{
		NoteRepo:       noteRepo,
		VideoRepo:      videoRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

type NoteInput struct {
	Content       string `json:"content" binding:"required"`
	VideoPosition int    `json:"videoPosition" binding:"min=0"`
}

func (s *NoteService) Create(userID, videoID uint, input *NoteInput) (*model.Note, error) {
	video, err := s.VideoRepo.FindByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVideoNotFound
		}
		return nil, err
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, video.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	note := &model.Note{
		UserID:        userID,
		VideoID:       videoID,
		Content:       input.Content,
		VideoPosition: input.VideoPosition,
	}
	if err := s.NoteRepo.Create(note); err != nil {
		return nil, err
	}
	return note, nil
}

// ListByVideo 某视频下当前用户的笔记，按播放位置排序
func (s *NoteService) ListByVideo(userID, videoID uint) ([]model.Note, error) {
	return s.NoteRepo.FindByUserAndVideo(userID, videoID)
}

func (s *NoteService) ListByUser(userID uint) ([]model.Note, error) {
	return s.NoteRepo.FindByUser(userID)
}

func (s *NoteService) Update(noteID, userID uint, input *NoteInput) (*model.Note, error) {
	note, err := s.NoteRepo.FindByIDAndUser(noteID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNoteNotFound
		}
		return nil, err
	}

	note.Content = input.Content
	note.VideoPosition = input.VideoPosition
	if err := s.NoteRepo.Update(note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(noteID, userID uint) error {
	hit, err := s.NoteRepo.Delete(noteID, userID)
	if err != nil {
		return err
	}
	if !hit {
		return util.ErrNoteNotFound
	}
	return nil
}
