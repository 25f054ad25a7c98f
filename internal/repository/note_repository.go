package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type NoteRepository struct {
	DB *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Create(note *model.Note) error {
	return r.DB.Create(note).Error
}

// FindByIDAndUser 笔记私有，查询始终限定属主
func (r *NoteRepository) FindByIDAndUser(id, userID uint) (*model.Note, error) {
	var note model.Note
	err := r.DB.Where("user_id = ?", userID).First(&note, id).Error
	return &note, err
}

func (r *NoteRepository) FindByUserAndVideo(userID, videoID uint) ([]model.Note, error) {
	var notes []model.Note
	err := r.DB.Where("user_id = ? AND video_id = ?", userID, videoID).
		Order("video_position ASC").
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepository) FindByUser(userID uint) ([]model.Note, error) {
	var notes []model.Note
	err := r.DB.Where("user_id = ?", userID).
		Preload("Video").
		Order("updated_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepository) Update(note *model.Note) error {
	return r.DB.Save(note).Error
}

func (r *NoteRepository) Delete(id, userID uint) (bool, error) {
	result := r.DB.Where("user_id = ?", userID).Delete(&model.Note{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
