package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	DB *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{DB: db}
}

func (r *VideoRepository) Create(video *model.Video) error {
	return r.DB.Create(video).Error
}

// FindByCourseAndID 限定课程范围查视频，避免跨课程越权访问
func (r *VideoRepository) FindByCourseAndID(courseID, videoID uint) (*model.Video, error) {
	var video model.Video
	err := r.DB.Where("course_id = ?", courseID).First(&video, videoID).Error
	return &video, err
}

func (r *VideoRepository) FindByID(id uint) (*model.Video, error) {
	var video model.Video
	err := r.DB.Preload("Course").First(&video, id).Error
	return &video, err
}

func (r *VideoRepository) FindByCourse(courseID uint) ([]model.Video, error) {
	var videos []model.Video
	err := r.DB.Where("course_id = ?", courseID).Order("created_at ASC").Find(&videos).Error
	return videos, err
}

func (r *VideoRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Video{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *VideoRepository) Update(video *model.Video) error {
	return r.DB.Save(video).Error
}

func (r *VideoRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Video{}, id).Error
}

func (r *VideoRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Video{}).Count(&count).Error
	return count, err
}
