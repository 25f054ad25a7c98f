package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) Create(resource *model.Resource) error {
	return r.DB.Create(resource).Error
}

func (r *ResourceRepository) FindByCourseAndID(courseID, resourceID uint) (*model.Resource, error) {
	var resource model.Resource
	err := r.DB.Where("course_id = ?", courseID).First(&resource, resourceID).Error
	return &resource, err
}

func (r *ResourceRepository) FindByCourse(courseID uint) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.DB.Where("course_id = ?", courseID).Order("created_at ASC").Find(&resources).Error
	return resources, err
}

// IncrementDownloadCount 原子自增下载计数
func (r *ResourceRepository) IncrementDownloadCount(id uint) error {
	return r.DB.Model(&model.Resource{}).
		Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1")).
		Error
}

func (r *ResourceRepository) Update(resource *model.Resource) error {
	return r.DB.Save(resource).Error
}

func (r *ResourceRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Resource{}, id).Error
}

func (r *ResourceRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Resource{}).Count(&count).Error
	return count, err
}

func (r *ResourceRepository) SumDownloads() (int64, error) {
	var total int64
	err := r.DB.Model(&model.Resource{}).
		Select("COALESCE(SUM(download_count), 0)").
		Scan(&total).Error
	return total, err
}
