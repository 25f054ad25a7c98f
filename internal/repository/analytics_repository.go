package repository

import (
	"lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// AnalyticsRepository 管理端统计的聚合查询，全部为只读
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func (r *AnalyticsRepository) CountUsers() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *AnalyticsRepository) CountStudents() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("role = ?", model.Student).Count(&count).Error
	return count, err
}

// CountActiveSince 按 last_seen 统计活跃用户
func (r *AnalyticsRepository) CountActiveSince(since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("last_seen >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *AnalyticsRepository) CountRegisteredSince(since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// DailyActiveUsers 最近 days 天按 last_seen 分组的日活
func (r *AnalyticsRepository) DailyActiveUsers(days int) ([]model.DailyActiveUsers, error) {
	since := time.Now().AddDate(0, 0, -days)
	var rows []model.DailyActiveUsers
	err := r.DB.Model(&model.User{}).
		Select("DATE(last_seen) AS date, COUNT(*) AS active_users_count").
		Where("last_seen >= ?", since).
		Group("DATE(last_seen)").
		Order("date").
		Scan(&rows).Error
	return rows, err
}
