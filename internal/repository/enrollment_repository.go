package repository

import (
	"lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// GetOrCreate 幂等报名：(user, course) 已存在则返回现有记录，
// created=false；唯一索引兜底并发下的首次写入
func (r *EnrollmentRepository) GetOrCreate(userID, courseID uint) (*model.Enrollment, bool, error) {
	enrollment := model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}

	result := r.DB.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(&enrollment)
	if result.Error != nil {
		return nil, false, result.Error
	}

	if result.RowsAffected == 0 {
		// 冲突分支：读回已有记录
		var existing model.Enrollment
		err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
		if err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}

	return &enrollment, true, nil
}

func (r *EnrollmentRepository) FindByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Preload("Course").Find(&enrollments).Error
	return enrollments, err
}

// Exists 访问控制谓词：视频/资源/进度操作前都要过这里
func (r *EnrollmentRepository) Exists(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// UserIDsByCourse 某课程全部报名用户，通知扇出的目标集合
func (r *EnrollmentRepository) UserIDsByCourse(courseID uint) ([]uint, error) {
	var userIDs []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// DistinctUserIDs 至少报名过一门课的去重用户
func (r *EnrollmentRepository) DistinctUserIDs() ([]uint, error) {
	var userIDs []uint
	err := r.DB.Model(&model.Enrollment{}).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

func (r *EnrollmentRepository) CourseIDsByUser(userID uint) ([]uint, error) {
	var courseIDs []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &courseIDs).Error
	return courseIDs, err
}

func (r *EnrollmentRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

// CountDistinctUsersSince 活跃统计：since 之后报名过的去重用户数，
// since 为零值时统计全量
func (r *EnrollmentRepository) CountDistinctUsersSince(since time.Time) (int64, error) {
	query := r.DB.Model(&model.Enrollment{}).Distinct("user_id")
	if !since.IsZero() {
		query = query.Where("enrolled_at >= ?", since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// DailyActiveUsers 按天分组的报名去重用户数
func (r *EnrollmentRepository) DailyActiveUsers(since time.Time) ([]model.DailyActiveUsers, error) {
	var rows []model.DailyActiveUsers
	err := r.DB.Model(&model.Enrollment{}).
		Select("DATE(enrolled_at) AS date, COUNT(DISTINCT user_id) AS active_users_count").
		Where("enrolled_at >= ?", since).
		Group("DATE(enrolled_at)").
		Order("date").
		Scan(&rows).Error
	return rows, err
}
