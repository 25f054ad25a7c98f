package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.DB.Create(notification).Error
}

// BulkCreate 课程公告扇出：按报名名单一次性落 N 行
func (r *NotificationRepository) BulkCreate(notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.DB.Create(&notifications).Error
}

// ExistsByUserAndMessage 全局通知的去重谓词：同一用户同一文案只发一次
func (r *NotificationRepository) ExistsByUserAndMessage(userID uint, message string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND message = ?", userID, message).
		Count(&count).Error
	return count > 0, err
}

// FindByUUID 按对外标识查通知，不限属主（管理端修正文案用）
func (r *NotificationRepository) FindByUUID(notificationID string) (*model.Notification, error) {
	var notification model.Notification
	err := r.DB.Where("notification_id = ?", notificationID).
		First(&notification).Error
	return &notification, err
}

// MarkRead 标记已读，限定属主；返回是否命中
func (r *NotificationRepository) MarkRead(notificationID string, userID uint) (bool, error) {
	result := r.DB.Model(&model.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindGlobalByUser 用户的全局通知（course_id 为空），新的在前
func (r *NotificationRepository) FindGlobalByUser(userID uint) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.DB.Where("user_id = ? AND course_id IS NULL", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// FindByCourses 命中给定课程集合的课程通知，新的在前
func (r *NotificationRepository) FindByCourses(courseIDs []uint) ([]model.Notification, error) {
	if len(courseIDs) == 0 {
		return []model.Notification{}, nil
	}
	var notifications []model.Notification
	err := r.DB.Where("course_id IN ?", courseIDs).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) Update(notification *model.Notification) error {
	return r.DB.Save(notification).Error
}

func (r *NotificationRepository) CountUnreadByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
