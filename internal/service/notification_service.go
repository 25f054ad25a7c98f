package service

import (
	"errors"
	"strings"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService 通知在写入时按目标用户展开为独立行，
// 读取方不需要任何 join 就能拿到自己的列表
type NotificationService struct {
	NotifRepo      *repository.NotificationRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
}

func NewNotificationService(
	notifRepo *repository.NotificationRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
) *NotificationService {
	return &NotificationService{
		NotifRepo:      notifRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
	}
}

// NotifyEnrolled 课程事件扇出：给课程的每个报名用户各落一行。
// 不做去重，同一事件多次触发会产生重复行，由调用方保证只发一次
func (s *NotificationService) NotifyEnrolled(courseID uint, message string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, util.ErrEmptyMessage
	}

	userIDs, err := s.EnrollmentRepo.UserIDsByCourse(courseID)
	if err != nil {
		return 0, err
	}

	notifications := make([]model.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, model.Notification{
			UserID:   userID,
			CourseID: &courseID,
			Message:  message,
		})
	}

	if err := s.NotifRepo.BulkCreate(notifications); err != nil {
		return 0, err
	}

	monitoring.NotificationsFanned.WithLabelValues("course").Add(float64(len(notifications)))
	logger.Log.Info("course notification fanned out",
		zap.Uint("courseID", courseID),
		zap.Int("recipients", len(notifications)))
	return len(notifications), nil
}

// NotifyGlobal 全局公告扇出：面向全体学生，按 (用户, 文案) 去重，
// 重复广播同一文案只会补发给此前没收到的用户
func (s *NotificationService) NotifyGlobal(message string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, util.ErrEmptyMessage
	}

	students, err := s.UserRepo.FindStudents()
	if err != nil {
		return 0, err
	}

	created := 0
	for _, student := range students {
		exists, err := s.NotifRepo.ExistsByUserAndMessage(student.ID, message)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		notification := &model.Notification{
			UserID:  student.ID,
			Message: message,
		}
		if err := s.NotifRepo.Create(notification); err != nil {
			return created, err
		}
		created++
	}

	monitoring.NotificationsFanned.WithLabelValues("global").Add(float64(created))
	logger.Log.Info("global notification fanned out",
		zap.Int("students", len(students)),
		zap.Int("created", created))
	return created, nil
}

// MarkRead 标记已读，只允许属主操作；非属主与不存在同样返回未找到
func (s *NotificationService) MarkRead(notificationID string, userID uint) error {
	hit, err := s.NotifRepo.MarkRead(notificationID, userID)
	if err != nil {
		return err
	}
	if !hit {
		return util.ErrNotifNotFound
	}
	return nil
}

// ListGlobal 当前用户的全局通知，新的在前
func (s *NotificationService) ListGlobal(userID uint) ([]model.Notification, error) {
	return s.NotifRepo.FindGlobalByUser(userID)
}

// ListRelevant 与用户已选课程相关的课程通知。
// 按课程维度取行，未单独过滤属主，一门课的全部扇出行都会返回
func (s *NotificationService) ListRelevant(userID uint) ([]model.Notification, error) {
	courseIDs, err := s.EnrollmentRepo.CourseIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.NotifRepo.FindByCourses(courseIDs)
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.NotifRepo.CountUnreadByUser(userID)
}

// UpdateMessage 管理端修正通知文案，不限属主：
// 扇出行都挂在学生名下，按属主过滤会让管理员改不到任何一行
func (s *NotificationService) UpdateMessage(notificationID string, message string) (*model.Notification, error) {
	if strings.TrimSpace(message) == "" {
		return nil, util.ErrEmptyMessage
	}

	notification, err := s.NotifRepo.FindByUUID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotifNotFound
		}
		return nil, err
	}

	notification.Message = message
	if err := s.NotifRepo.Update(notification); err != nil {
		return nil, err
	}
	return notification, nil
}
