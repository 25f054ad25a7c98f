package service

import (
	"errors"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

func newNotificationService(t *testing.T, db *gorm.DB) *NotificationService {
	t.Helper()

	return NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewUserRepository(db),
	)
}

// 课程通知不去重：同一文案触发两次产生两倍的行
func TestNotifyEnrolledDoesNotDeduplicate(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	s1 := createTestUser(t, db, "alice", model.Student)
	s2 := createTestUser(t, db, "bob", model.Student)
	enroll(t, db, s1.ID, course.ID)
	enroll(t, db, s2.ID, course.ID)
	svc := newNotificationService(t, db)

	first, err := svc.NotifyEnrolled(course.ID, "New video added")
	if err != nil {
		t.Fatalf("first fan-out failed: %v", err)
	}
	if first != 2 {
		t.Errorf("expected 2 rows on first fan-out, got %d", first)
	}

	second, err := svc.NotifyEnrolled(course.ID, "New video added")
	if err != nil {
		t.Fatalf("second fan-out failed: %v", err)
	}
	if second != 2 {
		t.Errorf("expected 2 more rows on second fan-out, got %d", second)
	}

	var count int64
	db.Model(&model.Notification{}).Where("course_id = ?", course.ID).Count(&count)
	if count != 4 {
		t.Errorf("expected 4 notification rows total, got %d", count)
	}
}

// 全局通知按 (用户, 文案) 去重：重复广播不产生新行
func TestNotifyGlobalDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "alice", model.Student)
	createTestUser(t, db, "bob", model.Student)
	createTestUser(t, db, "admin", model.Admin) // 非学生不接收全局通知
	svc := newNotificationService(t, db)

	first, err := svc.NotifyGlobal("Maintenance tonight")
	if err != nil {
		t.Fatalf("first broadcast failed: %v", err)
	}
	if first != 2 {
		t.Errorf("expected 2 rows on first broadcast, got %d", first)
	}

	second, err := svc.NotifyGlobal("Maintenance tonight")
	if err != nil {
		t.Fatalf("second broadcast failed: %v", err)
	}
	if second != 0 {
		t.Errorf("expected 0 new rows on repeated broadcast, got %d", second)
	}

	// 新注册学生补发
	createTestUser(t, db, "carol", model.Student)
	third, err := svc.NotifyGlobal("Maintenance tonight")
	if err != nil {
		t.Fatalf("third broadcast failed: %v", err)
	}
	if third != 1 {
		t.Errorf("expected 1 new row for the new student, got %d", third)
	}
}

func TestNotifyRejectsEmptyMessage(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(t, db)

	if _, err := svc.NotifyGlobal("   "); !errors.Is(err, util.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage for global, got %v", err)
	}
	if _, err := svc.NotifyEnrolled(1, ""); !errors.Is(err, util.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage for course, got %v", err)
	}
}

// 标记已读只能操作属主的通知，他人通知按不存在处理
func TestMarkReadScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice", model.Student)
	bob := createTestUser(t, db, "bob", model.Student)
	svc := newNotificationService(t, db)

	if _, err := svc.NotifyGlobal("Hello students"); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	aliceNotifs, err := svc.ListGlobal(alice.ID)
	if err != nil {
		t.Fatalf("ListGlobal failed: %v", err)
	}
	if len(aliceNotifs) != 1 {
		t.Fatalf("expected 1 notification for alice, got %d", len(aliceNotifs))
	}
	target := aliceNotifs[0]

	if err := svc.MarkRead(target.NotificationID, bob.ID); !errors.Is(err, util.ErrNotifNotFound) {
		t.Errorf("expected ErrNotifNotFound for other user's notification, got %v", err)
	}

	if err := svc.MarkRead(target.NotificationID, alice.ID); err != nil {
		t.Fatalf("owner MarkRead failed: %v", err)
	}

	var refreshed model.Notification
	if err := db.Where("notification_id = ?", target.NotificationID).First(&refreshed).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !refreshed.IsRead {
		t.Error("notification should be marked read")
	}
}

// 管理端按UUID修正任意用户名下的通知文案，不受属主限制
func TestUpdateMessageAcrossOwners(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	alice := createTestUser(t, db, "alice", model.Student)
	enroll(t, db, alice.ID, course.ID)
	svc := newNotificationService(t, db)

	if _, err := svc.NotifyEnrolled(course.ID, "New video addded"); err != nil {
		t.Fatalf("fan-out failed: %v", err)
	}

	// 扇出行挂在学生名下，管理端照样能改
	var row model.Notification
	if err := db.Where("user_id = ?", alice.ID).First(&row).Error; err != nil {
		t.Fatalf("load fan-out row failed: %v", err)
	}

	updated, err := svc.UpdateMessage(row.NotificationID, "New video added")
	if err != nil {
		t.Fatalf("UpdateMessage failed: %v", err)
	}
	if updated.Message != "New video added" {
		t.Errorf("unexpected message: %q", updated.Message)
	}
	if updated.UserID != alice.ID {
		t.Errorf("row owner changed to %d", updated.UserID)
	}

	if _, err := svc.UpdateMessage("no-such-uuid", "x"); !errors.Is(err, util.ErrNotifNotFound) {
		t.Errorf("expected ErrNotifNotFound, got %v", err)
	}
	if _, err := svc.UpdateMessage(row.NotificationID, "  "); !errors.Is(err, util.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

// 全局与课程通知分开查询：course_id 为空的才是全局
func TestGlobalAndRelevantArePartitioned(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	alice := createTestUser(t, db, "alice", model.Student)
	enrolled := createTestCourse(t, db, "已选课程", staff.ID)
	other := createTestCourse(t, db, "未选课程", staff.ID)
	enroll(t, db, alice.ID, enrolled.ID)
	// other 课程有一个别的学生，才会有扇出行
	bob := createTestUser(t, db, "bob", model.Student)
	enroll(t, db, bob.ID, other.ID)
	svc := newNotificationService(t, db)

	if _, err := svc.NotifyGlobal("Welcome"); err != nil {
		t.Fatalf("global broadcast failed: %v", err)
	}
	if _, err := svc.NotifyEnrolled(enrolled.ID, "New video in your course"); err != nil {
		t.Fatalf("enrolled fan-out failed: %v", err)
	}
	if _, err := svc.NotifyEnrolled(other.ID, "New video elsewhere"); err != nil {
		t.Fatalf("other fan-out failed: %v", err)
	}

	globals, err := svc.ListGlobal(alice.ID)
	if err != nil {
		t.Fatalf("ListGlobal failed: %v", err)
	}
	if len(globals) != 1 || globals[0].Message != "Welcome" {
		t.Errorf("expected only the global notification, got %+v", globals)
	}

	relevant, err := svc.ListRelevant(alice.ID)
	if err != nil {
		t.Fatalf("ListRelevant failed: %v", err)
	}
	if len(relevant) != 1 {
		t.Fatalf("expected 1 relevant notification, got %d", len(relevant))
	}
	if relevant[0].Message != "New video in your course" {
		t.Errorf("unexpected relevant notification: %+v", relevant[0])
	}
}
