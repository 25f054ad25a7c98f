package service

import (
	"context"
	"errors"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

func newEnrollmentService(t *testing.T, db *gorm.DB) *EnrollmentService {
	t.Helper()

	return NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewVideoRepository(db),
		repository.NewVideoProgressRepository(db),
		newTestStorage(t),
	)
}

func TestEnrollIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice", model.Student)
	course := createTestCourse(t, db, "Go基础", user.ID)
	svc := newEnrollmentService(t, db)

	first, err := svc.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("first enroll failed: %v", err)
	}
	if !first.Created {
		t.Error("first enroll should report created=true")
	}

	second, err := svc.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("second enroll failed: %v", err)
	}
	if second.Created {
		t.Error("second enroll should report created=false")
	}
	if second.Enrollment.ID != first.Enrollment.ID {
		t.Errorf("expected same enrollment row, got %d and %d", first.Enrollment.ID, second.Enrollment.ID)
	}

	var count int64
	db.Model(&model.Enrollment{}).Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 enrollment row, got %d", count)
	}
}

func TestEnrollCourseNotFound(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "bob", model.Student)
	svc := newEnrollmentService(t, db)

	if _, err := svc.Enroll(user.ID, 9999); !errors.Is(err, util.ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestMyCoursesIncludesProgress(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "carol", model.Student)
	course := createTestCourse(t, db, "数据结构", user.ID)
	v1 := createTestVideo(t, db, course.ID, "lesson-1")
	createTestVideo(t, db, course.ID, "lesson-2")
	enroll(t, db, user.ID, course.ID)

	progress := newProgressService(t, db)
	if _, _, err := progress.Record(user.ID, v1.ID, &RecordProgressInput{LastWatchedPosition: 600, Completed: true}); err != nil {
		t.Fatalf("record progress failed: %v", err)
	}

	svc := newEnrollmentService(t, db)
	courses, err := svc.MyCourses(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("MyCourses failed: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected 1 enrolled course, got %d", len(courses))
	}
	if courses[0].ProgressPercentage != 50 {
		t.Errorf("expected 50%% progress, got %v", courses[0].ProgressPercentage)
	}
}
