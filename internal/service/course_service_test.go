package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// 详情与下载路径不依赖缓存，Redis 传 nil 即可
func newCourseService(t *testing.T, db *gorm.DB) *CourseService {
	t.Helper()

	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewVideoRepository(db),
		repository.NewResourceRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewVideoProgressRepository(db),
		newTestStorage(t),
		newNotificationService(t, db),
		nil,
		nil,
	)
}

func createTestResource(t *testing.T, db *gorm.DB, courseID uint, title string) *model.Resource {
	t.Helper()

	resource := &model.Resource{
		CourseID:  courseID,
		Title:     title,
		ObjectKey: "resources/" + title + ".pdf",
		Type:      model.ResourcePDF,
	}
	if err := db.Create(resource).Error; err != nil {
		t.Fatalf("failed to create resource %s: %v", title, err)
	}
	return resource
}

// 未报名用户只看到锁定预览，不下发播放地址
func TestDetailLockedForNonEnrolled(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	visitor := createTestUser(t, db, "visitor", model.Student)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	createTestVideo(t, db, course.ID, "lesson-1")
	createTestResource(t, db, course.ID, "handout")
	svc := newCourseService(t, db)

	detail, err := svc.Detail(context.Background(), visitor.ID, course.ID)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}

	if detail.Enrolled {
		t.Error("visitor should not be reported as enrolled")
	}
	if len(detail.Videos) != 1 {
		t.Fatalf("expected 1 video preview, got %d", len(detail.Videos))
	}
	if !detail.Videos[0].Locked {
		t.Error("video should be locked for non-enrolled user")
	}
	if detail.Videos[0].VideoURL != "" {
		t.Errorf("locked video must not expose a URL, got %q", detail.Videos[0].VideoURL)
	}
	if len(detail.Resources) != 1 || !detail.Resources[0].Locked {
		t.Errorf("resource should be locked, got %+v", detail.Resources)
	}
}

func TestDetailUnlockedForEnrolled(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	student := createTestUser(t, db, "alice", model.Student)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	createTestVideo(t, db, course.ID, "lesson-1")
	enroll(t, db, student.ID, course.ID)
	svc := newCourseService(t, db)

	detail, err := svc.Detail(context.Background(), student.ID, course.ID)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}

	if !detail.Enrolled {
		t.Error("student should be reported as enrolled")
	}
	if detail.Videos[0].Locked {
		t.Error("video should be unlocked for enrolled user")
	}
	if detail.Videos[0].VideoURL == "" {
		t.Error("enrolled user should get a playable URL")
	}
}

// 未发布视频对学生端不可见
func TestDetailHidesUnpublishedVideos(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	student := createTestUser(t, db, "alice", model.Student)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	createTestVideo(t, db, course.ID, "published")
	draft := createTestVideo(t, db, course.ID, "draft")
	if err := db.Model(draft).Update("is_published", false).Error; err != nil {
		t.Fatalf("failed to unpublish: %v", err)
	}
	enroll(t, db, student.ID, course.ID)
	svc := newCourseService(t, db)

	detail, err := svc.Detail(context.Background(), student.ID, course.ID)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	if len(detail.Videos) != 1 {
		t.Fatalf("expected only the published video, got %d", len(detail.Videos))
	}
	if detail.Videos[0].Title != "published" {
		t.Errorf("unexpected video in student view: %s", detail.Videos[0].Title)
	}
}

func TestDownloadResourceIncrementsCount(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	student := createTestUser(t, db, "alice", model.Student)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	resource := createTestResource(t, db, course.ID, "handout")
	enroll(t, db, student.ID, course.ID)
	svc := newCourseService(t, db)

	url, err := svc.DownloadResource(context.Background(), student.ID, course.ID, resource.ID)
	if err != nil {
		t.Fatalf("DownloadResource failed: %v", err)
	}
	if url == "" {
		t.Error("expected a download URL")
	}

	var refreshed model.Resource
	if err := db.First(&refreshed, resource.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if refreshed.DownloadCount != 1 {
		t.Errorf("expected download count 1, got %d", refreshed.DownloadCount)
	}
}

func TestDownloadResourceRequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	student := createTestUser(t, db, "alice", model.Student)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	resource := createTestResource(t, db, course.ID, "handout")
	svc := newCourseService(t, db)

	_, err := svc.DownloadResource(context.Background(), student.ID, course.ID, resource.ID)
	if !errors.Is(err, util.ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}

	var refreshed model.Resource
	if err := db.First(&refreshed, resource.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if refreshed.DownloadCount != 0 {
		t.Errorf("failed download must not count, got %d", refreshed.DownloadCount)
	}
}

func TestCreateCourseValidatesDateRange(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	svc := newCourseService(t, db)

	_, err := svc.Create(staff.ID, &CourseInput{
		Title:     "倒置日期",
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 0, -1),
	})
	if !errors.Is(err, util.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}
