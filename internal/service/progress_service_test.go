package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

func TestRecordUpsertsSingleRow(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice", model.Student)
	course := createTestCourse(t, db, "Go基础", user.ID)
	video := createTestVideo(t, db, course.ID, "lesson-1")
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	if _, _, err := svc.Record(user.ID, video.ID, &RecordProgressInput{LastWatchedPosition: 30}); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	record, _, err := svc.Record(user.ID, video.ID, &RecordProgressInput{LastWatchedPosition: 90})
	if err != nil {
		t.Fatalf("second record failed: %v", err)
	}

	if record.LastWatchedPosition != 90 {
		t.Errorf("expected position 90, got %d", record.LastWatchedPosition)
	}

	var count int64
	db.Model(&model.VideoProgress{}).Where("user_id = ? AND video_id = ?", user.ID, video.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected a single progress row, got %d", count)
	}
}

// 进度行保存的是课程级百分比：2个视频完成1个应为50
func TestRecordWritesCoursePercentage(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "bob", model.Student)
	course := createTestCourse(t, db, "数据结构", user.ID)
	v1 := createTestVideo(t, db, course.ID, "lesson-1")
	createTestVideo(t, db, course.ID, "lesson-2")
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	record, pct, err := svc.Record(user.ID, v1.ID, &RecordProgressInput{LastWatchedPosition: 600, Completed: true})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if pct != 50 {
		t.Errorf("expected course percentage 50, got %v", pct)
	}
	if record.ProgressPercentage != 50 {
		t.Errorf("expected row percentage 50, got %v", record.ProgressPercentage)
	}
}

// 完成标记只升不降：后续不带完成的心跳不能回退
func TestRecordCompletionIsSticky(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "carol", model.Student)
	course := createTestCourse(t, db, "算法", user.ID)
	video := createTestVideo(t, db, course.ID, "lesson-1")
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	if _, _, err := svc.Record(user.ID, video.ID, &RecordProgressInput{LastWatchedPosition: 600, Completed: true}); err != nil {
		t.Fatalf("completing record failed: %v", err)
	}

	record, _, err := svc.Record(user.ID, video.ID, &RecordProgressInput{LastWatchedPosition: 10, Completed: false})
	if err != nil {
		t.Fatalf("rewatch record failed: %v", err)
	}

	if !record.IsCompleted {
		t.Error("completion flag must not be cleared by a later heartbeat")
	}
	if record.LastWatchedPosition != 10 {
		t.Errorf("position should still update on rewatch, got %d", record.LastWatchedPosition)
	}
}

func TestRecordRequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "dave", model.Student)
	owner := createTestUser(t, db, "staff", model.Staff)
	course := createTestCourse(t, db, "操作系统", owner.ID)
	video := createTestVideo(t, db, course.ID, "lesson-1")
	svc := newProgressService(t, db)

	_, _, err := svc.Record(user.ID, video.ID, &RecordProgressInput{LastWatchedPosition: 5})
	if !errors.Is(err, util.ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestRecordRejectsNegativePosition(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "erin", model.Student)
	course := createTestCourse(t, db, "网络", user.ID)
	video := createTestVideo(t, db, course.ID, "lesson-1")
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	_, _, err := svc.Record(user.ID, video.ID, &RecordProgressInput{LastWatchedPosition: -1})
	if !errors.Is(err, util.ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition, got %v", err)
	}
}

// 没有视频的课程完成度按0处理，不报错
func TestCourseProgressWithNoVideos(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "frank", model.Student)
	course := createTestCourse(t, db, "空课程", user.ID)
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	progress, err := svc.CourseProgress(user.ID, course.ID)
	if err != nil {
		t.Fatalf("CourseProgress failed: %v", err)
	}
	if progress.TotalVideos != 0 || progress.ProgressPercentage != 0 {
		t.Errorf("empty course should report 0 videos and 0%%, got %+v", progress)
	}
}

func TestCourseProgressAllCompleted(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "grace", model.Student)
	course := createTestCourse(t, db, "数据库", user.ID)
	v1 := createTestVideo(t, db, course.ID, "lesson-1")
	v2 := createTestVideo(t, db, course.ID, "lesson-2")
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	if _, _, err := svc.Record(user.ID, v1.ID, &RecordProgressInput{LastWatchedPosition: 600, Completed: true}); err != nil {
		t.Fatalf("record v1 failed: %v", err)
	}
	record, pct, err := svc.Record(user.ID, v2.ID, &RecordProgressInput{LastWatchedPosition: 600, Completed: true})
	if err != nil {
		t.Fatalf("record v2 failed: %v", err)
	}

	if pct != 100 {
		t.Errorf("expected 100%%, got %v", pct)
	}
	if !record.IsCompleted {
		t.Error("row should be marked completed at 100%")
	}

	progress, err := svc.CourseProgress(user.ID, course.ID)
	if err != nil {
		t.Fatalf("CourseProgress failed: %v", err)
	}
	if progress.CompletedVideos != 2 || progress.ProgressPercentage != 100 {
		t.Errorf("expected 2 completed and 100%%, got %+v", progress)
	}
}

// 心跳只动自己那一行：同课程其他行保留各自的百分比快照，
// updated_at 也不跟着移动
func TestRecordTouchesOnlyOwnRow(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan", model.Student)
	course := createTestCourse(t, db, "机器学习", user.ID)
	v1 := createTestVideo(t, db, course.ID, "lesson-1")
	v2 := createTestVideo(t, db, course.ID, "lesson-2")
	createTestVideo(t, db, course.ID, "lesson-3")
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	if _, _, err := svc.Record(user.ID, v1.ID, &RecordProgressInput{LastWatchedPosition: 600, Completed: true}); err != nil {
		t.Fatalf("record v1 failed: %v", err)
	}

	var before model.VideoProgress
	if err := db.Where("user_id = ? AND video_id = ?", user.ID, v1.ID).First(&before).Error; err != nil {
		t.Fatalf("reload v1 failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	_, pct, err := svc.Record(user.ID, v2.ID, &RecordProgressInput{LastWatchedPosition: 600, Completed: true})
	if err != nil {
		t.Fatalf("record v2 failed: %v", err)
	}
	if pct < 66 || pct > 67 {
		t.Fatalf("expected course percentage near 66.67, got %v", pct)
	}

	var after model.VideoProgress
	if err := db.Where("user_id = ? AND video_id = ?", user.ID, v1.ID).First(&after).Error; err != nil {
		t.Fatalf("reload v1 failed: %v", err)
	}
	if after.ProgressPercentage != before.ProgressPercentage {
		t.Errorf("v1 percentage changed from %v to %v on v2's heartbeat",
			before.ProgressPercentage, after.ProgressPercentage)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("v1 updated_at moved from %v to %v on v2's heartbeat",
			before.UpdatedAt, after.UpdatedAt)
	}
}

// 回到旧视频续播会把它提到续播列表首位
func TestContinueWatchingRecencyOrder(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "judy", model.Student)
	course := createTestCourse(t, db, "分布式系统", user.ID)
	vA := createTestVideo(t, db, course.ID, "lesson-a")
	vB := createTestVideo(t, db, course.ID, "lesson-b")
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	if _, _, err := svc.Record(user.ID, vA.ID, &RecordProgressInput{LastWatchedPosition: 100}); err != nil {
		t.Fatalf("record a failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, _, err := svc.Record(user.ID, vB.ID, &RecordProgressInput{LastWatchedPosition: 100}); err != nil {
		t.Fatalf("record b failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, _, err := svc.Record(user.ID, vA.ID, &RecordProgressInput{LastWatchedPosition: 200}); err != nil {
		t.Fatalf("resume a failed: %v", err)
	}

	items, err := svc.ContinueWatching(context.Background(), user.ID, 0)
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].VideoID != vA.ID || items[1].VideoID != vB.ID {
		t.Errorf("expected order [%d %d], got [%d %d]",
			vA.ID, vB.ID, items[0].VideoID, items[1].VideoID)
	}
}

// 课程内观看记录只含该课程的视频，且要求已报名
func TestVideoProgressByUserScopedToCourse(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "kate", model.Student)
	course := createTestCourse(t, db, "前端工程", user.ID)
	other := createTestCourse(t, db, "后端工程", user.ID)
	v1 := createTestVideo(t, db, course.ID, "lesson-1")
	v2 := createTestVideo(t, db, course.ID, "lesson-2")
	vOther := createTestVideo(t, db, other.ID, "other-lesson")
	enroll(t, db, user.ID, course.ID)
	enroll(t, db, user.ID, other.ID)
	svc := newProgressService(t, db)

	for _, videoID := range []uint{v1.ID, v2.ID, vOther.ID} {
		if _, _, err := svc.Record(user.ID, videoID, &RecordProgressInput{LastWatchedPosition: 60}); err != nil {
			t.Fatalf("record video %d failed: %v", videoID, err)
		}
	}

	records, err := svc.VideoProgressByUser(user.ID, course.ID)
	if err != nil {
		t.Fatalf("VideoProgressByUser failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Video.CourseID != course.ID {
			t.Errorf("record for video %d is outside the course", r.VideoID)
		}
	}

	stranger := createTestUser(t, db, "leo", model.Student)
	if _, err := svc.VideoProgressByUser(stranger.ID, course.ID); !errors.Is(err, util.ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}
}

// 续播列表只含未完成且有播放位置的记录，最近观看在前
func TestContinueWatching(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "henry", model.Student)
	course := createTestCourse(t, db, "编译原理", user.ID)
	done := createTestVideo(t, db, course.ID, "lesson-done")
	halfway := createTestVideo(t, db, course.ID, "lesson-halfway")
	untouched := createTestVideo(t, db, course.ID, "lesson-untouched")
	enroll(t, db, user.ID, course.ID)
	svc := newProgressService(t, db)

	if _, _, err := svc.Record(user.ID, done.ID, &RecordProgressInput{LastWatchedPosition: 600, Completed: true}); err != nil {
		t.Fatalf("record done failed: %v", err)
	}
	if _, _, err := svc.Record(user.ID, halfway.ID, &RecordProgressInput{LastWatchedPosition: 300}); err != nil {
		t.Fatalf("record halfway failed: %v", err)
	}
	// 打开过但没有播放位置的视频不进续播列表
	if _, _, err := svc.Record(user.ID, untouched.ID, &RecordProgressInput{LastWatchedPosition: 0}); err != nil {
		t.Fatalf("record untouched failed: %v", err)
	}

	items, err := svc.ContinueWatching(context.Background(), user.ID, 0)
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].VideoID != halfway.ID {
		t.Errorf("expected video %d, got %d", halfway.ID, items[0].VideoID)
	}
	if items[0].LastWatchedPosition != 300 {
		t.Errorf("expected position 300, got %d", items[0].LastWatchedPosition)
	}
}
