package service

import (
	"errors"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

func newNoteService(t *testing.T, db *gorm.DB) *NoteService {
	t.Helper()

	return NewNoteService(
		repository.NewNoteRepository(db),
		repository.NewVideoRepository(db),
		repository.NewEnrollmentRepository(db),
	)
}

func TestNoteCreateRequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	student := createTestUser(t, db, "alice", model.Student)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	video := createTestVideo(t, db, course.ID, "lesson-1")
	svc := newNoteService(t, db)

	_, err := svc.Create(student.ID, video.ID, &NoteInput{Content: "hello"})
	if !errors.Is(err, util.ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}
}

// 笔记私有：他人的笔记改不了删不了，按不存在处理
func TestNoteOwnership(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	alice := createTestUser(t, db, "alice", model.Student)
	bob := createTestUser(t, db, "bob", model.Student)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	video := createTestVideo(t, db, course.ID, "lesson-1")
	enroll(t, db, alice.ID, course.ID)
	enroll(t, db, bob.ID, course.ID)
	svc := newNoteService(t, db)

	note, err := svc.Create(alice.ID, video.ID, &NoteInput{Content: "重点", VideoPosition: 120})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Update(note.ID, bob.ID, &NoteInput{Content: "篡改"}); !errors.Is(err, util.ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound on foreign update, got %v", err)
	}
	if err := svc.Delete(note.ID, bob.ID); !errors.Is(err, util.ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound on foreign delete, got %v", err)
	}

	updated, err := svc.Update(note.ID, alice.ID, &NoteInput{Content: "修订", VideoPosition: 150})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Content != "修订" || updated.VideoPosition != 150 {
		t.Errorf("unexpected note after update: %+v", updated)
	}

	if err := svc.Delete(note.ID, alice.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}

// 同一视频的笔记按播放位置排序
func TestNotesOrderedByPosition(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestUser(t, db, "staff", model.Staff)
	alice := createTestUser(t, db, "alice", model.Student)
	course := createTestCourse(t, db, "Go基础", staff.ID)
	video := createTestVideo(t, db, course.ID, "lesson-1")
	enroll(t, db, alice.ID, course.ID)
	svc := newNoteService(t, db)

	for _, pos := range []int{300, 60, 180} {
		if _, err := svc.Create(alice.ID, video.ID, &NoteInput{Content: "note", VideoPosition: pos}); err != nil {
			t.Fatalf("create at %d failed: %v", pos, err)
		}
	}

	notes, err := svc.ListByVideo(alice.ID, video.ID)
	if err != nil {
		t.Fatalf("ListByVideo failed: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	for i, want := range []int{60, 180, 300} {
		if notes[i].VideoPosition != want {
			t.Errorf("position %d: expected %d, got %d", i, want, notes[i].VideoPosition)
		}
	}
}
