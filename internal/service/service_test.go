package service

import (
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// setupTestDB 构建内存SQLite并建表，单连接避免 :memory: 各连接各一库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role model.UserRole) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestCourse(t *testing.T, db *gorm.DB, title string, createdBy uint) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:       title,
		Description: "desc of " + title,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(0, 3, 0),
		CreatedByID: createdBy,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course %s: %v", title, err)
	}
	return course
}

func createTestVideo(t *testing.T, db *gorm.DB, courseID uint, title string) *model.Video {
	t.Helper()

	video := &model.Video{
		CourseID:    courseID,
		Title:       title,
		ObjectKey:   "videos/" + title + ".mp4",
		Duration:    600,
		IsPublished: true,
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create video %s: %v", title, err)
	}
	return video
}

func enroll(t *testing.T, db *gorm.DB, userID, courseID uint) {
	t.Helper()

	repo := repository.NewEnrollmentRepository(db)
	if _, _, err := repo.GetOrCreate(userID, courseID); err != nil {
		t.Fatalf("failed to enroll user %d in course %d: %v", userID, courseID, err)
	}
}

// newTestStorage 本地临时目录存储，签名地址为静态路径
func newTestStorage(t *testing.T) *StorageService {
	t.Helper()

	return &StorageService{
		Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}},
		validity: time.Hour,
	}
}

func newProgressService(t *testing.T, db *gorm.DB) *ProgressService {
	t.Helper()

	return NewProgressService(
		repository.NewVideoProgressRepository(db),
		repository.NewVideoRepository(db),
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		newTestStorage(t),
	)
}
