package service

import (
	"errors"
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

func newAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), NewMailService(cfg), nil, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)

	user, err := svc.Register(&RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != model.Student {
		t.Errorf("new users should default to student, got %s", user.Role)
	}

	// 注册时同步建立空资料
	var profile model.Profile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Errorf("profile should be created with the user: %v", err)
	}

	// 邮箱或用户名均可登录
	for _, identifier := range []string{"alice", "alice@example.com"} {
		token, logged, err := svc.Login(identifier, "password123")
		if err != nil {
			t.Fatalf("login with %s failed: %v", identifier, err)
		}
		if token == "" {
			t.Error("expected a token")
		}
		if logged.ID != user.ID {
			t.Errorf("logged in as wrong user: %d", logged.ID)
		}
	}

	if _, _, err := svc.Login("alice", "wrong-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)

	if _, err := svc.Register(&RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(&RegisterInput{Username: "other", Email: "alice@example.com", Password: "password123"})
	if !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("expected ErrEmailRegistered, got %v", err)
	}

	_, err = svc.Register(&RegisterInput{Username: "alice", Email: "new@example.com", Password: "password123"})
	if !errors.Is(err, util.ErrUsernameRegistered) {
		t.Errorf("expected ErrUsernameRegistered, got %v", err)
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)

	user, err := svc.Register(&RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(user).Update("disabled", true).Error; err != nil {
		t.Fatalf("disable failed: %v", err)
	}

	if _, _, err := svc.Login("alice", "password123"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for disabled account, got %v", err)
	}
}
