package service

import (
	"context"
	"errors"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const otpTTL = 15 * time.Minute

type AuthService struct {
	UserRepo *repository.UserRepository
	Mail     *MailService
	Redis    *redis.Client
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, mailService *MailService, redisClient *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Mail:     mailService,
		Redis:    redisClient,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	Username  string `json:"username" binding:"required,min=3,max=100"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password" binding:"required,min=8"`
}

func (s *AuthService) Register(input *RegisterInput) (*model.User, error) {
	if _, err := s.UserRepo.FindByEmail(input.Email); err == nil {
		return nil, util.ErrEmailRegistered
	}
	if _, err := s.UserRepo.FindByUsername(input.Username); err == nil {
		return nil, util.ErrUsernameRegistered
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  string(hashed),
		Role:      model.Student,
	}

	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint("userID", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login 支持用户名或邮箱登录，成功后刷新 last_login
func (s *AuthService) Login(identifier, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(identifier)
	if err != nil {
		user, err = s.UserRepo.FindByUsername(identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.Disabled {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.cfg.JWT.Secret, s.cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("failed to update last login", zap.Uint("userID", user.ID), zap.Error(err))
	}

	return token, user, nil
}

func otpKey(email string) string {
	return "otp:password_reset:" + email
}

// RequestPasswordReset 生成6位验证码并发送到注册邮箱。
// 邮箱不存在时同样返回成功，避免探测已注册账号
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	otp := util.GenerateOTP(6)
	if err := s.Redis.Set(ctx, otpKey(email), otp, otpTTL).Err(); err != nil {
		return err
	}

	if err := s.Mail.SendPasswordResetOTP(user.Email, user.FullName(), otp); err != nil {
		logger.Log.Error("failed to send OTP mail", zap.String("email", email), zap.Error(err))
		return err
	}
	return nil
}

// ResetPassword 校验验证码并更新密码，验证码一次性使用
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	stored, err := s.Redis.Get(ctx, otpKey(email)).Result()
	if err != nil || stored != otp {
		return util.ErrInvalidOTP
	}

	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.UserRepo.UpdatePassword(user.ID, string(hashed)); err != nil {
		return err
	}

	s.Redis.Del(ctx, otpKey(email))
	logger.Log.Info("password reset", zap.Uint("userID", user.ID))
	return nil
}

func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return util.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.UserRepo.UpdatePassword(userID, string(hashed))
}
