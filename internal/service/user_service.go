package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{UserRepo: userRepo, Storage: storage}
}

// ProfileView 个人资料视图，头像下发签名URL
type ProfileView struct {
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Country   string `json:"country"`
	About     string `json:"about"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	profile, err := s.UserRepo.FindProfile(userID)
	if err != nil {
		return nil, err
	}

	avatarURL, err := s.Storage.SignedURL(ctx, profile.Avatar)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		AvatarURL: avatarURL,
		Country:   profile.Country,
		About:     profile.About,
	}, nil
}

type UpdateProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Country   string `json:"country"`
	About     string `json:"about"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*ProfileView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}

	profile, err := s.UserRepo.FindProfile(userID)
	if err != nil {
		return nil, err
	}
	profile.Country = input.Country
	profile.About = input.About
	if err := s.UserRepo.UpdateProfile(profile); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

// UploadAvatar 上传头像并更新资料中的对象key
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, fileHeader *multipart.FileHeader) (string, error) {
	if !util.HasAllowedExtension(fileHeader.Filename, util.AllowedImageExtensions) {
		return "", fmt.Errorf("unsupported image format: %s", filepath.Ext(fileHeader.Filename))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%d/%s%s", userID, util.GenerateRandomString(12), filepath.Ext(fileHeader.Filename))
	if err := s.Storage.Upload(ctx, key, file, fileHeader.Size, mimeType); err != nil {
		return "", err
	}

	profile, err := s.UserRepo.FindProfile(userID)
	if err != nil {
		return "", err
	}

	// 替换头像时清理旧对象，失败不阻断
	if profile.Avatar != "" {
		s.Storage.Delete(ctx, profile.Avatar)
	}

	profile.Avatar = key
	if err := s.UserRepo.UpdateProfile(profile); err != nil {
		return "", err
	}

	return s.Storage.SignedURL(ctx, key)
}

// SetRole 管理端调整用户角色
func (s *UserService) SetRole(userID uint, role model.UserRole) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	user.Role = role
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
