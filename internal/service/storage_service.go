package service

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	UploadFile(ctx context.Context, key string, localPath string, contentType string) error
	Delete(ctx context.Context, key string) error
	// SignedURL 生成限时访问链接，客户端拿到的始终是签名地址而不是裸 key
	SignedURL(ctx context.Context, key string, validity time.Duration) (string, error)
}

// LocalStorageProvider 本地存储实现，开发环境用
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	dst := filepath.Join(p.Config.LocalPath, key)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}

func (p *LocalStorageProvider) UploadFile(ctx context.Context, key string, localPath string, contentType string) error {
	dst := filepath.Join(p.Config.LocalPath, key)
	if localPath == dst {
		return nil
	}

	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()

	return p.Upload(ctx, key, src, 0, contentType)
}

func (p *LocalStorageProvider) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, key))
}

func (p *LocalStorageProvider) SignedURL(ctx context.Context, key string, validity time.Duration) (string, error) {
	// 本地存储由静态文件路由直接提供，无签名
	return "/uploads/" + key, nil
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *MinioStorageProvider) UploadFile(ctx context.Context, key string, localPath string, contentType string) error {
	_, err := p.Client.FPutObject(ctx, p.Config.MinioBucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *MinioStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, key, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) SignedURL(ctx context.Context, key string, validity time.Duration) (string, error) {
	// 响应头按文件名重写 Content-Type，mkv 也能在浏览器里内联播放
	reqParams := make(url.Values)
	reqParams.Set("response-content-type", util.ContentTypeByName(key))

	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, validity, reqParams)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
	validity time.Duration
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == util.StorageMinio {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider, validity: cfg.Storage.SignedURLValid}
}

func (s *StorageService) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return s.Provider.Upload(ctx, key, reader, size, contentType)
}

func (s *StorageService) UploadFile(ctx context.Context, key string, localPath string, contentType string) error {
	return s.Provider.UploadFile(ctx, key, localPath, contentType)
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	return s.Provider.Delete(ctx, key)
}

// SignedURL 按配置有效期签名；key 为空返回空串，调用方不必前置判断
func (s *StorageService) SignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return s.Provider.SignedURL(ctx, key, s.validity)
}
