package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogCacheKey = "cache:course_catalog"
	catalogCacheTTL = 5 * time.Minute
)

type CourseService struct {
	CourseRepo     *repository.CourseRepository
	VideoRepo      *repository.VideoRepository
	ResourceRepo   *repository.ResourceRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.VideoProgressRepository
	Storage        *StorageService
	Notifications  *NotificationService
	Redis          *redis.Client
	cfg            *config.Config
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	videoRepo *repository.VideoRepository,
	resourceRepo *repository.ResourceRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.VideoProgressRepository,
	storage *StorageService,
	notifications *NotificationService,
	redisClient *redis.Client,
	cfg *config.Config,
) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		VideoRepo:      videoRepo,
		ResourceRepo:   resourceRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		Storage:        storage,
		Notifications:  notifications,
		Redis:          redisClient,
		cfg:            cfg,
	}
}

type CourseInput struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required"`
}

// CourseSummary 目录中的课程卡片
type CourseSummary struct {
	CourseID      uint      `json:"courseId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	VideoCount    int       `json:"videoCount"`
	ResourceCount int       `json:"resourceCount"`
	Enrolled      bool      `json:"enrolled"`
}

// VideoView Locked=true 时不下发播放地址，只保留标题等预览字段
type VideoView struct {
	VideoID             uint   `json:"videoId"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	Duration            string `json:"duration"`
	Locked              bool   `json:"locked"`
	VideoURL            string `json:"videoUrl,omitempty"`
	ThumbnailURL        string `json:"thumbnailUrl,omitempty"`
	LastWatchedPosition int    `json:"lastWatchedPosition,omitempty"`
}

// ResourceView Locked=true 时不下发下载地址
type ResourceView struct {
	ResourceID    uint               `json:"resourceId"`
	Title         string             `json:"title"`
	Type          model.ResourceType `json:"type"`
	DownloadCount uint               `json:"downloadCount"`
	Locked        bool               `json:"locked"`
}

// CourseDetail 课程详情：报名用户拿到可播放的内容，
// 未报名用户只看到锁定预览
type CourseDetail struct {
	CourseID    uint           `json:"courseId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Enrolled    bool           `json:"enrolled"`
	Videos      []VideoView    `json:"videos"`
	Resources   []ResourceView `json:"resources"`
}

func (s *CourseService) Create(userID uint, input *CourseInput) (*model.Course, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, util.ErrInvalidDateRange
	}

	course := &model.Course{
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedByID: userID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}

	s.invalidateCatalog(context.Background())
	logger.Log.Info("course created", zap.Uint("courseID", course.ID), zap.String("title", course.Title))
	return course, nil
}

func (s *CourseService) Update(courseID uint, input *CourseInput) (*model.Course, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, util.ErrInvalidDateRange
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	course.Title = input.Title
	course.Description = input.Description
	course.StartDate = input.StartDate
	course.EndDate = input.EndDate
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}

	s.invalidateCatalog(context.Background())
	return course, nil
}

func (s *CourseService) Delete(courseID uint) error {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	if err := s.CourseRepo.Delete(courseID); err != nil {
		return err
	}
	s.invalidateCatalog(context.Background())
	return nil
}

// UploadImage 上传课程封面
func (s *CourseService) UploadImage(ctx context.Context, courseID uint, fileHeader *multipart.FileHeader) (string, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrCourseNotFound
		}
		return "", err
	}

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

	key := fmt.Sprintf("courses/%d/image/%s%s", courseID, util.GenerateRandomString(12), filepath.Ext(fileHeader.Filename))
	if err := s.Storage.Upload(ctx, key, file, fileHeader.Size, mimeType); err != nil {
		return "", err
	}

	if course.Image != "" {
		s.Storage.Delete(ctx, course.Image)
	}
	course.Image = key
	if err := s.CourseRepo.Update(course); err != nil {
		return "", err
	}

	s.invalidateCatalog(ctx)
	return s.Storage.SignedURL(ctx, key)
}

type VideoInput struct {
	Title       string `form:"title" binding:"required,max=255"`
	Description string `form:"description"`
}

// UploadVideo 上传视频：落临时文件后探测时长、截首帧做缩略图，
// 上传对象存储并给全部报名用户发布通知
func (s *CourseService) UploadVideo(ctx context.Context, courseID uint, input *VideoInput, fileHeader *multipart.FileHeader) (*model.Video, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if !util.HasAllowedExtension(fileHeader.Filename, util.AllowedVideoExtensions) {
		return nil, util.ErrInvalidVideoExt
	}

	tmpDir, err := os.MkdirTemp("", "video-upload-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	ext := filepath.Ext(fileHeader.Filename)
	tmpVideo := filepath.Join(tmpDir, "source"+ext)
	if err := saveUploadedFile(fileHeader, tmpVideo); err != nil {
		return nil, err
	}

	info, err := util.GetVideoInfo(tmpVideo)
	if err != nil {
		return nil, err
	}

	tmpThumb := filepath.Join(tmpDir, "thumb.jpg")
	thumbKey := ""
	if err := util.GenerateThumbnail(tmpVideo, tmpThumb, "00:00:01"); err != nil {
		// 缩略图失败不阻断上传
		logger.Log.Warn("thumbnail generation failed", zap.Uint("courseID", courseID), zap.Error(err))
	} else {
		thumbKey = fmt.Sprintf("courses/%d/thumbnails/%s.jpg", courseID, util.GenerateRandomString(12))
		if err := s.Storage.UploadFile(ctx, thumbKey, tmpThumb, "image/jpeg"); err != nil {
			return nil, err
		}
	}

	videoKey := fmt.Sprintf("courses/%d/videos/%s%s", courseID, util.GenerateRandomString(12), ext)
	if err := s.Storage.UploadFile(ctx, videoKey, tmpVideo, util.ContentTypeByName(fileHeader.Filename)); err != nil {
		return nil, err
	}

	video := &model.Video{
		CourseID:    courseID,
		Title:       input.Title,
		Description: input.Description,
		ObjectKey:   videoKey,
		Thumbnail:   thumbKey,
		Duration:    int(info.Duration),
		IsPublished: true,
	}
	if err := s.VideoRepo.Create(video); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("New video \"%s\" was added to course \"%s\"", video.Title, course.Title)
	if _, err := s.Notifications.NotifyEnrolled(courseID, message); err != nil {
		logger.Log.Error("video notification fan-out failed", zap.Uint("courseID", courseID), zap.Error(err))
	}

	return video, nil
}

type VideoUpdateInput struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	IsPublished *bool  `json:"isPublished"`
}

func (s *CourseService) UpdateVideo(courseID, videoID uint, input *VideoUpdateInput) (*model.Video, error) {
	video, err := s.VideoRepo.FindByCourseAndID(courseID, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVideoNotFound
		}
		return nil, err
	}

	video.Title = input.Title
	video.Description = input.Description
	if input.IsPublished != nil {
		video.IsPublished = *input.IsPublished
	}
	if err := s.VideoRepo.Update(video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *CourseService) DeleteVideo(ctx context.Context, courseID, videoID uint) error {
	video, err := s.VideoRepo.FindByCourseAndID(courseID, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrVideoNotFound
		}
		return err
	}

	if err := s.VideoRepo.Delete(videoID); err != nil {
		return err
	}

	// 对象清理失败只记日志，库里的记录已删
	if video.ObjectKey != "" {
		if err := s.Storage.Delete(ctx, video.ObjectKey); err != nil {
			logger.Log.Warn("failed to delete video object", zap.String("key", video.ObjectKey), zap.Error(err))
		}
	}
	if video.Thumbnail != "" {
		s.Storage.Delete(ctx, video.Thumbnail)
	}
	return nil
}

type ResourceInput struct {
	Title string `form:"title" binding:"required,max=255"`
	Type  string `form:"type" binding:"required"`
}

// UploadResource 上传课程资料并给报名用户发通知
func (s *CourseService) UploadResource(ctx context.Context, courseID uint, input *ResourceInput, fileHeader *multipart.FileHeader) (*model.Resource, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if !model.ValidResourceType(input.Type) {
		return nil, util.ErrInvalidResourceType
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	key := fmt.Sprintf("courses/%d/resources/%s%s", courseID, util.GenerateRandomString(12), filepath.Ext(fileHeader.Filename))
	if err := s.Storage.Upload(ctx, key, file, fileHeader.Size, util.ContentTypeByName(fileHeader.Filename)); err != nil {
		return nil, err
	}

	resource := &model.Resource{
		CourseID:  courseID,
		Title:     input.Title,
		ObjectKey: key,
		Type:      model.ResourceType(input.Type),
	}
	if err := s.ResourceRepo.Create(resource); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("New resource \"%s\" was added to course \"%s\"", resource.Title, course.Title)
	if _, err := s.Notifications.NotifyEnrolled(courseID, message); err != nil {
		logger.Log.Error("resource notification fan-out failed", zap.Uint("courseID", courseID), zap.Error(err))
	}

	return resource, nil
}

type ResourceUpdateInput struct {
	Title string `json:"title" binding:"required,max=255"`
	Type  string `json:"type" binding:"required"`
}

func (s *CourseService) UpdateResource(courseID, resourceID uint, input *ResourceUpdateInput) (*model.Resource, error) {
	if !model.ValidResourceType(input.Type) {
		return nil, util.ErrInvalidResourceType
	}

	resource, err := s.ResourceRepo.FindByCourseAndID(courseID, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}

	resource.Title = input.Title
	resource.Type = model.ResourceType(input.Type)
	if err := s.ResourceRepo.Update(resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *CourseService) DeleteResource(ctx context.Context, courseID, resourceID uint) error {
	resource, err := s.ResourceRepo.FindByCourseAndID(courseID, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrResourceNotFound
		}
		return err
	}

	if err := s.ResourceRepo.Delete(resourceID); err != nil {
		return err
	}
	if resource.ObjectKey != "" {
		s.Storage.Delete(ctx, resource.ObjectKey)
	}
	return nil
}

// Catalog 课程目录，短缓存扛住首页流量；userID 为 0 表示匿名访问
func (s *CourseService) Catalog(ctx context.Context, userID uint) ([]CourseSummary, error) {
	summaries, err := s.cachedCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if userID != 0 {
		enrolledIDs, err := s.EnrollmentRepo.CourseIDsByUser(userID)
		if err != nil {
			return nil, err
		}
		enrolled := make(map[uint]bool, len(enrolledIDs))
		for _, id := range enrolledIDs {
			enrolled[id] = true
		}
		for i := range summaries {
			summaries[i].Enrolled = enrolled[summaries[i].CourseID]
		}
	}
	return summaries, nil
}

func (s *CourseService) cachedCatalog(ctx context.Context) ([]CourseSummary, error) {
	if cached, err := s.Redis.Get(ctx, catalogCacheKey).Result(); err == nil {
		var summaries []CourseSummary
		if err := json.Unmarshal([]byte(cached), &summaries); err == nil {
			return summaries, nil
		}
	}

	courses, err := s.CourseRepo.FindAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for _, course := range courses {
		videoCount, err := s.VideoRepo.CountByCourse(course.ID)
		if err != nil {
			return nil, err
		}
		resources, err := s.ResourceRepo.FindByCourse(course.ID)
		if err != nil {
			return nil, err
		}
		imageURL, err := s.Storage.SignedURL(ctx, course.Image)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, CourseSummary{
			CourseID:      course.ID,
			Title:         course.Title,
			Description:   course.Description,
			StartDate:     course.StartDate,
			EndDate:       course.EndDate,
			ImageURL:      imageURL,
			VideoCount:    int(videoCount),
			ResourceCount: len(resources),
		})
	}

	if data, err := json.Marshal(summaries); err == nil {
		s.Redis.Set(ctx, catalogCacheKey, data, catalogCacheTTL)
	}
	return summaries, nil
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if err := s.Redis.Del(ctx, catalogCacheKey).Err(); err != nil && err != redis.Nil {
		logger.Log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

// Detail 课程详情。报名用户拿到签名播放地址，
// 未报名用户看到锁定的预览，未发布视频对学生端不可见
func (s *CourseService) Detail(ctx context.Context, userID, courseID uint) (*CourseDetail, error) {
	course, err := s.CourseRepo.FindByIDWithContent(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	enrolled := false
	if userID != 0 {
		enrolled, err = s.EnrollmentRepo.Exists(userID, courseID)
		if err != nil {
			return nil, err
		}
	}

	imageURL, err := s.Storage.SignedURL(ctx, course.Image)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{
		CourseID:    course.ID,
		Title:       course.Title,
		Description: course.Description,
		StartDate:   course.StartDate,
		EndDate:     course.EndDate,
		ImageURL:    imageURL,
		Enrolled:    enrolled,
		Videos:      make([]VideoView, 0, len(course.Videos)),
		Resources:   make([]ResourceView, 0, len(course.Resources)),
	}

	for _, video := range course.Videos {
		if !video.IsPublished {
			continue
		}
		view := VideoView{
			VideoID:     video.ID,
			Title:       video.Title,
			Description: video.Description,
			Duration:    video.FormattedDuration(),
			Locked:      !enrolled,
		}
		if enrolled {
			view.VideoURL, err = s.Storage.SignedURL(ctx, video.ObjectKey)
			if err != nil {
				return nil, err
			}
			view.ThumbnailURL, err = s.Storage.SignedURL(ctx, video.Thumbnail)
			if err != nil {
				return nil, err
			}
		}
		detail.Videos = append(detail.Videos, view)
	}

	for _, resource := range course.Resources {
		detail.Resources = append(detail.Resources, ResourceView{
			ResourceID:    resource.ID,
			Title:         resource.Title,
			Type:          resource.Type,
			DownloadCount: resource.DownloadCount,
			Locked:        !enrolled,
		})
	}

	return detail, nil
}

// VideoPlayback 获取单个视频的签名播放地址，要求已报名
func (s *CourseService) VideoPlayback(ctx context.Context, userID, courseID, videoID uint) (*VideoView, error) {
	video, err := s.VideoRepo.FindByCourseAndID(courseID, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVideoNotFound
		}
		return nil, err
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	videoURL, err := s.Storage.SignedURL(ctx, video.ObjectKey)
	if err != nil {
		return nil, err
	}
	thumbnailURL, err := s.Storage.SignedURL(ctx, video.Thumbnail)
	if err != nil {
		return nil, err
	}

	view := &VideoView{
		VideoID:      video.ID,
		Title:        video.Title,
		Description:  video.Description,
		Duration:     video.FormattedDuration(),
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
	}

	// 带上上次播放位置，客户端直接续播
	progress, err := s.ProgressRepo.FindByUserAndVideo(userID, videoID)
	if err == nil {
		view.LastWatchedPosition = progress.LastWatchedPosition
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return view, nil
}

// DownloadResource 生成资料下载地址并累加下载计数，要求已报名
func (s *CourseService) DownloadResource(ctx context.Context, userID, courseID, resourceID uint) (string, error) {
	resource, err := s.ResourceRepo.FindByCourseAndID(courseID, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrResourceNotFound
		}
		return "", err
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return "", err
	}
	if !enrolled {
		return "", util.ErrNotEnrolled
	}

	url, err := s.Storage.SignedURL(ctx, resource.ObjectKey)
	if err != nil {
		return "", err
	}

	if err := s.ResourceRepo.IncrementDownloadCount(resource.ID); err != nil {
		logger.Log.Warn("failed to increment download count", zap.Uint("resourceID", resource.ID), zap.Error(err))
	}
	return url, nil
}

// AdminCourseDetail 管理端视图，包含未发布视频与对象key以外的全部字段
func (s *CourseService) AdminCourseDetail(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByIDWithContent(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) List() ([]model.Course, error) {
	return s.CourseRepo.FindAll()
}

func saveUploadedFile(fileHeader *multipart.FileHeader, dst string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
