package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoProgressRepository struct {
	DB *gorm.DB
}

func NewVideoProgressRepository(db *gorm.DB) *VideoProgressRepository {
	return &VideoProgressRepository{DB: db}
}

// Upsert 按 (user_id, video_id) 唯一键写入播放进度，
// 已存在则更新位置/完成标记/百分比
func (r *VideoProgressRepository) Upsert(progress *model.VideoProgress) error {
	return r.DB.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"last_watched_position", "is_completed", "progress_percentage", "updated_at",
			}),
		}).
		Create(progress).Error
}

func (r *VideoProgressRepository) FindByUserAndVideo(userID, videoID uint) (*model.VideoProgress, error) {
	var progress model.VideoProgress
	err := r.DB.Where("user_id = ? AND video_id = ?", userID, videoID).First(&progress).Error
	return &progress, err
}

// CountCompletedInCourse 用户在某课程下已完成的视频数，
// 课程百分比 = 完成数 / 课程视频总数
func (r *VideoProgressRepository) CountCompletedInCourse(userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.VideoProgress{}).
		Joins("JOIN videos ON videos.id = video_progress.video_id").
		Where("video_progress.user_id = ? AND videos.course_id = ? AND video_progress.is_completed = ?",
			userID, courseID, true).
		Count(&count).Error
	return count, err
}

// UpdatePercentage 把最新的课程级百分比回写到本次心跳的进度行。
// 只动这一行：其他行保留各自写入时的快照，updated_at 也只随
// 真实心跳移动（续播列表靠它排序），因此用 UpdateColumn
func (r *VideoProgressRepository) UpdatePercentage(userID, videoID uint, percentage float64) error {
	return r.DB.Model(&model.VideoProgress{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		UpdateColumn("progress_percentage", percentage).Error
}

// FindInProgressByUser 续播列表：未完成且已有播放位置的记录，
// 最近观看的排在前面
func (r *VideoProgressRepository) FindInProgressByUser(userID uint, limit int) ([]model.VideoProgress, error) {
	var records []model.VideoProgress
	query := r.DB.Where("user_id = ? AND is_completed = ? AND last_watched_position > 0", userID, false).
		Preload("Video").Preload("Video.Course").
		Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

func (r *VideoProgressRepository) FindByUserAndCourse(userID, courseID uint) ([]model.VideoProgress, error) {
	var records []model.VideoProgress
	err := r.DB.
		Joins("JOIN videos ON videos.id = video_progress.video_id").
		Where("video_progress.user_id = ? AND videos.course_id = ?", userID, courseID).
		Preload("Video").
		Order("video_progress.updated_at DESC").
		Find(&records).Error
	return records, err
}

func (r *VideoProgressRepository) FindByUser(userID uint) ([]model.VideoProgress, error) {
	var records []model.VideoProgress
	err := r.DB.Where("user_id = ?", userID).
		Preload("Video").Preload("Video.Course").
		Order("updated_at DESC").
		Find(&records).Error
	return records, err
}

// FindByVideo 某视频全部用户的进度，管理端用
func (r *VideoProgressRepository) FindByVideo(videoID uint) ([]model.VideoProgress, error) {
	var records []model.VideoProgress
	err := r.DB.Where("video_id = ?", videoID).
		Preload("User").
		Order("updated_at DESC").
		Find(&records).Error
	return records, err
}

// CountCompletedByCourse 某课程下 is_completed 的进度行总数，完课率统计用
func (r *VideoProgressRepository) CountCompletedByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.VideoProgress{}).
		Joins("JOIN videos ON videos.id = video_progress.video_id").
		Where("videos.course_id = ? AND video_progress.is_completed = ?", courseID, true).
		Count(&count).Error
	return count, err
}
