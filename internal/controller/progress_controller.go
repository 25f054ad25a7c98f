package controller

import (
	"errors"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// Record godoc
// @Summary 上报播放进度
// @Description 心跳接口：更新播放位置与完成标记，返回最新的课程完成百分比
// @Tags 进度
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   videoId path int                          true "视频ID"
// @Param   body    body service.RecordProgressInput true "播放位置与完成标记"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "播放位置非法"
// @Failure 403 {object} util.Response "未报名该课程"
// @Failure 404 {object} util.Response "视频不存在"
// @Router /api/videos/{videoId}/progress [post]
func (c *ProgressController) Record(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	videoID, err := util.ParseUint(ctx.Param("videoId"))
	if err != nil {
		util.BadRequest(ctx, "invalid video id")
		return
	}

	var req service.RecordProgressInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, pct, err := c.ProgressService.Record(claims.UserID, videoID, &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidPosition):
			util.BadRequest(ctx, util.ErrInvalidPosition.Error())
		case errors.Is(err, util.ErrVideoNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx, util.ErrNotEnrolled.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"progress":                 record,
		"courseProgressPercentage": pct,
	})
}

// CourseProgress godoc
// @Summary 课程完成度
// @Tags 进度
// @Security BearerAuth
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Failure 403 {object} util.Response "未报名该课程"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) CourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	progress, err := c.ProgressService.CourseProgress(claims.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx, util.ErrNotEnrolled.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, progress)
}

// CourseHistory godoc
// @Summary 课程内观看记录
// @Description 当前用户在某课程下各视频的进度明细，最近更新在前
// @Tags 进度
// @Security BearerAuth
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.VideoProgress}
// @Failure 403 {object} util.Response "未报名该课程"
// @Router /api/courses/{id}/progress/history [get]
func (c *ProgressController) CourseHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	records, err := c.ProgressService.VideoProgressByUser(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrNotEnrolled) {
			util.Forbidden(ctx, util.ErrNotEnrolled.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, records)
}

// ContinueWatching godoc
// @Summary 续播列表
// @Description 未完成且已有播放位置的视频，最近观看在前
// @Tags 进度
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.ContinueWatchingItem}
// @Router /api/progress/continue-watching [get]
func (c *ProgressController) ContinueWatching(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	items, err := c.ProgressService.ContinueWatching(ctx.Request.Context(), claims.UserID, 0)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, items)
}

// History godoc
// @Summary 观看历史
// @Tags 进度
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.VideoProgress}
// @Router /api/progress/history [get]
func (c *ProgressController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.ProgressService.History(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, records)
}

// AdminVideoProgress godoc
// @Summary 某视频全部用户的进度（管理端）
// @Tags 管理
// @Security BearerAuth
// @Produce  json
// @Param   videoId path int true "视频ID"
// @Success 200 {object} util.Response{data=[]model.VideoProgress}
// @Failure 404 {object} util.Response "视频不存在"
// @Router /api/admin/videos/{videoId}/progress [get]
func (c *ProgressController) AdminVideoProgress(ctx *gin.Context) {
	videoID, err := util.ParseUint(ctx.Param("videoId"))
	if err != nil {
		util.BadRequest(ctx, "invalid video id")
		return
	}

	records, err := c.ProgressService.AdminVideoProgress(videoID)
	if err != nil {
		if errors.Is(err, util.ErrVideoNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, records)
}
