package controller

import (
	"errors"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// ListGlobal godoc
// @Summary 全局通知列表
// @Tags 通知
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/notifications/global [get]
func (c *NotificationController) ListGlobal(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	notifications, err := c.NotificationService.ListGlobal(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, notifications)
}

// ListRelevant godoc
// @Summary 与已选课程相关的通知
// @Tags 通知
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/notifications/relevant [get]
func (c *NotificationController) ListRelevant(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	notifications, err := c.NotificationService.ListRelevant(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, notifications)
}

// UnreadCount godoc
// @Summary 未读通知数
// @Tags 通知
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.NotificationService.UnreadCount(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"unreadCount": count})
}

// MarkRead godoc
// @Summary 标记通知已读
// @Description 只能操作属于自己的通知，他人通知按不存在处理
// @Tags 通知
// @Security BearerAuth
// @Produce  json
// @Param   notificationId path string true "通知UUID"
// @Success 200 {object} util.Response "已标记"
// @Failure 404 {object} util.Response "通知不存在"
// @Router /api/notifications/{notificationId}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	notificationID := ctx.Param("notificationId")
	if notificationID == "" {
		util.BadRequest(ctx, "notification id is required")
		return
	}

	if err := c.NotificationService.MarkRead(notificationID, claims.UserID); err != nil {
		if errors.Is(err, util.ErrNotifNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.SuccessWithMessage(ctx, "Notification marked as read", nil)
}

type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

// Broadcast godoc
// @Summary 发布全局公告（管理端）
// @Description 面向全体学生扇出，按用户与文案去重
// @Tags 管理
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   body body BroadcastRequest true "公告文案"
// @Success 201 {object} util.Response{data=object} "实际新建的通知数"
// @Failure 400 {object} util.Response "文案为空"
// @Router /api/admin/notifications/broadcast [post]
func (c *NotificationController) Broadcast(ctx *gin.Context) {
	var req BroadcastRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.NotificationService.NotifyGlobal(req.Message)
	if err != nil {
		if errors.Is(err, util.ErrEmptyMessage) {
			util.BadRequest(ctx, util.ErrEmptyMessage.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"created": created})
}

// NotifyCourse godoc
// @Summary 向课程报名用户发通知（管理端）
// @Tags 管理
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   id   path int              true "课程ID"
// @Param   body body BroadcastRequest true "通知文案"
// @Success 201 {object} util.Response{data=object} "扇出的通知数"
// @Router /api/admin/courses/{id}/notifications [post]
func (c *NotificationController) NotifyCourse(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req BroadcastRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.NotificationService.NotifyEnrolled(courseID, req.Message)
	if err != nil {
		if errors.Is(err, util.ErrEmptyMessage) {
			util.BadRequest(ctx, util.ErrEmptyMessage.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"created": created})
}

// UpdateMessage godoc
// @Summary 修正通知文案（管理端）
// @Description 按UUID定位任意用户名下的通知行并更新文案
// @Tags 管理
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   notificationId path string           true "通知UUID"
// @Param   body           body BroadcastRequest true "新文案"
// @Success 200 {object} util.Response{data=model.Notification}
// @Failure 404 {object} util.Response "通知不存在"
// @Router /api/admin/notifications/{notificationId} [put]
func (c *NotificationController) UpdateMessage(ctx *gin.Context) {
	notificationID := ctx.Param("notificationId")

	var req BroadcastRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	notification, err := c.NotificationService.UpdateMessage(notificationID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotifNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrEmptyMessage):
			util.BadRequest(ctx, util.ErrEmptyMessage.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, notification)
}
