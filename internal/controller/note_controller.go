package controller

import (
	"errors"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NoteController struct {
	NoteService *service.NoteService
}

func NewNoteController(noteService *service.NoteService) *NoteController {
	return &NoteController{NoteService: noteService}
}

// Create godoc
// @Summary 创建视频笔记
// @Tags 笔记
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   videoId path int               true "视频ID"
// @Param   body    body service.NoteInput true "笔记内容与播放位置"
// @Success 201 {object} util.Response{data=model.Note}
// @Failure 403 {object} util.Response "未报名该课程"
// @Failure 404 {object} util.Response "视频不存在"
// @Router /api/videos/{videoId}/notes [post]
func (c *NoteController) Create(ctx *gin.Context) {
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

	var req service.NoteInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	note, err := c.NoteService.Create(claims.UserID, videoID, &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrVideoNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx, util.ErrNotEnrolled.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, note)
}

// ListByVideo godoc
// @Summary 某视频下我的笔记
// @Description 按记录时的播放位置排序
// @Tags 笔记
// @Security BearerAuth
// @Produce  json
// @Param   videoId path int true "视频ID"
// @Success 200 {object} util.Response{data=[]model.Note}
// @Router /api/videos/{videoId}/notes [get]
func (c *NoteController) ListByVideo(ctx *gin.Context) {
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

	notes, err := c.NoteService.ListByVideo(claims.UserID, videoID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, notes)
}

// ListMine godoc
// @Summary 我的全部笔记
// @Tags 笔记
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Note}
// @Router /api/notes [get]
func (c *NoteController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	notes, err := c.NoteService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, notes)
}

// Update godoc
// @Summary 更新笔记
// @Tags 笔记
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   id   path int               true "笔记ID"
// @Param   body body service.NoteInput true "笔记内容与播放位置"
// @Success 200 {object} util.Response{data=model.Note}
// @Failure 404 {object} util.Response "笔记不存在"
// @Router /api/notes/{id} [put]
func (c *NoteController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	noteID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid note id")
		return
	}

	var req service.NoteInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	note, err := c.NoteService.Update(noteID, claims.UserID, &req)
	if err != nil {
		if errors.Is(err, util.ErrNoteNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, note)
}

// Delete godoc
// @Summary 删除笔记
// @Tags 笔记
// @Security BearerAuth
// @Produce  json
// @Param   id path int true "笔记ID"
// @Success 204 "已删除"
// @Failure 404 {object} util.Response "笔记不存在"
// @Router /api/notes/{id} [delete]
func (c *NoteController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	noteID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid note id")
		return
	}

	if err := c.NoteService.Delete(noteID, claims.UserID); err != nil {
		if errors.Is(err, util.ErrNoteNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.NoContent(ctx)
}
