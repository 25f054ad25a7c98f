package controller

import (
	"errors"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CourseController 管理端课程与内容维护
type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// Create godoc
// @Summary 创建课程
// @Tags 课程管理
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   body body service.CourseInput true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "日期区间无效"
// @Router /api/admin/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(claims.UserID, &req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidDateRange) {
			util.BadRequest(ctx, util.ErrInvalidDateRange.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, course)
}

// Update godoc
// @Summary 更新课程
// @Tags 课程管理
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   id   path int                 true "课程ID"
// @Param   body body service.CourseInput true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req service.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Update(courseID, &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidDateRange):
			util.BadRequest(ctx, util.ErrInvalidDateRange.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, course)
}

// Delete godoc
// @Summary 删除课程
// @Description 级联删除课程下的视频、资料、选课与进度
// @Tags 课程管理
// @Security BearerAuth
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 204 "已删除"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	if err := c.CourseService.Delete(courseID); err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.NoContent(ctx)
}

// List godoc
// @Summary 课程列表（管理端）
// @Tags 课程管理
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/admin/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	courses, err := c.CourseService.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// Detail godoc
// @Summary 课程详情（管理端）
// @Description 含未发布视频
// @Tags 课程管理
// @Security BearerAuth
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/courses/{id} [get]
func (c *CourseController) Detail(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	course, err := c.CourseService.AdminCourseDetail(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, course)
}

// UploadImage godoc
// @Summary 上传课程封面
// @Tags 课程管理
// @Security BearerAuth
// @Accept  multipart/form-data
// @Produce  json
// @Param   id    path     int  true "课程ID"
// @Param   image formData file true "封面图片"
// @Success 200 {object} util.Response{data=object} "签名访问地址"
// @Router /api/admin/courses/{id}/image [post]
func (c *CourseController) UploadImage(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image file is required")
		return
	}

	url, err := c.CourseService.UploadImage(ctx.Request.Context(), courseID, fileHeader)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, gin.H{"imageUrl": url})
}

// UploadVideo godoc
// @Summary 上传课程视频
// @Description 自动探测时长并生成缩略图，上传成功后通知全部已报名用户
// @Tags 课程管理
// @Security BearerAuth
// @Accept  multipart/form-data
// @Produce  json
// @Param   id          path     int    true  "课程ID"
// @Param   title       formData string true  "视频标题"
// @Param   description formData string false "视频简介"
// @Param   video       formData file   true  "视频文件"
// @Success 201 {object} util.Response{data=model.Video}
// @Failure 400 {object} util.Response "视频格式不支持"
// @Router /api/admin/courses/{id}/videos [post]
func (c *CourseController) UploadVideo(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req service.VideoInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	fileHeader, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "video file is required")
		return
	}

	video, err := c.CourseService.UploadVideo(ctx.Request.Context(), courseID, &req, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidVideoExt):
			util.BadRequest(ctx, util.ErrInvalidVideoExt.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, video)
}

// UpdateVideo godoc
// @Summary 更新视频信息
// @Tags 课程管理
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   id      path int                      true "课程ID"
// @Param   videoId path int                      true "视频ID"
// @Param   body    body service.VideoUpdateInput true "视频字段"
// @Success 200 {object} util.Response{data=model.Video}
// @Failure 404 {object} util.Response "视频不存在"
// @Router /api/admin/courses/{id}/videos/{videoId} [put]
func (c *CourseController) UpdateVideo(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	videoID, err := util.ParseUint(ctx.Param("videoId"))
	if err != nil {
		util.BadRequest(ctx, "invalid video id")
		return
	}

	var req service.VideoUpdateInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	video, err := c.CourseService.UpdateVideo(courseID, videoID, &req)
	if err != nil {
		if errors.Is(err, util.ErrVideoNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, video)
}

// DeleteVideo godoc
// @Summary 删除视频
// @Tags 课程管理
// @Security BearerAuth
// @Produce  json
// @Param   id      path int true "课程ID"
// @Param   videoId path int true "视频ID"
// @Success 204 "已删除"
// @Failure 404 {object} util.Response "视频不存在"
// @Router /api/admin/courses/{id}/videos/{videoId} [delete]
func (c *CourseController) DeleteVideo(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	videoID, err := util.ParseUint(ctx.Param("videoId"))
	if err != nil {
		util.BadRequest(ctx, "invalid video id")
		return
	}

	if err := c.CourseService.DeleteVideo(ctx.Request.Context(), courseID, videoID); err != nil {
		if errors.Is(err, util.ErrVideoNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.NoContent(ctx)
}

// UploadResource godoc
// @Summary 上传课程资料
// @Description 上传成功后通知全部已报名用户
// @Tags 课程管理
// @Security BearerAuth
// @Accept  multipart/form-data
// @Produce  json
// @Param   id    path     int    true "课程ID"
// @Param   title formData string true "资料标题"
// @Param   type  formData string true "资料类型 pdf/word/powerpoint/excel/link"
// @Param   file  formData file   true "资料文件"
// @Success 201 {object} util.Response{data=model.Resource}
// @Failure 400 {object} util.Response "资料类型无效"
// @Router /api/admin/courses/{id}/resources [post]
func (c *CourseController) UploadResource(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req service.ResourceInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "resource file is required")
		return
	}

	resource, err := c.CourseService.UploadResource(ctx.Request.Context(), courseID, &req, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidResourceType):
			util.BadRequest(ctx, util.ErrInvalidResourceType.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, resource)
}

// UpdateResource godoc
// @Summary 更新课程资料信息
// @Tags 课程管理
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param   id         path int                         true "课程ID"
// @Param   resourceId path int                         true "资料ID"
// @Param   body       body service.ResourceUpdateInput true "资料字段"
// @Success 200 {object} util.Response{data=model.Resource}
// @Failure 404 {object} util.Response "资料不存在"
// @Router /api/admin/courses/{id}/resources/{resourceId} [put]
func (c *CourseController) UpdateResource(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	resourceID, err := util.ParseUint(ctx.Param("resourceId"))
	if err != nil {
		util.BadRequest(ctx, "invalid resource id")
		return
	}

	var req service.ResourceUpdateInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.CourseService.UpdateResource(courseID, resourceID, &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrResourceNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidResourceType):
			util.BadRequest(ctx, util.ErrInvalidResourceType.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, resource)
}

// DeleteResource godoc
// @Summary 删除课程资料
// @Tags 课程管理
// @Security BearerAuth
// @Produce  json
// @Param   id         path int true "课程ID"
// @Param   resourceId path int true "资料ID"
// @Success 204 "已删除"
// @Failure 404 {object} util.Response "资料不存在"
// @Router /api/admin/courses/{id}/resources/{resourceId} [delete]
func (c *CourseController) DeleteResource(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	resourceID, err := util.ParseUint(ctx.Param("resourceId"))
	if err != nil {
		util.BadRequest(ctx, "invalid resource id")
		return
	}

	if err := c.CourseService.DeleteResource(ctx.Request.Context(), courseID, resourceID); err != nil {
		if errors.Is(err, util.ErrResourceNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.NoContent(ctx)
}
