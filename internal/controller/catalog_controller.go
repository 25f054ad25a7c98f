package controller

import (
	"errors"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController 学生端课程目录与内容访问
type CatalogController struct {
	CourseService     *service.CourseService
	EnrollmentService *service.EnrollmentService
}

func NewCatalogController(courseService *service.CourseService, enrollmentService *service.EnrollmentService) *CatalogController {
	return &CatalogController{
		CourseService:     courseService,
		EnrollmentService: enrollmentService,
	}
}

// Catalog godoc
// @Summary 课程目录
// @Description 匿名可访问；携带令牌时附带报名状态
// @Tags 课程
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.CourseSummary}
// @Router /api/courses [get]
func (c *CatalogController) Catalog(ctx *gin.Context) {
	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	summaries, err := c.CourseService.Catalog(ctx.Request.Context(), userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summaries)
}

// Detail godoc
// @Summary 课程详情
// @Description 已报名用户拿到签名播放地址，未报名只看到锁定预览
// @Tags 课程
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CatalogController) Detail(ctx *gin.Context) {
	courseID, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	detail, err := c.CourseService.Detail(ctx.Request.Context(), userID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

// Enroll godoc
// @Summary 报名课程
// @Description 幂等操作，重复报名返回已有记录
// @Tags 课程
// @Security BearerAuth
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Enrollment} "已报名过"
// @Success 201 {object} util.Response{data=model.Enrollment} "报名成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/enroll [post]
func (c *CatalogController) Enroll(ctx *gin.Context) {
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

	result, err := c.EnrollmentService.Enroll(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	if result.Created {
		util.CreatedWithMessage(ctx, "Enrolled successfully", result.Enrollment)
	} else {
		util.SuccessWithMessage(ctx, "Already enrolled", result.Enrollment)
	}
}

// MyCourses godoc
// @Summary 我的课程
// @Description 已报名课程列表，附带课程完成百分比
// @Tags 课程
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.EnrolledCourseSummary}
// @Router /api/courses/my [get]
func (c *CatalogController) MyCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.EnrollmentService.MyCourses(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, courses)
}

// VideoPlayback godoc
// @Summary 获取视频播放地址
// @Description 返回限时签名地址，要求已报名
// @Tags 课程
// @Security BearerAuth
// @Produce  json
// @Param   id      path int true "课程ID"
// @Param   videoId path int true "视频ID"
// @Success 200 {object} util.Response{data=service.VideoView}
// @Failure 403 {object} util.Response "未报名该课程"
// @Failure 404 {object} util.Response "视频不存在"
// @Router /api/courses/{id}/videos/{videoId} [get]
func (c *CatalogController) VideoPlayback(ctx *gin.Context) {
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
	videoID, err := util.ParseUint(ctx.Param("videoId"))
	if err != nil {
		util.BadRequest(ctx, "invalid video id")
		return
	}

	view, err := c.CourseService.VideoPlayback(ctx.Request.Context(), claims.UserID, courseID, videoID)
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

	util.Success(ctx, view)
}

// DownloadResource godoc
// @Summary 获取资料下载地址
// @Description 返回限时签名地址并累加下载计数，要求已报名
// @Tags 课程
// @Security BearerAuth
// @Produce  json
// @Param   id         path int true "课程ID"
// @Param   resourceId path int true "资料ID"
// @Success 200 {object} util.Response{data=object} "下载地址"
// @Failure 403 {object} util.Response "未报名该课程"
// @Failure 404 {object} util.Response "资料不存在"
// @Router /api/courses/{id}/resources/{resourceId}/download [get]
func (c *CatalogController) DownloadResource(ctx *gin.Context) {
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
	resourceID, err := util.ParseUint(ctx.Param("resourceId"))
	if err != nil {
		util.BadRequest(ctx, "invalid resource id")
		return
	}

	url, err := c.CourseService.DownloadResource(ctx.Request.Context(), claims.UserID, courseID, resourceID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrResourceNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx, util.ErrNotEnrolled.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"downloadUrl": url})
}
