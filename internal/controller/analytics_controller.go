package controller

import (
	"strconv"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AnalyticsController 管理端运营统计
type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// DailyActiveUsers godoc
// @Summary 日活统计
// @Tags 管理
// @Security BearerAuth
// @Produce  json
// @Param   days query int false "统计天数，默认30"
// @Success 200 {object} util.Response{data=[]model.DailyActiveUsers}
// @Router /api/admin/analytics/daily-active-users [get]
func (c *AnalyticsController) DailyActiveUsers(ctx *gin.Context) {
	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "30"))

	rows, err := c.AnalyticsService.DailyActiveUsers(days)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, rows)
}

// ActiveUserSummary godoc
// @Summary 活跃用户汇总
// @Tags 管理
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=model.ActiveUserSummary}
// @Router /api/admin/analytics/active-users [get]
func (c *AnalyticsController) ActiveUserSummary(ctx *gin.Context) {
	summary, err := c.AnalyticsService.ActiveUserSummary()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// CompletionRates godoc
// @Summary 各课程完成率
// @Tags 管理
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.CourseCompletionRate}
// @Router /api/admin/analytics/completion-rates [get]
func (c *AnalyticsController) CompletionRates(ctx *gin.Context) {
	rates, err := c.AnalyticsService.CompletionRates()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, rates)
}

// PlatformStatistics godoc
// @Summary 平台总量统计
// @Tags 管理
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} util.Response{data=model.PlatformStatistics}
// @Router /api/admin/analytics/platform [get]
func (c *AnalyticsController) PlatformStatistics(ctx *gin.Context) {
	stats, err := c.AnalyticsService.PlatformStatistics()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
