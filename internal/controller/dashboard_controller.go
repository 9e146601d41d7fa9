package controller

import (
	"skillbridge_backend/internal/service"
	"skillbridge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary 获取学生仪表盘
// @Description 报名进度、最近完成的 skillsnap、证书与统计
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.GetUserDashboard(ctx.Request.Context(), userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}
