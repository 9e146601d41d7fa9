package controller

import (
	"errors"
	"io"

	"skillbridge_backend/internal/service"
	"skillbridge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ListEnrollments godoc
// @Summary 我的报名
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/enrollments [get]
func (c *ProgressController) ListEnrollments(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.ProgressService.ListEnrollments(ctx.Request.Context(), userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"enrollments": enrollments})
}

type EnrollRequest struct {
	CourseID uint `json:"course_id" binding:"required"`
}

// Enroll godoc
// @Summary 报名课程
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body EnrollRequest true "课程"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response "课程不存在"
// @Failure 409 {object} util.Response "已报名"
// @Router /api/enrollments [post]
func (c *ProgressController) Enroll(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.ProgressService.Enroll(ctx.Request.Context(), userID, req.CourseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

type CompleteRequest struct {
	TimeSpent *int     `json:"time_spent" binding:"omitempty,min=0"`
	Score     *float64 `json:"score" binding:"omitempty,min=0,max=100"`
}

// CompleteSkillsnap godoc
// @Summary 完成 skillsnap
// @Description 记录完成并重新计算课程进度；请求体可省略
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param skillsnapId path int true "skillsnap ID"
// @Param body body CompleteRequest false "学习时长与得分"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "已完成"
// @Router /api/skillsnaps/{skillsnapId}/complete [post]
func (c *ProgressController) CompleteSkillsnap(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := util.ParseID(ctx.Param("skillsnapId"))
	if err != nil {
		util.BadRequest(ctx, "invalid skillsnap id")
		return
	}

	var req CompleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), userID, lessonID, service.CompletionInput{
		TimeSpentMinutes: req.TimeSpent,
		Score:            req.Score,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
