package controller

import (
	"skillbridge_backend/internal/service"
	"skillbridge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCourses godoc
// @Summary 课程列表
// @Description 所有上架课程，按名称排序
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListCourses(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"courses": courses})
}

// ListSkillsnaps godoc
// @Summary 课程 skillsnap 列表
// @Description 按顺序返回课程的 skillsnap，附带当前用户完成状态
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/courses/{courseId}/skillsnaps [get]
func (c *CourseController) ListSkillsnaps(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := util.ParseID(ctx.Param("courseId"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	lessons, err := c.CourseService.ListLessons(ctx.Request.Context(), courseID, userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"skillsnaps": lessons})
}
