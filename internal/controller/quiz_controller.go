package controller

import (
	"strconv"

	"skillbridge_backend/internal/service"
	"skillbridge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// GetQuestions godoc
// @Summary 入门测验题目
// @Tags 测验
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/quiz/questions [get]
func (c *QuizController) GetQuestions(ctx *gin.Context) {
	util.Success(ctx, gin.H{"questions": c.QuizService.Questions()})
}

// QuizSubmitRequest 键为题目ID（字符串形式）
type QuizSubmitRequest struct {
	Responses map[string]string `json:"responses" binding:"required"`
}

// SubmitResponses godoc
// @Summary 提交测验答案
// @Description 覆盖之前的答案，更新画像并返回推荐课程
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body QuizSubmitRequest true "答案"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/quiz/responses [post]
func (c *QuizController) SubmitResponses(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req QuizSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answers := make(map[int]string, len(req.Responses))
	for key, answer := range req.Responses {
		id, err := strconv.Atoi(key)
		if err != nil {
			util.BadRequest(ctx, "invalid question id "+strconv.Quote(key))
			return
		}
		answers[id] = answer
	}

	tag, err := c.QuizService.SubmitQuiz(ctx.Request.Context(), userID, answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	recommendations, err := c.QuizService.Recommend(ctx.Request.Context(), userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"profile":         tag,
		"recommendations": recommendations,
	})
}

// GetRecommendations godoc
// @Summary 个性化课程推荐
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/recommendations [get]
func (c *QuizController) GetRecommendations(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	recommendations, err := c.QuizService.Recommend(ctx.Request.Context(), userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"recommendations": recommendations})
}
