package controller

import (
	"skillbridge_backend/internal/service"
	"skillbridge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	UserID             string `json:"user_id" binding:"required,max=100"`
	Password           string `json:"password" binding:"required,max=72"`
	Name               string `json:"name" binding:"max=100"`
	Email              string `json:"email" binding:"omitempty,email"`
	Location           string `json:"location" binding:"max=100"`
	LanguagePreference string `json:"language_preference" binding:"max=50"`
}

// Register godoc
// @Summary 注册新用户
// @Description 创建账号并直接返回会话令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=service.Session} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "用户ID已存在"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.AuthService.Register(ctx.Request.Context(), service.RegisterInput{
		LoginID:            req.UserID,
		Password:           req.Password,
		Name:               req.Name,
		Email:              req.Email,
		Location:           req.Location,
		LanguagePreference: req.LanguagePreference,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// swagger:model LoginRequest
type LoginRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
	CourseName string `json:"course_name"`
}

// Login godoc
// @Summary 用户登录
// @Description 验证用户身份并返回7天有效的JWT；指定课程名时自动报名
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=service.Session} "登录成功"
// @Failure 401 {object} util.Response "密码错误"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.AuthService.Login(ctx.Request.Context(), req.UserID, req.Password, req.CourseName)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// Me godoc
// @Summary 当前用户
// @Tags 认证
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.PublicUser}
// @Failure 401 {object} util.Response
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"user": user})
}
