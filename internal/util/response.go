package util

import (
	"errors"
	"net/http"

	"skillbridge_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

// RespondError 将业务错误映射为 HTTP 响应，未知错误统一返回 500 且不暴露细节
func RespondError(c *gin.Context, err error) {
	var issued *AlreadyIssuedError
	switch {
	case errors.As(err, &issued):
		ErrorWithData(c, http.StatusConflict, ErrAlreadyIssued.Error(), gin.H{"certificate_id": issued.CertificateID})
	case errors.Is(err, ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCredential):
		Error(c, http.StatusUnauthorized, ErrInvalidCredential.Error())
	case errors.Is(err, ErrDuplicateIdentity):
		Error(c, http.StatusConflict, ErrDuplicateIdentity.Error())
	case errors.Is(err, ErrAlreadyEnrolled):
		Error(c, http.StatusConflict, ErrAlreadyEnrolled.Error())
	case errors.Is(err, ErrAlreadyCompleted):
		Error(c, http.StatusConflict, ErrAlreadyCompleted.Error())
	default:
		LogInternalError(c, err)
	}
}
