package controller

import (
	"fmt"
	"net/http"

	"skillbridge_backend/internal/service"
	"skillbridge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

type GenerateCertificateRequest struct {
	CourseID uint `json:"course_id" binding:"required"`
}

// Generate godoc
// @Summary 生成证书
// @Description 每个用户每门课程只签发一次；重复请求返回409及已有证书编号
// @Tags 证书
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GenerateCertificateRequest true "课程"
// @Success 201 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response{data=object} "证书已存在"
// @Router /api/certificates/generate [post]
func (c *CertificateController) Generate(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateCertificateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cert, err := c.CertificateService.Issue(ctx.Request.Context(), userID, req.CourseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, cert)
}

// List godoc
// @Summary 我的证书
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/certificates [get]
func (c *CertificateController) List(ctx *gin.Context) {
	userID, ok := util.GetUserIDFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	certificates, err := c.CertificateService.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"certificates": certificates})
}

// Verify godoc
// @Summary 验证证书
// @Description 公开接口；无效编号仅返回 valid=false
// @Tags 证书
// @Produce json
// @Param certificateId path string true "证书编号"
// @Success 200 {object} util.Response{data=service.VerificationResult}
// @Router /api/certificates/verify/{certificateId} [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	result, err := c.CertificateService.Verify(ctx.Request.Context(), ctx.Param("certificateId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Download godoc
// @Summary 下载证书图片
// @Tags 证书
// @Produce png
// @Param certificateId path string true "证书编号"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /api/certificates/download/{certificateId} [get]
func (c *CertificateController) Download(ctx *gin.Context) {
	id := ctx.Param("certificateId")
	data, err := c.CertificateService.FetchArtifact(ctx.Request.Context(), id, service.ArtifactCertificate)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate_%s.png"`, id))
	ctx.Data(http.StatusOK, util.MimePNG, data)
}

// QRCode godoc
// @Summary 证书二维码
// @Tags 证书
// @Produce png
// @Param certificateId path string true "证书编号"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /api/certificates/qr/{certificateId} [get]
func (c *CertificateController) QRCode(ctx *gin.Context) {
	data, err := c.CertificateService.FetchArtifact(ctx.Request.Context(), ctx.Param("certificateId"), service.ArtifactQR)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, util.MimePNG, data)
}
