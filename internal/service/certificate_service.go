package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/repository"
	"skillbridge_backend/internal/util"
	"skillbridge_backend/pkg/certimage"
	"skillbridge_backend/pkg/logger"
	"skillbridge_backend/pkg/monitoring"
	"skillbridge_backend/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CertificateRenderer draws the artifacts of one certificate.
type CertificateRenderer interface {
	QRCode(url string) ([]byte, error)
	Certificate(content certimage.Content) ([]byte, error)
}

type ArtifactKind string

const (
	ArtifactCertificate ArtifactKind = "certificate"
	ArtifactQR          ArtifactKind = "qr"
)

// VerificationResult is the public answer to "is this certificate real".
// Invalid results carry only Valid=false.
type VerificationResult struct {
	Valid           bool       `json:"valid"`
	CertificateID   string     `json:"certificate_id,omitempty"`
	IssuedAt        *time.Time `json:"issued_at,omitempty"`
	StudentName     string     `json:"student_name,omitempty"`
	CourseName      string     `json:"course_name,omitempty"`
	VerificationURL string     `json:"verification_url,omitempty"`
}

var errCertificateIDTaken = errors.New("certificate id collision")

type CertificateService struct {
	DB         *gorm.DB
	CertRepo   *repository.CertificateRepository
	UserRepo   *repository.UserRepository
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
	Renderer   CertificateRenderer
	Cfg        *config.CertificateConfig

	idPattern *regexp.Regexp
	now       func() time.Time
	newSuffix func() string
}

func NewCertificateService(
	db *gorm.DB,
	certRepo *repository.CertificateRepository,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	storage *StorageService,
	renderer CertificateRenderer,
	cfg *config.CertificateConfig,
) *CertificateService {
	return &CertificateService{
		DB:         db,
		CertRepo:   certRepo,
		UserRepo:   userRepo,
		CourseRepo: courseRepo,
		Storage:    storage,
		Renderer:   renderer,
		Cfg:        cfg,
		idPattern:  regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.IDPrefix) + `-\d{4}-[0-9A-Z]{8}$`),
		now:        time.Now,
		newSuffix:  randomSuffix,
	}
}

// randomSuffix 取 UUID 前 8 位十六进制并转大写
func randomSuffix() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

func qrKey(certificateID string) string {
	return "qr/qr_" + certificateID + ".png"
}

func certificateKey(certificateID string) string {
	return "certificates/cert_" + certificateID + ".png"
}

func (s *CertificateService) verificationURL(certificateID string) string {
	return strings.TrimRight(s.Cfg.VerifyBaseURL, "/") + "/verify/" + certificateID
}

// Issue creates the certificate of (userID, courseID) once. Repeated calls
// return *util.AlreadyIssuedError carrying the existing ID.
func (s *CertificateService) Issue(ctx context.Context, userID, courseID uint) (cert *model.Certificate, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "certificate.issue")
	span.SetAttributes(attribute.Int64("user.id", int64(userID)), attribute.Int64("course.id", int64(courseID)))
	defer func() {
		switch {
		case err == nil:
			monitoring.CertificateIssuance.WithLabelValues("issued").Inc()
		case errors.Is(err, util.ErrAlreadyIssued):
			monitoring.CertificateIssuance.WithLabelValues("already_issued").Inc()
		default:
			monitoring.CertificateIssuance.WithLabelValues("failed").Inc()
			tracing.RecordError(span, err)
		}
		span.End()
	}()

	db := s.DB.WithContext(ctx)

	if id, found, err := s.existingID(db, userID, courseID); err != nil {
		return nil, err
	} else if found {
		return nil, &util.AlreadyIssuedError{CertificateID: id}
	}

	user, err := s.UserRepo.WithTx(db).FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NotFoundf("user %d", userID)
	}
	if err != nil {
		return nil, util.StorageErr("load user", err)
	}

	course, err := s.CourseRepo.WithTx(db).FindByID(courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NotFoundf("course %d", courseID)
	}
	if err != nil {
		return nil, util.StorageErr("load course", err)
	}

	cert, err = s.issueOnce(ctx, user, course)
	if errors.Is(err, errCertificateIDTaken) {
		logger.Log.Warn("certificate id collision, regenerating",
			zap.Uint("user_id", userID), zap.Uint("course_id", courseID))
		cert, err = s.issueOnce(ctx, user, course)
	}
	if errors.Is(err, errCertificateIDTaken) {
		return nil, util.StorageErr("mint certificate id", err)
	}
	return cert, err
}

func (s *CertificateService) existingID(db *gorm.DB, userID, courseID uint) (string, bool, error) {
	existing, err := s.CertRepo.WithTx(db).FindByUserAndCourse(userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, util.StorageErr("find certificate", err)
	}
	return existing.CertificateID, true, nil
}

// issueOnce mints an ID, writes both artifacts and persists the record.
func (s *CertificateService) issueOnce(ctx context.Context, user *model.User, course *model.Course) (*model.Certificate, error) {
	now := s.now()
	certificateID := fmt.Sprintf("%s-%d-%s", s.Cfg.IDPrefix, now.Year(), s.newSuffix())
	verifyURL := s.verificationURL(certificateID)

	renderStart := time.Now()
	qr, err := s.Renderer.QRCode(verifyURL)
	if err != nil {
		logger.Log.Warn("qr encoding failed, issuing without qr",
			zap.String("certificate_id", certificateID), zap.Error(err))
		qr = nil
	}

	var qrPath string
	if qr != nil {
		qrPath, err = s.Storage.PutBytes(ctx, qrKey(certificateID), qr, util.MimePNG)
		if err != nil {
			return nil, util.StorageErr("store qr image", err)
		}
	}

	image, err := s.Renderer.Certificate(certimage.Content{
		StudentName:   user.Name,
		CourseName:    course.Name,
		CertificateID: certificateID,
		Issuer:        s.Cfg.Issuer,
		CompletedAt:   now,
		QR:            qr,
	})
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	monitoring.CertificateRenderDuration.Observe(time.Since(renderStart).Seconds())

	imagePath, err := s.Storage.PutBytes(ctx, certificateKey(certificateID), image, util.MimePNG)
	if err != nil {
		return nil, util.StorageErr("store certificate image", err)
	}

	cert := &model.Certificate{
		UserID:          user.ID,
		CourseID:        course.ID,
		CertificateID:   certificateID,
		IssuedAt:        now,
		QRCodePath:      qrPath,
		ImagePath:       imagePath,
		VerificationURL: verifyURL,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.CertRepo.WithTx(tx)
		existing, err := repo.FindByUserAndCourseForUpdate(user.ID, course.ID)
		if err == nil {
			return &util.AlreadyIssuedError{CertificateID: existing.CertificateID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return util.StorageErr("lock certificate", err)
		}
		if err := repo.Create(cert); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			return util.StorageErr("insert certificate", err)
		}
		return nil
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 区分 (user, course) 冲突与证书编号冲突
		id, found, lookupErr := s.existingID(s.DB.WithContext(ctx), user.ID, course.ID)
		if lookupErr != nil {
			err = lookupErr
		} else if found {
			err = &util.AlreadyIssuedError{CertificateID: id}
		} else {
			err = errCertificateIDTaken
		}
	}

	if err != nil {
		logger.Log.Warn("certificate not persisted, artifacts left in storage",
			zap.String("certificate_id", certificateID),
			zap.String("qr_path", qrPath),
			zap.String("image_path", imagePath),
			zap.Error(err))
		return nil, err
	}

	logger.Log.Info("certificate issued",
		zap.String("certificate_id", certificateID),
		zap.Uint("user_id", user.ID),
		zap.Uint("course_id", course.ID))
	return cert, nil
}

// Verify looks the ID up exactly. Malformed IDs never reach the database.
func (s *CertificateService) Verify(ctx context.Context, certificateID string) (*VerificationResult, error) {
	if !s.idPattern.MatchString(certificateID) {
		monitoring.CertificateVerification.WithLabelValues("malformed").Inc()
		return &VerificationResult{Valid: false}, nil
	}

	detail, err := s.CertRepo.WithTx(s.DB.WithContext(ctx)).FindDetail(certificateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		monitoring.CertificateVerification.WithLabelValues("invalid").Inc()
		return &VerificationResult{Valid: false}, nil
	}
	if err != nil {
		return nil, util.StorageErr("verify certificate", err)
	}

	monitoring.CertificateVerification.WithLabelValues("valid").Inc()
	issuedAt := detail.IssuedAt
	return &VerificationResult{
		Valid:           true,
		CertificateID:   detail.CertificateID,
		IssuedAt:        &issuedAt,
		StudentName:     detail.StudentName,
		CourseName:      detail.CourseName,
		VerificationURL: detail.VerificationURL,
	}, nil
}

// ListForUser 用户证书列表，按签发时间倒序
func (s *CertificateService) ListForUser(ctx context.Context, userID uint) ([]model.CertificateSummary, error) {
	summaries, err := s.CertRepo.WithTx(s.DB.WithContext(ctx)).FindSummariesByUser(userID)
	if err != nil {
		return nil, util.StorageErr("list certificates", err)
	}
	if summaries == nil {
		summaries = []model.CertificateSummary{}
	}
	return summaries, nil
}

// FetchArtifact returns the stored PNG of the given kind.
func (s *CertificateService) FetchArtifact(ctx context.Context, certificateID string, kind ArtifactKind) ([]byte, error) {
	if !s.idPattern.MatchString(certificateID) {
		return nil, util.NotFoundf("certificate %s", certificateID)
	}

	cert, err := s.CertRepo.WithTx(s.DB.WithContext(ctx)).FindByCertificateID(certificateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NotFoundf("certificate %s", certificateID)
	}
	if err != nil {
		return nil, util.StorageErr("find certificate", err)
	}

	var key string
	switch kind {
	case ArtifactCertificate:
		key = cert.ImagePath
	case ArtifactQR:
		key = cert.QRCodePath
	default:
		return nil, util.Validationf("unknown artifact kind %q", kind)
	}
	if key == "" {
		return nil, util.NotFoundf("%s image of %s", kind, certificateID)
	}

	data, err := s.Storage.Get(ctx, key)
	if errors.Is(err, util.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, util.StorageErr("read artifact", err)
	}
	return data, nil
}
