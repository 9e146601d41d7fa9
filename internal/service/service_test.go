package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/repository"
	"skillbridge_backend/internal/testutil"
	"skillbridge_backend/internal/util"
	"skillbridge_backend/pkg/certimage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, time.March, 7, 10, 30, 0, 0, time.UTC)

// fakeRenderer records what it was asked to draw and returns small fixed
// payloads.
type fakeRenderer struct {
	mu       sync.Mutex
	contents []certimage.Content
	qrURLs   []string
	qrErr    error
	onRender func()
}

func (f *fakeRenderer) QRCode(url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qrURLs = append(f.qrURLs, url)
	if f.qrErr != nil {
		return nil, f.qrErr
	}
	return []byte("qr:" + url), nil
}

func (f *fakeRenderer) Certificate(c certimage.Content) ([]byte, error) {
	f.mu.Lock()
	f.contents = append(f.contents, c)
	hook := f.onRender
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return []byte("cert:" + c.CertificateID), nil
}

// failingProvider rejects every upload.
type failingProvider struct{}

func (failingProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) error {
	return errors.New("disk full")
}

func (failingProvider) Download(ctx context.Context, filename string) ([]byte, error) {
	return nil, util.NotFoundf("artifact %s", filename)
}

type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	store    *MemoryStorageProvider
	renderer *fakeRenderer

	auth         *AuthService
	progress     *ProgressService
	courses      *CourseService
	dashboard    *DashboardService
	quiz         *QuizService
	certificates *CertificateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)

	cfg := &config.Config{
		Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost},
		JWT:  config.JWTConfig{Secret: "test-secret", ExpireTime: 168 * time.Hour},
		Certificate: config.CertificateConfig{
			IDPrefix:      "SB",
			VerifyBaseURL: "https://skillbridge.edu",
			Issuer:        "SkillBridge",
		},
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	quizRepo := repository.NewQuizRepository(db)

	store := NewMemoryStorageProvider()
	renderer := &fakeRenderer{}
	signer := util.NewSessionSigner(cfg.JWT.Secret, cfg.JWT.ExpireTime)

	env := &testEnv{
		db:           db,
		cfg:          cfg,
		store:        store,
		renderer:     renderer,
		auth:         NewAuthService(db, userRepo, courseRepo, enrollmentRepo, signer, cfg),
		progress:     NewProgressService(db, courseRepo, enrollmentRepo, progressRepo),
		courses:      NewCourseService(db, courseRepo),
		dashboard:    NewDashboardService(db, enrollmentRepo, progressRepo, certRepo),
		quiz:         NewQuizService(db, quizRepo, userRepo, courseRepo),
		certificates: NewCertificateService(db, certRepo, userRepo, courseRepo, &StorageService{Provider: store}, renderer, &cfg.Certificate),
	}
	env.certificates.now = func() time.Time { return fixedNow }
	return env
}

// sequence returns a suffix generator yielding the given values in order and
// repeating the last one.
func sequence(values ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}
