package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/repository"
	"skillbridge_backend/internal/util"
	"skillbridge_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput 注册时的可选资料
type RegisterInput struct {
	LoginID            string
	Password           string
	Name               string
	Email              string
	Location           string
	LanguagePreference string
}

// Session is a signed token plus the profile it belongs to.
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      model.PublicUser `json:"user"`
}

type AuthService struct {
	DB             *gorm.DB
	UserRepo       *repository.UserRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Signer         *util.SessionSigner
	Cfg            *config.Config
}

func NewAuthService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	signer *util.SessionSigner,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		DB:             db,
		UserRepo:       userRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Signer:         signer,
		Cfg:            cfg,
	}
}

func (s *AuthService) bcryptCost() int {
	cost := s.Cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func (s *AuthService) newSession(user *model.User) (*Session, error) {
	token, expiresAt, err := s.Signer.Sign(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.LoginID = strings.TrimSpace(in.LoginID)
	if in.LoginID == "" || in.Password == "" {
		return nil, util.Validationf("user_id and password are required")
	}
	if strings.TrimSpace(in.Name) == "" {
		in.Name = in.LoginID
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost())
	if err != nil {
		return nil, util.Validationf("password: %v", err)
	}

	user := &model.User{
		LoginID:            in.LoginID,
		Password:           string(hashedPassword),
		Name:               in.Name,
		Email:              in.Email,
		Location:           in.Location,
		LanguagePreference: in.LanguagePreference,
	}
	if user.LanguagePreference == "" {
		user.LanguagePreference = "English"
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.UserRepo.WithTx(tx)
		exists, err := repo.ExistsByLoginID(user.LoginID)
		if err != nil {
			return util.StorageErr("check user id", err)
		}
		if exists {
			return util.ErrDuplicateIdentity
		}
		if err := repo.Create(user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicateIdentity
			}
			return util.StorageErr("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint("user_id", user.ID))
	return s.newSession(user)
}

// Login verifies the password and, when courseName names a course the user
// is not enrolled in, enrolls them in the same transaction.
func (s *AuthService) Login(ctx context.Context, loginID, password, courseName string) (*Session, error) {
	user, err := s.UserRepo.WithTx(s.DB.WithContext(ctx)).FindByLoginID(strings.TrimSpace(loginID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NotFoundf("user %s", loginID)
	}
	if err != nil {
		return nil, util.StorageErr("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredential
	}

	now := time.Now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.UserRepo.WithTx(tx).UpdateLastLogin(user.ID, now); err != nil {
			return util.StorageErr("update last login", err)
		}

		courseName = strings.TrimSpace(courseName)
		if courseName == "" {
			return nil
		}
		course, err := s.CourseRepo.WithTx(tx).FindByName(courseName)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return util.StorageErr("find course", err)
		}

		created, err := s.EnrollmentRepo.WithTx(tx).CreateIfAbsent(&model.Enrollment{
			UserID:     user.ID,
			CourseID:   course.ID,
			EnrolledAt: now,
		})
		if err != nil {
			return util.StorageErr("enroll on login", err)
		}
		if created {
			logger.Log.Info("enrolled on login", zap.Uint("user_id", user.ID), zap.Uint("course_id", course.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.LastLogin = &now
	return s.newSession(user)
}

// VerifySession returns the user of a valid token. Every failure looks the
// same to the caller.
func (s *AuthService) VerifySession(token string) (uint, bool) {
	claims, err := s.Signer.Parse(token)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*model.PublicUser, error) {
	user, err := s.UserRepo.WithTx(s.DB.WithContext(ctx)).FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NotFoundf("user %d", userID)
	}
	if err != nil {
		return nil, util.StorageErr("find user", err)
	}
	public := user.Public()
	return &public, nil
}
