package service

import (
	"context"
	"errors"
	"math"
	"time"

	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/repository"
	"skillbridge_backend/internal/util"
	"skillbridge_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompletionInput 完成 skillsnap 时可选的学习数据
type CompletionInput struct {
	TimeSpentMinutes *int
	Score            *float64
}

// CompletionResult reports the enrollment state after a lesson completion.
type CompletionResult struct {
	CourseID           uint       `json:"course_id"`
	ProgressPercentage float64    `json:"progress"`
	CompletedAt        *time.Time `json:"completed_at"`
}

type ProgressService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	now            func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
) *ProgressService {
	return &ProgressService{
		DB:             db,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		now:            time.Now,
	}
}

func (s *ProgressService) Enroll(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: s.now(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.CourseRepo.WithTx(tx).FindByID(courseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.NotFoundf("course %d", courseID)
			}
			return util.StorageErr("find course", err)
		}

		repo := s.EnrollmentRepo.WithTx(tx)
		exists, err := repo.Exists(userID, courseID)
		if err != nil {
			return util.StorageErr("check enrollment", err)
		}
		if exists {
			return util.ErrAlreadyEnrolled
		}
		if err := repo.Create(enrollment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrAlreadyEnrolled
			}
			return util.StorageErr("create enrollment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// progressOf 完成比例，保留两位小数；全部完成时恰为 100
func progressOf(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}

// CompleteLesson records the completion and recomputes the enrollment of the
// lesson's course under a row lock.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID uint, in CompletionInput) (*CompletionResult, error) {
	var result CompletionResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := s.CourseRepo.WithTx(tx).FindLessonByID(lessonID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NotFoundf("skillsnap %d", lessonID)
		}
		if err != nil {
			return util.StorageErr("find skillsnap", err)
		}

		progressRepo := s.ProgressRepo.WithTx(tx)
		done, err := progressRepo.Exists(userID, lessonID)
		if err != nil {
			return util.StorageErr("check progress", err)
		}
		if done {
			return util.ErrAlreadyCompleted
		}

		now := s.now()
		if err := progressRepo.Create(&model.ProgressRecord{
			UserID:           userID,
			LessonID:         lessonID,
			CompletedAt:      now,
			TimeSpentMinutes: in.TimeSpentMinutes,
			Score:            in.Score,
		}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrAlreadyCompleted
			}
			return util.StorageErr("create progress", err)
		}

		enrollmentRepo := s.EnrollmentRepo.WithTx(tx)
		if _, err := enrollmentRepo.CreateIfAbsent(&model.Enrollment{
			UserID:     userID,
			CourseID:   lesson.CourseID,
			EnrolledAt: now,
		}); err != nil {
			return util.StorageErr("ensure enrollment", err)
		}

		enrollment, err := enrollmentRepo.FindForUpdate(userID, lesson.CourseID)
		if err != nil {
			return util.StorageErr("lock enrollment", err)
		}

		total, err := s.CourseRepo.WithTx(tx).CountLessons(lesson.CourseID)
		if err != nil {
			return util.StorageErr("count skillsnaps", err)
		}
		completed, err := progressRepo.CountCompletedInCourse(userID, lesson.CourseID)
		if err != nil {
			return util.StorageErr("count completed", err)
		}

		progress := progressOf(completed, total)
		var completedAt *time.Time
		if progress == 100 {
			completedAt = enrollment.CompletedAt
			if completedAt == nil {
				completedAt = &now
			}
		}
		if err := enrollmentRepo.UpdateProgress(enrollment.ID, progress, completedAt); err != nil {
			return util.StorageErr("update progress", err)
		}

		result = CompletionResult{
			CourseID:           lesson.CourseID,
			ProgressPercentage: progress,
			CompletedAt:        completedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.CompletedAt != nil && result.ProgressPercentage == 100 {
		logger.Log.Info("course completed", zap.Uint("user_id", userID), zap.Uint("course_id", result.CourseID))
	}
	return &result, nil
}

func (s *ProgressService) ListEnrollments(ctx context.Context, userID uint) ([]model.EnrollmentView, error) {
	views, err := s.EnrollmentRepo.WithTx(s.DB.WithContext(ctx)).FindViewsByUser(userID)
	if err != nil {
		return nil, util.StorageErr("list enrollments", err)
	}
	if views == nil {
		views = []model.EnrollmentView{}
	}
	return views, nil
}
