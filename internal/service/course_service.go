package service

import (
	"context"
	"errors"

	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/repository"
	"skillbridge_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	DB         *gorm.DB
	CourseRepo *repository.CourseRepository
}

func NewCourseService(db *gorm.DB, courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{DB: db, CourseRepo: courseRepo}
}

func (s *CourseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := s.CourseRepo.WithTx(s.DB.WithContext(ctx)).FindActive()
	if err != nil {
		return nil, util.StorageErr("list courses", err)
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

// ListLessons 返回课程的 skillsnap 及当前用户完成状态
func (s *CourseService) ListLessons(ctx context.Context, courseID, userID uint) ([]model.LessonWithStatus, error) {
	repo := s.CourseRepo.WithTx(s.DB.WithContext(ctx))
	if _, err := repo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("course %d", courseID)
		}
		return nil, util.StorageErr("find course", err)
	}

	lessons, err := repo.FindLessonsWithStatus(courseID, userID)
	if err != nil {
		return nil, util.StorageErr("list skillsnaps", err)
	}
	if lessons == nil {
		lessons = []model.LessonWithStatus{}
	}
	return lessons, nil
}
