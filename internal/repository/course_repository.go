package repository

import (
	"skillbridge_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindByName(name string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("name = ?", name).First(&course).Error
	return &course, err
}

func (r *CourseRepository) FindActive() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("is_active = ?", true).Order("name").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindActiveByDifficulty(d model.Difficulty) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("is_active = ? AND difficulty = ?", true, d).Order("name").Find(&courses).Error
	return courses, err
}

// FindActiveByTier orders active courses Beginner, Intermediate, Advanced,
// falling back to insertion order within a tier.
func (r *CourseRepository) FindActiveByTier() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("is_active = ?", true).
		Order(`CASE difficulty WHEN 'Beginner' THEN 1 WHEN 'Intermediate' THEN 2 WHEN 'Advanced' THEN 3 ELSE 4 END`).
		Order("id").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *CourseRepository) CountLessons(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// FindLessonsWithStatus 课程 skillsnap 列表，附带用户完成状态
func (r *CourseRepository) FindLessonsWithStatus(courseID, userID uint) ([]model.LessonWithStatus, error) {
	var lessons []model.LessonWithStatus
	err := r.DB.Table("skillsnaps AS s").
		Select(`s.id, s.title, s.description, s.duration_minutes, s.difficulty, s.category,
			s.order_index, s.is_offline_available, up.id IS NOT NULL AS is_completed`).
		Joins("LEFT JOIN user_progress up ON up.lesson_id = s.id AND up.user_id = ?", userID).
		Where("s.course_id = ?", courseID).
		Order("s.order_index").
		Scan(&lessons).Error
	return lessons, err
}
