package repository

import (
	"time"

	"skillbridge_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

// CreateIfAbsent inserts the enrollment unless the (user, course) pair
// already exists. It reports whether a row was inserted.
func (r *EnrollmentRepository) CreateIfAbsent(e *model.Enrollment) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(e)
	return res.RowsAffected > 0, res.Error
}

func (r *EnrollmentRepository) Exists(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// FindForUpdate 加行锁读取报名记录
func (r *EnrollmentRepository) FindForUpdate(userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) UpdateProgress(id uint, progress float64, completedAt *time.Time) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress_percentage": progress,
			"completed_at":        completedAt,
		}).Error
}

func (r *EnrollmentRepository) FindViewsByUser(userID uint) ([]model.EnrollmentView, error) {
	var views []model.EnrollmentView
	err := r.DB.Table("enrollments AS e").
		Select(`c.id AS course_id, c.name AS course_name, c.description, c.difficulty,
			e.enrolled_at, e.progress_percentage, e.completed_at`).
		Joins("JOIN courses c ON c.id = e.course_id").
		Where("e.user_id = ?", userID).
		Order("e.enrolled_at DESC, e.id DESC").
		Scan(&views).Error
	return views, err
}
