package repository

import (
	"skillbridge_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) Create(p *model.ProgressRecord) error {
	return r.DB.Create(p).Error
}

func (r *ProgressRepository) Exists(userID, lessonID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ProgressRecord{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&count).Error
	return count > 0, err
}

// CountCompletedInCourse 统计用户在课程内已完成的 skillsnap 数
func (r *ProgressRepository) CountCompletedInCourse(userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Table("user_progress AS up").
		Joins("JOIN skillsnaps s ON s.id = up.lesson_id").
		Where("up.user_id = ? AND s.course_id = ?", userID, courseID).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) FindRecentActivity(userID uint, limit int) ([]model.RecentActivity, error) {
	var activity []model.RecentActivity
	err := r.DB.Table("user_progress AS up").
		Select("s.title, s.category, up.completed_at").
		Joins("JOIN skillsnaps s ON s.id = up.lesson_id").
		Where("up.user_id = ?", userID).
		Order("up.completed_at DESC, up.id DESC").
		Limit(limit).
		Scan(&activity).Error
	return activity, err
}
