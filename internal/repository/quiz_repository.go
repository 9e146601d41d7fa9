package repository

import (
	"skillbridge_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) WithTx(tx *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: tx}
}

// ReplaceResponses deletes every stored answer of the user and inserts the
// new set. Callers run it inside a transaction.
func (r *QuizRepository) ReplaceResponses(userID uint, responses []model.QuizResponse) error {
	if err := r.DB.Where("user_id = ?", userID).Delete(&model.QuizResponse{}).Error; err != nil {
		return err
	}
	if len(responses) == 0 {
		return nil
	}
	return r.DB.Create(&responses).Error
}

func (r *QuizRepository) FindByUser(userID uint) ([]model.QuizResponse, error) {
	var responses []model.QuizResponse
	err := r.DB.Where("user_id = ?", userID).Order("question_id").Find(&responses).Error
	return responses, err
}
