package repository

import (
	"time"

	"skillbridge_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// WithTx 返回绑定到事务的仓储
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByLoginID(loginID string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("login_id = ?", loginID).First(&user).Error
	return &user, err
}

func (r *UserRepository) ExistsByLoginID(loginID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("login_id = ?", loginID).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdateLastLogin(userID uint, at time.Time) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", at).
		Error
}

// UpdateProfileTag overwrites the quiz-derived profile fields.
func (r *UserRepository) UpdateProfileTag(userID uint, tag model.ProfileTag) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"aptitude_level":  tag.AptitudeLevel,
			"interests":       tag.Interests,
			"time_commitment": tag.TimeCommitment,
			"goals":           tag.Goals,
		}).Error
}
