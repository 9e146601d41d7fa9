package repository

import (
	"skillbridge_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) WithTx(tx *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: tx}
}

func (r *CertificateRepository) Create(c *model.Certificate) error {
	return r.DB.Create(c).Error
}

func (r *CertificateRepository) FindByUserAndCourse(userID, courseID uint) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&c).Error
	return &c, err
}

// FindByUserAndCourseForUpdate is the locking variant used right before insert.
func (r *CertificateRepository) FindByUserAndCourseForUpdate(userID, courseID uint) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&c).Error
	return &c, err
}

func (r *CertificateRepository) FindByCertificateID(certificateID string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("certificate_id = ?", certificateID).First(&c).Error
	return &c, err
}

// FindDetail 证书详情（持有人姓名、课程名）
func (r *CertificateRepository) FindDetail(certificateID string) (*model.CertificateDetail, error) {
	var d model.CertificateDetail
	res := r.DB.Table("certificates AS c").
		Select(`c.certificate_id, c.issued_at, u.name AS student_name, co.name AS course_name,
			c.verification_url, c.qr_code_path, c.image_path`).
		Joins("JOIN users u ON u.id = c.user_id").
		Joins("JOIN courses co ON co.id = c.course_id").
		Where("c.certificate_id = ?", certificateID).
		Limit(1).
		Scan(&d)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *CertificateRepository) FindSummariesByUser(userID uint) ([]model.CertificateSummary, error) {
	var summaries []model.CertificateSummary
	err := r.DB.Table("certificates AS c").
		Select("c.certificate_id, c.course_id, co.name AS course_name, c.issued_at, c.verification_url").
		Joins("JOIN courses co ON co.id = c.course_id").
		Where("c.user_id = ?", userID).
		Order("c.issued_at DESC, c.id DESC").
		Scan(&summaries).Error
	return summaries, err
}
