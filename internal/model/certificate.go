package model

import (
	"time"
)

// swagger:model Certificate
type Certificate struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course,priority:1" json:"user_id"`
	CourseID        uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course,priority:2" json:"course_id"`
	CertificateID   string    `gorm:"size:32;uniqueIndex;not null" json:"certificate_id"`
	IssuedAt        time.Time `gorm:"not null;index" json:"issued_at"`
	QRCodePath      string    `gorm:"size:255" json:"qr_code_path"`
	ImagePath       string    `gorm:"size:255" json:"certificate_image"`
	VerificationURL string    `gorm:"size:255" json:"verification_url"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// CertificateSummary 用户证书列表项
type CertificateSummary struct {
	CertificateID   string    `json:"certificate_id"`
	CourseID        uint      `json:"course_id"`
	CourseName      string    `json:"course_name"`
	IssuedAt        time.Time `json:"issued_at"`
	VerificationURL string    `json:"verification_url"`
}

// CertificateDetail joins a certificate with the holder and course names.
type CertificateDetail struct {
	CertificateID   string
	IssuedAt        time.Time
	StudentName     string
	CourseName      string
	VerificationURL string
	QRCodePath      string
	ImagePath       string
}
