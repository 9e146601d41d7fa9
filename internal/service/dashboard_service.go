package service

import (
	"context"

	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/repository"
	"skillbridge_backend/internal/util"

	"gorm.io/gorm"
)

const recentActivityLimit = 5

type DashboardService struct {
	DB             *gorm.DB
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	CertRepo       *repository.CertificateRepository
}

func NewDashboardService(
	db *gorm.DB,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	certRepo *repository.CertificateRepository,
) *DashboardService {
	return &DashboardService{
		DB:             db,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		CertRepo:       certRepo,
	}
}

type Dashboard struct {
	Enrollments    []model.EnrollmentView     `json:"enrollments"`
	RecentActivity []model.RecentActivity     `json:"recent_activity"`
	Certificates   []model.CertificateSummary `json:"certificates"`
	Stats          DashboardStats             `json:"stats"`
}

type DashboardStats struct {
	TotalCourses      int `json:"total_courses"`
	CompletedCourses  int `json:"completed_courses"`
	CertificatesCount int `json:"certificates_earned"`
}

// GetUserDashboard 只读汇总：报名进度、最近完成、证书
func (s *DashboardService) GetUserDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)

	enrollments, err := s.EnrollmentRepo.WithTx(db).FindViewsByUser(userID)
	if err != nil {
		return nil, util.StorageErr("dashboard enrollments", err)
	}

	activity, err := s.ProgressRepo.WithTx(db).FindRecentActivity(userID, recentActivityLimit)
	if err != nil {
		return nil, util.StorageErr("dashboard activity", err)
	}

	certificates, err := s.CertRepo.WithTx(db).FindSummariesByUser(userID)
	if err != nil {
		return nil, util.StorageErr("dashboard certificates", err)
	}

	d := &Dashboard{
		Enrollments:    enrollments,
		RecentActivity: activity,
		Certificates:   certificates,
	}
	if d.Enrollments == nil {
		d.Enrollments = []model.EnrollmentView{}
	}
	if d.RecentActivity == nil {
		d.RecentActivity = []model.RecentActivity{}
	}
	if d.Certificates == nil {
		d.Certificates = []model.CertificateSummary{}
	}

	d.Stats.TotalCourses = len(d.Enrollments)
	for _, e := range d.Enrollments {
		if e.CompletedAt != nil {
			d.Stats.CompletedCourses++
		}
	}
	d.Stats.CertificatesCount = len(d.Certificates)
	return d, nil
}
