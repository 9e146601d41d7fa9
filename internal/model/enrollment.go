package model

import (
	"time"
)

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID             uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_course,priority:1" json:"user_id"`
	CourseID           uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_course,priority:2" json:"course_id"`
	EnrolledAt         time.Time  `gorm:"not null" json:"enrolled_at"`
	ProgressPercentage float64    `gorm:"default:0" json:"progress"`
	CompletedAt        *time.Time `json:"completed_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// EnrollmentView joins an enrollment with its course.
type EnrollmentView struct {
	CourseID           uint       `json:"course_id"`
	CourseName         string     `json:"course_name"`
	Description        string     `json:"description"`
	Difficulty         Difficulty `json:"difficulty"`
	EnrolledAt         time.Time  `json:"enrolled_at"`
	ProgressPercentage float64    `json:"progress"`
	CompletedAt        *time.Time `json:"completed_at"`
}
