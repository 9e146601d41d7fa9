package model

import (
	"time"
)

// ProgressRecord marks one lesson completed by one user. It is never updated.
// swagger:model ProgressRecord
type ProgressRecord struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_progress_user_lesson,priority:1" json:"user_id"`
	LessonID         uint      `gorm:"not null;uniqueIndex:idx_progress_user_lesson,priority:2;index" json:"skillsnap_id"`
	CompletedAt      time.Time `gorm:"not null;index" json:"completed_at"`
	TimeSpentMinutes *int      `json:"time_spent_minutes,omitempty"`
	Score            *float64  `json:"score,omitempty"`
}

func (ProgressRecord) TableName() string {
	return "user_progress"
}

// RecentActivity 仪表盘最近完成的 skillsnap
type RecentActivity struct {
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	CompletedAt time.Time `json:"completed_at"`
}
