package model

import (
	"time"
)

// swagger:model QuizResponse
type QuizResponse struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	QuestionID int       `gorm:"not null" json:"question_id"`
	Response   string    `gorm:"type:text" json:"response"`
	CreatedAt  time.Time `json:"created_at"`
}

func (QuizResponse) TableName() string {
	return "quiz_responses"
}

type QuizQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

// ProfileTag is the quiz-derived classification stored on the user.
type ProfileTag struct {
	AptitudeLevel  string `json:"aptitude_level"`
	Interests      string `json:"interests"`
	TimeCommitment string `json:"time_commitment"`
	Goals          string `json:"goals"`
}

type CourseRecommendation struct {
	CourseID          uint       `json:"course_id"`
	CourseName        string     `json:"course_name"`
	Description       string     `json:"description"`
	Difficulty        Difficulty `json:"difficulty"`
	RecommendedReason string     `json:"recommended_reason"`
}
