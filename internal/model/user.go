package model

import (
	"time"
)

// Aptitude levels derived from the onboarding quiz.
const (
	AptitudeBeginner     = "beginner"
	AptitudeBasic        = "basic"
	AptitudeIntermediate = "intermediate"
	AptitudeAdvanced     = "advanced"
)

// swagger:model User
type User struct {
	BaseModel
	LoginID            string     `gorm:"size:100;uniqueIndex;not null" json:"user_id"`
	Password           string     `gorm:"size:100;not null" json:"-"`
	Name               string     `gorm:"size:100;not null" json:"name"`
	Email              string     `gorm:"size:100" json:"email"`
	Location           string     `gorm:"size:100" json:"location"`
	LanguagePreference string     `gorm:"size:50;default:'English'" json:"language_preference"`
	AptitudeLevel      string     `gorm:"size:20" json:"aptitude_level,omitempty"`
	Interests          string     `gorm:"size:255" json:"interests,omitempty"`
	TimeCommitment     string     `gorm:"size:100" json:"time_commitment,omitempty"`
	Goals              string     `gorm:"size:255" json:"goals,omitempty"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser is the profile view returned to clients.
type PublicUser struct {
	ID                 uint   `json:"id"`
	LoginID            string `json:"user_id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Location           string `json:"location"`
	LanguagePreference string `json:"language_preference"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                 u.ID,
		LoginID:            u.LoginID,
		Name:               u.Name,
		Email:              u.Email,
		Location:           u.Location,
		LanguagePreference: u.LanguagePreference,
	}
}
