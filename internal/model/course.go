package model

type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Rank orders difficulty tiers for recommendations; unknown tiers sort last.
func (d Difficulty) Rank() int {
	switch d {
	case Beginner:
		return 1
	case Intermediate:
		return 2
	case Advanced:
		return 3
	}
	return 4
}

// swagger:model Course
type Course struct {
	BaseModel
	Name              string     `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Description       string     `gorm:"type:text" json:"description"`
	Difficulty        Difficulty `gorm:"size:20;index" json:"difficulty"`
	EstimatedDuration int        `json:"duration"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	Lessons           []Lesson   `gorm:"foreignKey:CourseID" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}
