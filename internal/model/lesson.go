package model

// Lesson is a skillsnap: the smallest ordered unit of a course.
// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID           uint       `gorm:"not null;index:idx_lesson_course_order,priority:1" json:"course_id"`
	Title              string     `gorm:"size:200;not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description"`
	Content            string     `gorm:"type:text" json:"content,omitempty"`
	DurationMinutes    int        `json:"duration"`
	Difficulty         Difficulty `gorm:"size:20" json:"difficulty"`
	Category           string     `gorm:"size:100" json:"category"`
	OrderIndex         int        `gorm:"index:idx_lesson_course_order,priority:2" json:"order_index"`
	IsOfflineAvailable bool       `gorm:"default:true" json:"is_offline_available"`
}

func (Lesson) TableName() string {
	return "skillsnaps"
}

// LessonWithStatus 课程下的 skillsnap 以及当前用户是否完成
type LessonWithStatus struct {
	ID                 uint       `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	DurationMinutes    int        `json:"duration"`
	Difficulty         Difficulty `json:"difficulty"`
	Category           string     `json:"category"`
	OrderIndex         int        `json:"order_index"`
	IsOfflineAvailable bool       `json:"is_offline_available"`
	IsCompleted        bool       `json:"is_completed"`
}
