package database

import (
	"skillbridge_backend/internal/model"

	"gorm.io/gorm"
)

type seedLesson struct {
	title, description, content string
	duration                    int
	difficulty                  model.Difficulty
	category                    string
	order                       int
}

type seedCourse struct {
	name, description string
	difficulty        model.Difficulty
	duration          int
	lessons           []seedLesson
}

var catalog = []seedCourse{
	{"Digital Literacy Basics", "Fundamental computer and internet skills", model.Beginner, 120, []seedLesson{
		{"Computer Basics: Getting Started", "Learn fundamental computer operations and navigation", "Introduction to computers, mouse, and keyboard basics", 12, model.Beginner, "Digital Literacy", 1},
		{"Understanding Files and Folders", "Master file organization and management", "Creating, organizing, and managing files and folders", 15, model.Beginner, "Digital Literacy", 2},
		{"Internet Basics", "Introduction to web browsing and online safety", "Using web browsers, search engines, and staying safe online", 18, model.Beginner, "Digital Literacy", 3},
		{"Email Communication Skills", "Master professional email writing and management", "Creating, sending, and organizing emails professionally", 15, model.Beginner, "Communication", 4},
	}},
	{"Computer Fundamentals", "Basic computer operations and file management", model.Beginner, 90, []seedLesson{
		{"Operating System Navigation", "Navigate Windows/Android interface efficiently", "Understanding desktop, taskbar, and system settings", 20, model.Beginner, "Computer Skills", 1},
	}},
	{"Internet & Email Skills", "Web browsing and email communication", model.Beginner, 60, []seedLesson{
		{"Web Browser Mastery", "Advanced browsing techniques and shortcuts", "Bookmarks, tabs, downloads, and browser settings", 14, model.Beginner, "Internet Skills", 1},
	}},
	{"Digital Marketing Essentials", "Social media and online marketing basics", model.Intermediate, 150, []seedLesson{
		{"Social Media for Business", "Create engaging content to promote your local business", "Facebook, Instagram, and WhatsApp business strategies", 25, model.Intermediate, "Digital Marketing", 1},
		{"Digital Payment Systems", "Learn to use UPI, mobile banking, and digital wallets safely", "UPI, Paytm, Google Pay, and online banking security", 20, model.Intermediate, "Financial Literacy", 2},
	}},
	{"Data Entry & Analysis", "Spreadsheet skills and data management", model.Intermediate, 100, []seedLesson{
		{"Spreadsheet Fundamentals", "Basic Excel/Google Sheets operations", "Creating tables, basic formulas, and data formatting", 22, model.Intermediate, "Data Skills", 1},
	}},
	{"Online Business Skills", "E-commerce and digital entrepreneurship", model.Advanced, 180, []seedLesson{
		{"Online Job Applications", "Navigate job portals and create compelling applications", "Naukri.com, LinkedIn, and resume building online", 18, model.Advanced, "Career Skills", 1},
	}},
}

// SeedCatalog 首次启动时写入示例课程与 skillsnap，已有课程则跳过
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, c := range catalog {
			course := model.Course{
				Name:              c.name,
				Description:       c.description,
				Difficulty:        c.difficulty,
				EstimatedDuration: c.duration,
				IsActive:          true,
			}
			if err := tx.Create(&course).Error; err != nil {
				return err
			}
			for _, l := range c.lessons {
				lesson := model.Lesson{
					CourseID:           course.ID,
					Title:              l.title,
					Description:        l.description,
					Content:            l.content,
					DurationMinutes:    l.duration,
					Difficulty:         l.difficulty,
					Category:           l.category,
					OrderIndex:         l.order,
					IsOfflineAvailable: true,
				}
				if err := tx.Create(&lesson).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
