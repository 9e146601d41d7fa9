// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/model"
	"skillbridge_backend/pkg/database"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB returns a migrated and seeded SQLite database living in t.TempDir().
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(tb.TempDir(), "skillbridge_test.db"),
	}
	db, err := database.Open(cfg, "test")
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	db.Logger = gormLogger.Default.LogMode(gormLogger.Silent)

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	if err := database.SeedCatalog(db); err != nil {
		tb.Fatalf("seed test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CourseByName looks up a seeded course.
func CourseByName(tb testing.TB, db *gorm.DB, name string) model.Course {
	tb.Helper()
	var c model.Course
	if err := db.Where("name = ?", name).First(&c).Error; err != nil {
		tb.Fatalf("course %q: %v", name, err)
	}
	return c
}

// LessonsOf returns the lessons of a course in order.
func LessonsOf(tb testing.TB, db *gorm.DB, courseID uint) []model.Lesson {
	tb.Helper()
	var lessons []model.Lesson
	if err := db.Where("course_id = ?", courseID).Order("order_index").Find(&lessons).Error; err != nil {
		tb.Fatalf("lessons of %d: %v", courseID, err)
	}
	return lessons
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(tb testing.TB, db *gorm.DB, loginID, name string) model.User {
	tb.Helper()
	u := model.User{LoginID: loginID, Name: name, Password: "x"}
	if err := db.Create(&u).Error; err != nil {
		tb.Fatalf("create user %q: %v", loginID, err)
	}
	return u
}
