// Package testutil builds in-memory SQLite stores and seed rows for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"academy/database"
	"academy/models"
	"academy/models/course"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the full schema applied.
// It is closed automatically when the test ends.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared-cache database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func SeedUser(t testing.TB, db *gorm.DB, role models.Role, status models.SubscriptionStatus) *models.User {
	t.Helper()
	u := &models.User{
		Name:               "Test " + string(role),
		Email:              fmt.Sprintf("%s@test.com", uuid.NewString()),
		Password:           "hash",
		Role:               role,
		SubscriptionStatus: status,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedCustomer links a user to a billing-provider customer id.
func SeedCustomer(t testing.TB, db *gorm.DB, user *models.User, customerID, subscriptionID string) {
	t.Helper()
	user.StripeCustomerID = &customerID
	if subscriptionID != "" {
		user.StripeSubscriptionID = &subscriptionID
	}
	require.NoError(t, db.Save(user).Error)
}

func SeedCourse(t testing.TB, db *gorm.DB, instructorID uint, price int64, status course.Status) *course.Course {
	t.Helper()
	c := &course.Course{
		Title:        "Biblical Leadership Foundations",
		Slug:         uuid.NewString(),
		Price:        price,
		Status:       status,
		InstructorID: instructorID,
	}
	if status == course.StatusPublished {
		now := time.Now()
		c.PublishedAt = &now
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func SeedModule(t testing.TB, db *gorm.DB, courseID uint, published, free bool) *course.Module {
	t.Helper()
	m := &course.Module{CourseID: courseID, Title: "Module", IsPublished: published, IsFree: free}
	require.NoError(t, db.Create(m).Error)
	return m
}

// SeedLessons creates n lessons in the module, ordered 1..n.
func SeedLessons(t testing.TB, db *gorm.DB, moduleID uint, n int) []course.Lesson {
	t.Helper()
	lessons := make([]course.Lesson, n)
	for i := range lessons {
		lessons[i] = course.Lesson{ModuleID: moduleID, Title: fmt.Sprintf("Lesson %d", i+1), OrderIndex: i + 1}
		require.NoError(t, db.Create(&lessons[i]).Error)
	}
	return lessons
}

func SeedEnrollment(t testing.TB, db *gorm.DB, userID, courseID uint) *course.Enrollment {
	t.Helper()
	e := &course.Enrollment{UserID: userID, CourseID: courseID, LastAccessedAt: time.Now()}
	require.NoError(t, db.Create(e).Error)
	return e
}

// SeedQuiz creates a quiz on the lesson whose questions have the given correct answers.
func SeedQuiz(t testing.TB, db *gorm.DB, lessonID uint, passingScore int, correct ...string) *course.Quiz {
	t.Helper()
	q := &course.Quiz{LessonID: lessonID, Title: "Check", PassingScore: passingScore}
	require.NoError(t, db.Create(q).Error)
	for i, answer := range correct {
		question := course.QuizQuestion{
			QuizID:        q.ID,
			Question:      fmt.Sprintf("Question %d", i+1),
			Options:       []byte(fmt.Sprintf(`[%q, "other"]`, answer)),
			CorrectAnswer: answer,
			OrderIndex:    i + 1,
		}
		require.NoError(t, db.Create(&question).Error)
		q.Questions = append(q.Questions, question)
	}
	return q
}
