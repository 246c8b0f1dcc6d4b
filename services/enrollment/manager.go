// Package enrollment creates and validates enrollments, enforcing one
// enrollment per (user, course) and subscription gating for paid courses.
package enrollment

import (
	"context"
	"log"
	"time"

	"academy/apperr"
	"academy/database"
	"academy/models"
	"academy/models/course"

	"gorm.io/gorm"
)

// Notifier is told about new enrollments after they are committed
type Notifier interface {
	EnrollmentConfirmed(user models.User, c course.Course)
}

type Manager struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewManager(db *gorm.DB, notifier Notifier) *Manager {
	return &Manager{db: db, notifier: notifier, now: time.Now}
}

// WithTx returns a Manager bound to an open transaction.
func (m *Manager) WithTx(tx *gorm.DB) *Manager {
	cp := *m
	cp.db = tx
	return &cp
}

// Enroll enrolls a learner in a published course. Paid courses require an
// active subscription.
func (m *Manager) Enroll(ctx context.Context, userID, courseID uint) (*course.Enrollment, error) {
	var (
		user       models.User
		crs        course.Course
		enrollment course.Enrollment
	)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			if database.IsNotFound(err) {
				return apperr.ErrUserNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&course.Enrollment{}).
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.ErrAlreadyEnrolled
		}

		if err := tx.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, course.StatusPublished).
			First(&crs).Error; err != nil {
			if database.IsNotFound(err) {
				return apperr.ErrCourseNotFound
			}
			return err
		}

		if !crs.IsFree() && !user.HasActiveSubscription() {
			return apperr.ErrSubscriptionRequired
		}

		enrollment = course.Enrollment{
			UserID:         userID,
			CourseID:       courseID,
			Progress:       0,
			LastAccessedAt: m.now(),
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			// lost a race with a concurrent enroll for the same pair
			if database.IsDuplicateKey(err) {
				return apperr.ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[ENROLLMENT] user %d enrolled in course %d", userID, courseID)
	if m.notifier != nil {
		m.notifier.EnrollmentConfirmed(user, crs)
	}
	return &enrollment, nil
}

// EnrollFromPaymentEvent records an enrollment paid through checkout. It skips
// subscription gating and is idempotent: an existing enrollment is returned
// with created=false. It runs on whatever handle the Manager is bound to, so
// the caller decides the transaction and sends notifications after commit.
func (m *Manager) EnrollFromPaymentEvent(ctx context.Context, userID, courseID uint) (enrollment *course.Enrollment, created bool, err error) {
	db := m.db.WithContext(ctx)

	var crs course.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&crs).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, false, apperr.ErrCourseNotFound
		}
		return nil, false, err
	}

	var existing course.Enrollment
	err = db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		log.Printf("[ENROLLMENT] user %d already enrolled in course %d, skipping payment enrollment", userID, courseID)
		return &existing, false, nil
	}
	if !database.IsNotFound(err) {
		return nil, false, err
	}

	e := course.Enrollment{UserID: userID, CourseID: courseID, LastAccessedAt: m.now()}
	// savepoint, so a unique violation does not abort the caller's transaction
	err = db.Transaction(func(sp *gorm.DB) error { return sp.Create(&e).Error })
	if err != nil {
		if database.IsDuplicateKey(err) {
			log.Printf("[ENROLLMENT] concurrent payment enrollment for user %d course %d", userID, courseID)
			if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err != nil {
				return nil, false, err
			}
			return &existing, false, nil
		}
		return nil, false, err
	}

	log.Printf("[ENROLLMENT] user %d enrolled in course %d from payment", userID, courseID)
	return &e, true, nil
}

// NotifyEnrolled sends the enrollment email for a committed enrollment.
// Lookup failures are logged, never returned.
func (m *Manager) NotifyEnrolled(ctx context.Context, userID, courseID uint) {
	if m.notifier == nil {
		return
	}
	var user models.User
	var crs course.Course
	db := m.db.WithContext(ctx)
	if err := db.First(&user, userID).Error; err != nil {
		log.Printf("[ENROLLMENT] notify: user %d: %v", userID, err)
		return
	}
	if err := db.First(&crs, courseID).Error; err != nil {
		log.Printf("[ENROLLMENT] notify: course %d: %v", courseID, err)
		return
	}
	m.notifier.EnrollmentConfirmed(user, crs)
}

// ListForUser returns the user's enrollments, most recently accessed first
func (m *Manager) ListForUser(ctx context.Context, userID uint) ([]course.Enrollment, error) {
	var enrollments []course.Enrollment
	err := m.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("last_accessed_at desc").
		Find(&enrollments).Error
	return enrollments, err
}
