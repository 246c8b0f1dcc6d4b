// Package approval moves instructor drafts into the public catalog.
package approval

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

// Notifier is told when a course goes live
type Notifier interface {
	CourseApproved(instructor models.User, c course.Course)
}

type Workflow struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewWorkflow(db *gorm.DB, notifier Notifier) *Workflow {
	return &Workflow{db: db, notifier: notifier, now: time.Now}
}

// Approve publishes a draft course. Approving a published course is a no-op
// that returns it with its original publishedAt.
func (w *Workflow) Approve(ctx context.Context, courseID uint) (*course.Course, error) {
	db := w.db.WithContext(ctx)

	now := w.now()
	// the status guard makes the transition happen exactly once under concurrent approvals
	res := db.Model(&course.Course{}).
		Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, course.StatusDraft).
		Updates(map[string]interface{}{
			"status":       course.StatusPublished,
			"published_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var c course.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrCourseNotFound
		}
		return nil, err
	}

	if res.RowsAffected == 0 {
		log.Printf("[APPROVAL] course %d already published", courseID)
		return &c, nil
	}

	log.Printf("[APPROVAL] course %d published", courseID)
	w.notifyInstructor(db, c)
	return &c, nil
}

// ListPending returns draft courses awaiting review, oldest first
func (w *Workflow) ListPending(ctx context.Context) ([]course.Course, error) {
	var courses []course.Course
	err := w.db.WithContext(ctx).
		Where("status = ? AND is_deleted = ?", course.StatusDraft, false).
		Order("created_at asc").
		Find(&courses).Error
	return courses, err
}

func (w *Workflow) notifyInstructor(db *gorm.DB, c course.Course) {
	if w.notifier == nil {
		return
	}
	var instructor models.User
	if err := db.First(&instructor, c.InstructorID).Error; err != nil {
		log.Printf("[APPROVAL] notify: instructor %d: %v", c.InstructorID, err)
		return
	}
	w.notifier.CourseApproved(instructor, c)
}
