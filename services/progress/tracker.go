// Package progress records lesson completion and watch time and keeps the
// enrollment's derived progress percentage in step with it.
package progress

import (
	"context"
	"log"
	"math"
	"time"

	"academy/apperr"
	"academy/database"
	"academy/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Tracker struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db, now: time.Now}
}

// Result is the state after a completion toggle. Enrollment is nil when the
// lesson sits in a free-preview module the user is not enrolled in.
type Result struct {
	Enrollment     *course.Enrollment    `json:"enrollment"`
	LessonProgress course.LessonProgress `json:"lesson_progress"`
}

// SetLessonCompletion upserts the user's LessonProgress and recomputes the
// enrollment's progress and completion timestamp in one transaction.
func (t *Tracker) SetLessonCompletion(ctx context.Context, userID, lessonID uint, completed bool) (*Result, error) {
	var res Result

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the enrollment row lock serializes concurrent toggles for this user and course
		module, enrollment, err := reachableLesson(database.ForUpdate(tx), tx, userID, lessonID)
		if err != nil {
			return err
		}

		now := t.now()
		lp := course.LessonProgress{UserID: userID, LessonID: lessonID, Completed: completed}
		if completed {
			lp.CompletedAt = &now
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "updated_at"}),
		}).Create(&lp).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&res.LessonProgress).Error; err != nil {
			return err
		}

		if enrollment == nil {
			return nil
		}

		total, done, err := countLessons(tx, userID, module.CourseID)
		if err != nil {
			return err
		}

		enrollment.Progress = Percentage(done, total)
		enrollment.LastAccessedAt = now
		if enrollment.Progress == 100 {
			if enrollment.CompletedAt == nil {
				enrollment.CompletedAt = &now
			}
		} else {
			enrollment.CompletedAt = nil
		}
		if err := tx.Model(enrollment).
			Select("progress", "last_accessed_at", "completed_at").
			Updates(enrollment).Error; err != nil {
			return err
		}
		res.Enrollment = enrollment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Enrollment != nil {
		log.Printf("[PROGRESS] user %d lesson %d completed=%t course progress=%d%%",
			userID, lessonID, completed, res.Enrollment.Progress)
	}
	return &res, nil
}

// RecordWatchTime stores the latest playback position for a lesson.
// Last write wins; completion and course progress are untouched.
func (t *Tracker) RecordWatchTime(ctx context.Context, userID, lessonID uint, seconds int) error {
	if seconds < 0 {
		return apperr.Validationf("Watch time must not be negative!")
	}

	db := t.db.WithContext(ctx)
	if _, _, err := reachableLesson(db, db, userID, lessonID); err != nil {
		return err
	}

	lp := course.LessonProgress{UserID: userID, LessonID: lessonID, WatchTime: seconds}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watch_time", "updated_at"}),
	}).Create(&lp).Error
}

// reachableLesson loads the lesson's module and the user's enrollment in its
// course, failing unless the module is published and either free or enrolled.
// The enrollment is read through enrollments so callers can lock it; it is nil
// for a free-preview lesson the user is not enrolled in.
func reachableLesson(enrollments, tx *gorm.DB, userID, lessonID uint) (*course.Module, *course.Enrollment, error) {
	var lesson course.Lesson
	if err := tx.First(&lesson, lessonID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, nil, apperr.ErrLessonNotFound
		}
		return nil, nil, err
	}

	var module course.Module
	if err := tx.First(&module, lesson.ModuleID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, nil, apperr.ErrLessonNotFound
		}
		return nil, nil, err
	}
	if !module.IsPublished {
		return nil, nil, apperr.ErrLessonLocked
	}

	var enrollment course.Enrollment
	err := enrollments.Where("user_id = ? AND course_id = ?", userID, module.CourseID).First(&enrollment).Error
	if database.IsNotFound(err) {
		if !module.IsFree {
			return nil, nil, apperr.ErrNotEnrolled
		}
		return &module, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &module, &enrollment, nil
}

// countLessons returns the number of lessons in the course and how many of
// them the user has completed.
func countLessons(tx *gorm.DB, userID, courseID uint) (total, done int64, err error) {
	err = tx.Model(&course.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("modules.course_id = ?", courseID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	err = tx.Model(&course.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id AND lessons.deleted_at IS NULL").
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("lesson_progress.user_id = ? AND lesson_progress.completed = ? AND modules.course_id = ?", userID, true, courseID).
		Distinct("lesson_progress.lesson_id").
		Count(&done).Error
	return total, done, err
}

// Percentage is round(100*done/total), 0 for an empty course.
func Percentage(done, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(done) / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}
