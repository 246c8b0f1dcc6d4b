// Package catalog serves the learner-facing read side of courses: the public
// listing, a course outline and single-lesson access.
package catalog

import (
	"context"

	"academy/apperr"
	"academy/database"
	"academy/models/course"

	"gorm.io/gorm"
)

type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// CourseDetail is a published course with its published outline and the
// caller's enrollment, if any.
type CourseDetail struct {
	Course     course.Course      `json:"course"`
	Enrollment *course.Enrollment `json:"enrollment"`
}

// LessonView is everything a learner needs on a lesson page. Quiz questions
// never carry their correct answers.
type LessonView struct {
	Lesson      course.Lesson          `json:"lesson"`
	Module      course.Module          `json:"module"`
	Progress    *course.LessonProgress `json:"progress"`
	Quiz        *course.Quiz           `json:"quiz"`
	Labs        []course.Lab           `json:"labs"`
	Submissions []course.LabSubmission `json:"submissions"`
	Enrolled    bool                   `json:"enrolled"`
}

func orderByIndex(tx *gorm.DB) *gorm.DB {
	return tx.Order("order_index asc, id asc")
}

// ListPublished returns every published course, newest first. Drafts never
// appear here.
func (c *Catalog) ListPublished(ctx context.Context) ([]course.Course, error) {
	var courses []course.Course
	err := c.db.WithContext(ctx).
		Where("status = ? AND is_deleted = ?", course.StatusPublished, false).
		Order("published_at desc, id desc").
		Find(&courses).Error
	return courses, err
}

// GetPublished returns a published course with its published modules and
// their lessons in order.
func (c *Catalog) GetPublished(ctx context.Context, userID, courseID uint) (*CourseDetail, error) {
	db := c.db.WithContext(ctx)

	var crs course.Course
	err := db.Preload("Modules", func(tx *gorm.DB) *gorm.DB {
		return orderByIndex(tx.Where("is_published = ?", true))
	}).Preload("Modules.Lessons", orderByIndex).
		Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, course.StatusPublished).
		First(&crs).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrCourseNotFound
		}
		return nil, err
	}

	detail := &CourseDetail{Course: crs}
	enrollment, err := findEnrollment(db, userID, courseID)
	if err != nil {
		return nil, err
	}
	detail.Enrollment = enrollment
	return detail, nil
}

// GetLesson returns a lesson if the caller may reach it: the course and
// module are published and the module is free or the caller is enrolled.
func (c *Catalog) GetLesson(ctx context.Context, userID, courseID, lessonID uint) (*LessonView, error) {
	db := c.db.WithContext(ctx)

	var lesson course.Lesson
	err := db.Preload("Quiz").Preload("Quiz.Questions", orderByIndex).
		Preload("Labs", orderByIndex).
		First(&lesson, lessonID).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrLessonNotFound
		}
		return nil, err
	}

	var module course.Module
	if err := db.First(&module, lesson.ModuleID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrLessonNotFound
		}
		return nil, err
	}
	if module.CourseID != courseID {
		return nil, apperr.ErrLessonNotFound
	}

	var published int64
	if err := db.Model(&course.Course{}).
		Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, course.StatusPublished).
		Count(&published).Error; err != nil {
		return nil, err
	}
	if published == 0 {
		return nil, apperr.ErrCourseNotFound
	}
	if !module.IsPublished {
		return nil, apperr.ErrLessonLocked
	}

	enrollment, err := findEnrollment(db, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil && !module.IsFree {
		return nil, apperr.ErrNotEnrolled
	}

	view := &LessonView{Module: module, Enrolled: enrollment != nil, Labs: lesson.Labs}
	if lesson.Quiz != nil {
		view.Quiz = HideAnswers(lesson.Quiz)
	}
	lesson.Quiz, lesson.Labs = nil, nil
	view.Lesson = lesson

	var lp course.LessonProgress
	err = db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&lp).Error
	switch {
	case err == nil:
		view.Progress = &lp
	case !database.IsNotFound(err):
		return nil, err
	}

	if len(view.Labs) > 0 {
		labIDs := make([]uint, len(view.Labs))
		for i, l := range view.Labs {
			labIDs[i] = l.ID
		}
		if err := db.Where("user_id = ? AND lab_id IN ?", userID, labIDs).
			Order("created_at desc").
			Find(&view.Submissions).Error; err != nil {
			return nil, err
		}
	}
	return view, nil
}

// HideAnswers returns a copy of q with every correct answer and explanation
// removed.
func HideAnswers(q *course.Quiz) *course.Quiz {
	out := *q
	out.Questions = make([]course.QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = ""
		question.Explanation = ""
		out.Questions[i] = question
	}
	return &out
}

func findEnrollment(db *gorm.DB, userID, courseID uint) (*course.Enrollment, error) {
	var e course.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if database.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
