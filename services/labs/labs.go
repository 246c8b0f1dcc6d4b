// Package labs takes practical-assignment submissions with optional evidence
// files and lets course owners grade them. Labs never affect course progress.
package labs

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"academy/apperr"
	"academy/database"
	"academy/models"
	"academy/models/course"
	"academy/utils"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"
)

// MaxEvidenceSize bounds a single evidence upload
const MaxEvidenceSize = 50 << 20

// Evidence is an uploaded file accompanying a submission
type Evidence struct {
	Filename string
	Body     io.Reader
}

type Submission struct {
	Text     string
	Evidence *Evidence
}

type Grade struct {
	Points   int
	Feedback string
}

type Service struct {
	db        *gorm.DB
	uploadDir string
	now       func() time.Time
}

func NewService(db *gorm.DB, uploadDir string) *Service {
	return &Service{db: db, uploadDir: uploadDir, now: time.Now}
}

// Submit records a learner's submission for a lab on a lesson they can reach.
func (s *Service) Submit(ctx context.Context, userID, labID uint, in Submission) (*course.LabSubmission, error) {
	db := s.db.WithContext(ctx)

	var lab course.Lab
	if err := db.First(&lab, labID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrLabNotFound
		}
		return nil, err
	}
	if err := checkReachable(db, userID, lab.LessonID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if lab.RequiresText && text == "" {
		return nil, apperr.Validationf("This lab requires a written response!")
	}
	if lab.RequiresEvidence() && in.Evidence == nil {
		return nil, apperr.Validationf("This lab requires an evidence file!")
	}
	if !lab.RequiresEvidence() && in.Evidence != nil {
		return nil, apperr.Validationf("This lab does not accept files!")
	}

	sub := course.LabSubmission{
		LabID:        lab.ID,
		UserID:       userID,
		TextResponse: text,
		Status:       course.SubmissionSubmitted,
	}
	if in.Evidence != nil {
		path, mime, err := s.saveEvidence(&lab, in.Evidence)
		if err != nil {
			return nil, err
		}
		sub.EvidencePath, sub.EvidenceMime = path, mime
	}

	if err := db.Create(&sub).Error; err != nil {
		return nil, err
	}
	log.Printf("[LABS] user %d submitted lab %d (submission %d)", userID, labID, sub.ID)
	s.setURL(&sub)
	return &sub, nil
}

// Grade scores a submission. Only the course's instructor or an admin may
// grade, only graded labs accept points and points must lie in [0, maxPoints].
func (s *Service) Grade(ctx context.Context, grader models.User, submissionID uint, in Grade) (*course.LabSubmission, error) {
	db := s.db.WithContext(ctx)

	var sub course.LabSubmission
	if err := db.First(&sub, submissionID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrSubmissionNotFound
		}
		return nil, err
	}
	var lab course.Lab
	if err := db.First(&lab, sub.LabID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrLabNotFound
		}
		return nil, err
	}
	if err := checkOwner(db, grader, lab.LessonID); err != nil {
		return nil, err
	}

	if !lab.IsGraded {
		return nil, apperr.Validationf("This lab is not graded!")
	}
	if in.Points < 0 || in.Points > lab.MaxPoints {
		return nil, apperr.Validationf("Points must be between 0 and %d!", lab.MaxPoints)
	}

	now := s.now()
	points := in.Points
	sub.Points = &points
	sub.Feedback = in.Feedback
	sub.Status = course.SubmissionGraded
	sub.GradedBy = &grader.ID
	sub.GradedAt = &now
	if err := db.Model(&sub).
		Select("points", "feedback", "status", "graded_by", "graded_at").
		Updates(&sub).Error; err != nil {
		return nil, err
	}
	log.Printf("[LABS] submission %d graded %d/%d by user %d", sub.ID, points, lab.MaxPoints, grader.ID)
	s.setURL(&sub)
	return &sub, nil
}

// ListSubmissions returns a lab's submissions, newest first, for its grader.
func (s *Service) ListSubmissions(ctx context.Context, grader models.User, labID uint) ([]course.LabSubmission, error) {
	db := s.db.WithContext(ctx)

	var lab course.Lab
	if err := db.First(&lab, labID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrLabNotFound
		}
		return nil, err
	}
	if err := checkOwner(db, grader, lab.LessonID); err != nil {
		return nil, err
	}

	var subs []course.LabSubmission
	if err := db.Where("lab_id = ?", labID).Order("created_at desc").Find(&subs).Error; err != nil {
		return nil, err
	}
	for i := range subs {
		s.setURL(&subs[i])
	}
	return subs, nil
}

// saveEvidence sniffs the file content and stores it if it matches one of
// the kinds the lab asks for.
func (s *Service) saveEvidence(lab *course.Lab, ev *Evidence) (path, mime string, err error) {
	data, err := io.ReadAll(io.LimitReader(ev.Body, MaxEvidenceSize+1))
	if err != nil {
		return "", "", err
	}
	if len(data) == 0 {
		return "", "", apperr.Validationf("Evidence file is empty!")
	}
	if len(data) > MaxEvidenceSize {
		return "", "", apperr.Validationf("Evidence file exceeds %d MB!", MaxEvidenceSize>>20)
	}

	mt := mimetype.Detect(data)
	if !Accepts(lab, mt.String()) {
		return "", "", apperr.Validationf("File type %s is not accepted for this lab!", mt.String())
	}

	ext := mt.Extension()
	if ext == "" {
		ext = filepath.Ext(ev.Filename)
	}
	path, err = utils.SaveFile(bytes.NewReader(data), filepath.Join(s.uploadDir, "labs"), ext)
	if err != nil {
		return "", "", err
	}
	return path, mt.String(), nil
}

func (s *Service) setURL(sub *course.LabSubmission) {
	sub.EvidenceURL = utils.GetFileURL(s.uploadDir, sub.EvidencePath)
}

// Accepts reports whether a file of the given MIME type satisfies one of the
// lab's evidence requirements.
func Accepts(lab *course.Lab, mime string) bool {
	switch {
	case lab.RequiresFileUpload:
		return true
	case lab.RequiresPhoto && strings.HasPrefix(mime, "image/"):
		return true
	case lab.RequiresVideo && strings.HasPrefix(mime, "video/"):
		return true
	}
	return false
}

func lessonModule(db *gorm.DB, lessonID uint) (*course.Module, error) {
	var lesson course.Lesson
	if err := db.First(&lesson, lessonID).Error; err != nil {
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
	return &module, nil
}

func checkReachable(db *gorm.DB, userID, lessonID uint) error {
	module, err := lessonModule(db, lessonID)
	if err != nil {
		return err
	}
	if !module.IsPublished {
		return apperr.ErrLessonLocked
	}
	if module.IsFree {
		return nil
	}
	var enrolled int64
	if err := db.Model(&course.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, module.CourseID).
		Count(&enrolled).Error; err != nil {
		return err
	}
	if enrolled == 0 {
		return apperr.ErrNotEnrolled
	}
	return nil
}

func checkOwner(db *gorm.DB, user models.User, lessonID uint) error {
	if user.Role == models.RoleAdmin {
		return nil
	}
	module, err := lessonModule(db, lessonID)
	if err != nil {
		return err
	}
	var crs course.Course
	if err := db.First(&crs, module.CourseID).Error; err != nil {
		if database.IsNotFound(err) {
			return apperr.ErrCourseNotFound
		}
		return err
	}
	if crs.InstructorID != user.ID {
		return apperr.ErrNotCourseOwner
	}
	return nil
}
