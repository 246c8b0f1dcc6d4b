// Package authoring lets instructors build course content. Courses are
// always created as drafts; only the approval workflow publishes them.
package authoring

import (
	"context"
	"encoding/json"
	"strings"

	"academy/apperr"
	"academy/database"
	"academy/models"
	"academy/models/course"
	"academy/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseInput struct {
	Title        string
	Description  string
	Price        int64
	ThumbnailURL string
}

type ModuleInput struct {
	Title       string
	Description string
	OrderIndex  int
	IsPublished bool
	IsFree      bool
}

type LessonInput struct {
	Title      string
	Content    string
	VideoURL   string
	Duration   int
	OrderIndex int
}

type QuestionInput struct {
	Question      string
	Options       []string
	CorrectAnswer string
	Explanation   string
}

type QuizInput struct {
	Title        string
	PassingScore int
	Questions    []QuestionInput
}

type LabInput struct {
	Title              string
	Description        string
	Instructions       string
	RequiresText       bool
	RequiresPhoto      bool
	RequiresVideo      bool
	RequiresFileUpload bool
	IsGraded           bool
	MaxPoints          int
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateCourse creates a draft course owned by the author
func (s *Service) CreateCourse(ctx context.Context, author models.User, in CourseInput) (*course.Course, error) {
	if in.Price < 0 {
		return nil, apperr.Validationf("Price must not be negative!")
	}
	c := course.Course{
		Title:        in.Title,
		Slug:         utils.UniqueSlug(in.Title),
		Description:  in.Description,
		Price:        in.Price,
		Status:       course.StatusDraft,
		InstructorID: author.ID,
		ThumbnailURL: in.ThumbnailURL,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListOwned returns the author's courses in any status; admins see all
func (s *Service) ListOwned(ctx context.Context, author models.User) ([]course.Course, error) {
	q := s.db.WithContext(ctx).Where("is_deleted = ?", false)
	if author.Role != models.RoleAdmin {
		q = q.Where("instructor_id = ?", author.ID)
	}
	var courses []course.Course
	err := q.Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (s *Service) AddModule(ctx context.Context, author models.User, courseID uint, in ModuleInput) (*course.Module, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedCourse(db, author, courseID); err != nil {
		return nil, err
	}

	// Get the next order index if not provided
	orderIndex := in.OrderIndex
	if orderIndex == 0 {
		var maxOrder int
		if err := db.Model(&course.Module{}).Where("course_id = ?", courseID).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder).Error; err != nil {
			return nil, err
		}
		orderIndex = maxOrder + 1
	}

	m := course.Module{
		CourseID:    courseID,
		Title:       in.Title,
		Description: in.Description,
		OrderIndex:  orderIndex,
		IsPublished: in.IsPublished,
		IsFree:      in.IsFree,
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SetModulePublished shows or hides a module from learners
func (s *Service) SetModulePublished(ctx context.Context, author models.User, moduleID uint, published bool) (*course.Module, error) {
	db := s.db.WithContext(ctx)
	m, err := ownedModule(db, author, moduleID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(m).Update("is_published", published).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) AddLesson(ctx context.Context, author models.User, moduleID uint, in LessonInput) (*course.Lesson, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedModule(db, author, moduleID); err != nil {
		return nil, err
	}
	if in.Duration < 0 {
		return nil, apperr.Validationf("Duration must not be negative!")
	}

	orderIndex := in.OrderIndex
	if orderIndex == 0 {
		var maxOrder int
		if err := db.Model(&course.Lesson{}).Where("module_id = ?", moduleID).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder).Error; err != nil {
			return nil, err
		}
		orderIndex = maxOrder + 1
	}

	l := course.Lesson{
		ModuleID:   moduleID,
		Title:      in.Title,
		Content:    in.Content,
		VideoURL:   in.VideoURL,
		Duration:   in.Duration,
		OrderIndex: orderIndex,
	}
	if err := db.Create(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// AddQuiz attaches a quiz to a lesson. A lesson has at most one quiz and
// every correct answer must be one of its question's options.
func (s *Service) AddQuiz(ctx context.Context, author models.User, lessonID uint, in QuizInput) (*course.Quiz, error) {
	if in.PassingScore < 0 || in.PassingScore > 100 {
		return nil, apperr.Validationf("Passing score must be between 0 and 100!")
	}
	if len(in.Questions) == 0 {
		return nil, apperr.Validationf("A quiz needs at least one question!")
	}
	for i, q := range in.Questions {
		if !contains(q.Options, q.CorrectAnswer) {
			return nil, apperr.Validationf("Question %d: correct answer must be one of its options!", i+1)
		}
	}

	quiz := course.Quiz{LessonID: lessonID, Title: in.Title, PassingScore: in.PassingScore}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedLesson(tx, author, lessonID); err != nil {
			return err
		}
		if err := tx.Create(&quiz).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return apperr.ErrQuizExists
			}
			return err
		}
		for i, q := range in.Questions {
			opts, err := json.Marshal(q.Options)
			if err != nil {
				return err
			}
			question := course.QuizQuestion{
				QuizID:        quiz.ID,
				Question:      q.Question,
				Options:       datatypes.JSON(opts),
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
				OrderIndex:    i + 1,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			quiz.Questions = append(quiz.Questions, question)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *Service) AddLab(ctx context.Context, author models.User, lessonID uint, in LabInput) (*course.Lab, error) {
	if in.IsGraded && in.MaxPoints <= 0 {
		return nil, apperr.Validationf("Graded labs need max points above zero!")
	}
	if !in.RequiresText && !in.RequiresPhoto && !in.RequiresVideo && !in.RequiresFileUpload {
		return nil, apperr.Validationf("A lab must ask for text or a file!")
	}

	db := s.db.WithContext(ctx)
	if _, err := ownedLesson(db, author, lessonID); err != nil {
		return nil, err
	}
	lab := course.Lab{
		LessonID:           lessonID,
		Title:              in.Title,
		Description:        in.Description,
		Instructions:       in.Instructions,
		RequiresText:       in.RequiresText,
		RequiresPhoto:      in.RequiresPhoto,
		RequiresVideo:      in.RequiresVideo,
		RequiresFileUpload: in.RequiresFileUpload,
		IsGraded:           in.IsGraded,
		MaxPoints:          in.MaxPoints,
	}
	if err := db.Create(&lab).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

func ownedCourse(db *gorm.DB, author models.User, courseID uint) (*course.Course, error) {
	var c course.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrCourseNotFound
		}
		return nil, err
	}
	if author.Role != models.RoleAdmin && c.InstructorID != author.ID {
		return nil, apperr.ErrNotCourseOwner
	}
	return &c, nil
}

func ownedModule(db *gorm.DB, author models.User, moduleID uint) (*course.Module, error) {
	var m course.Module
	if err := db.First(&m, moduleID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrModuleNotFound
		}
		return nil, err
	}
	if _, err := ownedCourse(db, author, m.CourseID); err != nil {
		return nil, err
	}
	return &m, nil
}

func ownedLesson(db *gorm.DB, author models.User, lessonID uint) (*course.Lesson, error) {
	var l course.Lesson
	if err := db.First(&l, lessonID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrLessonNotFound
		}
		return nil, err
	}
	if _, err := ownedModule(db, author, l.ModuleID); err != nil {
		return nil, err
	}
	return &l, nil
}

func contains(options []string, answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
