// Package quiz scores quiz submissions and stores immutable attempts.
// Grading never touches lesson completion or course progress.
package quiz

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"strconv"

	"academy/apperr"
	"academy/database"
	"academy/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answers maps a question id to the selected option text
type Answers map[string]string

type Result struct {
	Score   int                `json:"score"`
	Passed  bool               `json:"passed"`
	Attempt course.QuizAttempt `json:"attempt"`
}

type Grader struct {
	db *gorm.DB
}

func NewGrader(db *gorm.DB) *Grader {
	return &Grader{db: db}
}

// Submit grades answers against the stored correct answers and appends one
// attempt. Every call is a distinct attempt.
func (g *Grader) Submit(ctx context.Context, userID, quizID uint, answers Answers) (*Result, error) {
	db := g.db.WithContext(ctx)

	var q course.Quiz
	if err := db.Preload("Questions", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("order_index asc, id asc")
	}).First(&q, quizID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.ErrQuizNotFound
		}
		return nil, err
	}

	if err := validateAnswers(q.Questions, answers); err != nil {
		return nil, err
	}

	score := Score(q.Questions, answers)
	passed := score >= q.PassingScore

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	attempt := course.QuizAttempt{
		UserID:  userID,
		QuizID:  quizID,
		Answers: datatypes.JSON(raw),
		Score:   score,
		Passed:  passed,
	}
	if err := db.Create(&attempt).Error; err != nil {
		return nil, err
	}

	log.Printf("[QUIZ] user %d quiz %d score=%d passed=%t", userID, quizID, score, passed)
	return &Result{Score: score, Passed: passed, Attempt: attempt}, nil
}

// Attempts lists a user's attempts for a quiz, newest first
func (g *Grader) Attempts(ctx context.Context, userID, quizID uint) ([]course.QuizAttempt, error) {
	var attempts []course.QuizAttempt
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at desc, id desc").
		Find(&attempts).Error
	return attempts, err
}

// Score is round(100*correct/total). Unanswered questions count as wrong;
// a quiz without questions scores 0.
func Score(questions []course.QuizQuestion, answers Answers) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range questions {
		if selected, ok := answers[questionKey(q.ID)]; ok && selected == q.CorrectAnswer {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(questions))))
}

func validateAnswers(questions []course.QuizQuestion, answers Answers) error {
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[questionKey(q.ID)] = struct{}{}
	}
	for id := range answers {
		if _, ok := known[id]; !ok {
			return apperr.Validationf("Unknown question id %q!", id)
		}
	}
	return nil
}

func questionKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
