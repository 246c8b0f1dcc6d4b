package course

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz belongs to a lesson
type Quiz struct {
	gorm.Model
	LessonID     uint           `json:"lesson_id" gorm:"uniqueIndex;not null"`
	Title        string         `json:"title"`
	PassingScore int            `json:"passing_score"` // 0-100
	Questions    []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string { return "quizzes" }

type QuizQuestion struct {
	gorm.Model
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	Question      string         `json:"question"`
	Options       datatypes.JSON `json:"options"` // JSON array of option texts
	CorrectAnswer string         `json:"correct_answer,omitempty"`
	Explanation   string         `json:"explanation,omitempty"`
	OrderIndex    int            `json:"order_index" gorm:"default:0"`
}

func (QuizQuestion) TableName() string { return "quiz_questions" }

// OptionList decodes Options; a malformed column yields no options.
func (q *QuizQuestion) OptionList() []string {
	var opts []string
	if len(q.Options) == 0 {
		return opts
	}
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

// QuizAttempt is an immutable scored record of one quiz submission.
// Passed is frozen at grading time and never re-derived.
type QuizAttempt struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	QuizID    uint           `json:"quiz_id" gorm:"index;not null"`
	Answers   datatypes.JSON `json:"answers"` // question id -> selected option text
	Score     int            `json:"score"`
	Passed    bool           `json:"passed"`
	CreatedAt time.Time      `json:"created_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempts" }
