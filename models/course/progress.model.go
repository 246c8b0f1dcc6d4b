package course

import "time"

// LessonProgress is the per-user per-lesson completion and watch-time record
type LessonProgress struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	LessonID    uint       `json:"lesson_id" gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
	WatchTime   int        `json:"watch_time" gorm:"default:0"` // seconds
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
