package course

import "time"

// Enrollment tracks a user's enrollment in a course with progress.
// Progress is always derived from LessonProgress rows, never set by a client.
type Enrollment struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID       uint       `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	Progress       int        `json:"progress" gorm:"default:0"` // 0-100
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	CompletedAt    *time.Time `json:"completed_at"` // non-nil iff Progress == 100
	Course         *Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollments" }
