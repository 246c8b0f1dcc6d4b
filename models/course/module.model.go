package course

import "gorm.io/gorm"

// Module represents a chapter within a course
type Module struct {
	gorm.Model
	CourseID    uint     `json:"course_id" gorm:"index;not null"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	OrderIndex  int      `json:"order_index" gorm:"default:0"` // Module order in course
	IsPublished bool     `json:"is_published" gorm:"default:false"`
	IsFree      bool     `json:"is_free" gorm:"default:false"` // free preview, no enrollment needed
	Lessons     []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`
}

func (Module) TableName() string { return "modules" }
