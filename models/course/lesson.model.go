package course

import "gorm.io/gorm"

// Lesson is a single video and/or text unit within a module
type Lesson struct {
	gorm.Model
	ModuleID   uint   `json:"module_id" gorm:"index;not null"`
	Title      string `json:"title"`
	Content    string `json:"content" gorm:"type:text"`
	VideoURL   string `json:"video_url"`
	Duration   int    `json:"duration" gorm:"default:0"` // seconds
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	Quiz       *Quiz  `json:"quiz,omitempty" gorm:"foreignKey:LessonID"`
	Labs       []Lab  `json:"labs,omitempty" gorm:"foreignKey:LessonID"`
}

func (Lesson) TableName() string { return "lessons" }
