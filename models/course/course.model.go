package course

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string     `json:"title"`
	Slug         string     `json:"slug" gorm:"index"`
	Description  string     `json:"description" gorm:"type:text"`
	Price        int64      `json:"price" gorm:"default:0"` // in cents, 0 means free
	Status       Status     `json:"status" gorm:"default:'DRAFT'"`
	InstructorID uint       `json:"instructor_id" gorm:"index;not null"`
	PublishedAt  *time.Time `json:"published_at"`
	ThumbnailURL string     `json:"thumbnail_url"`
	Modules      []Module   `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
	IsDeleted    bool       `json:"-" gorm:"default:false"`
}

func (Course) TableName() string { return "courses" }

func (c *Course) IsFree() bool { return c.Price <= 0 }

func (c *Course) IsPublished() bool { return c.Status == StatusPublished }
