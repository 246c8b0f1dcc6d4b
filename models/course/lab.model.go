package course

import (
	"time"

	"gorm.io/gorm"
)

// Lab is a practical assignment attached to a lesson
type Lab struct {
	gorm.Model
	LessonID           uint   `json:"lesson_id" gorm:"index;not null"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Instructions       string `json:"instructions" gorm:"type:text"`
	RequiresText       bool   `json:"requires_text" gorm:"default:false"`
	RequiresPhoto      bool   `json:"requires_photo" gorm:"default:false"`
	RequiresVideo      bool   `json:"requires_video" gorm:"default:false"`
	RequiresFileUpload bool   `json:"requires_file_upload" gorm:"default:false"`
	IsGraded           bool   `json:"is_graded" gorm:"default:false"`
	MaxPoints          int    `json:"max_points" gorm:"default:0"`
}

func (Lab) TableName() string { return "labs" }

// RequiresEvidence reports whether a file must accompany a submission.
func (l *Lab) RequiresEvidence() bool {
	return l.RequiresPhoto || l.RequiresVideo || l.RequiresFileUpload
}

const (
	SubmissionSubmitted = "SUBMITTED"
	SubmissionGraded    = "GRADED"
)

type LabSubmission struct {
	gorm.Model
	LabID        uint       `json:"lab_id" gorm:"index;not null"`
	UserID       uint       `json:"user_id" gorm:"index;not null"`
	TextResponse string     `json:"text_response" gorm:"type:text"`
	EvidencePath string     `json:"-"`
	EvidenceURL  string     `json:"evidence_url,omitempty" gorm:"-"`
	EvidenceMime string     `json:"evidence_mime"`
	Status       string     `json:"status" gorm:"default:'SUBMITTED'"`
	Points       *int       `json:"points"`
	Feedback     string     `json:"feedback"`
	GradedBy     *uint      `json:"graded_by"`
	GradedAt     *time.Time `json:"graded_at"`
}

func (LabSubmission) TableName() string { return "lab_submissions" }
