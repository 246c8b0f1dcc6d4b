package billing

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventProcessed = "PROCESSED"
	EventIgnored   = "IGNORED"
)

// WebhookEvent is the ledger of billing-provider events already applied.
// The unique EventID makes redelivery of the same event a no-op.
type WebhookEvent struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Provider   string         `json:"provider" gorm:"not null;default:'stripe'"`
	EventID    string         `json:"event_id" gorm:"uniqueIndex;not null"`
	Type       string         `json:"type" gorm:"index"`
	Payload    datatypes.JSON `json:"payload"`
	Status     string         `json:"status" gorm:"default:'PROCESSED'"`
	Note       string         `json:"note"`
	OccurredAt time.Time      `json:"occurred_at"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
