package scheduler

import (
	"context"
	"log"
	"time"

	"academy/models/billing"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const pruneTimeout = time.Minute

// Start registers the housekeeping jobs and starts the cron runner. The
// caller stops it on shutdown.
func Start(db *gorm.DB, retention time.Duration) (*cron.Cron, error) {
	log.Println("[SCHEDULER] Initializing scheduler...")

	c := cron.New()

	// Trim the webhook ledger once a day
	_, err := c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
		defer cancel()

		n, err := PruneWebhookEvents(ctx, db, time.Now().Add(-retention))
		if err != nil {
			log.Printf("[SCHEDULER] Error pruning webhook events: %v", err)
			return
		}
		log.Printf("[SCHEDULER] Pruned %d webhook events older than %s", n, retention)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Println("[SCHEDULER] Scheduler started - webhook ledger pruned daily")
	return c, nil
}

// PruneWebhookEvents deletes ledger rows recorded before the cutoff.
// Redelivery of a pruned event is still rejected by the event-time check
// in the synchronizer.
func PruneWebhookEvents(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&billing.WebhookEvent{})
	return res.RowsAffected, res.Error
}
