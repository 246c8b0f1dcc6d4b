// Package subscription applies billing-provider webhook events to the user's
// subscription state. Every transition writes absolute values, each event id
// is applied at most once, and events older than the last applied one are
// skipped so redelivery or reordering cannot resurrect stale state.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"academy/database"
	"academy/models"
	"academy/models/billing"
	"academy/services/enrollment"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const provider = "stripe"

// Outcome statuses
const (
	Processed = billing.EventProcessed
	Ignored   = billing.EventIgnored
	Duplicate = "DUPLICATE"
)

// ErrUnknownCustomer rolls back an event whose customer is not linked to a
// user yet, so the provider redelivers it after the checkout lands.
var ErrUnknownCustomer = errors.New("customer not linked to a user yet")

type Outcome struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type Synchronizer struct {
	db          *gorm.DB
	enrollments *enrollment.Manager
}

func NewSynchronizer(db *gorm.DB, enrollments *enrollment.Manager) *Synchronizer {
	return &Synchronizer{db: db, enrollments: enrollments}
}

type pendingEnrollment struct {
	userID, courseID uint
}

// Apply records the event in the webhook ledger and applies its transition in
// the same transaction. A second delivery of the same event id is a no-op.
func (s *Synchronizer) Apply(ctx context.Context, ev Event) (Outcome, error) {
	if ev == nil {
		return Outcome{}, errors.New("nil event")
	}
	m := ev.meta()

	var (
		out     Outcome
		pending *pendingEnrollment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := billing.WebhookEvent{
			Provider:   provider,
			EventID:    m.ID,
			Type:       m.Type,
			Payload:    datatypes.JSON(m.Raw),
			Status:     Processed,
			OccurredAt: m.Created,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).Create(&entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			out = Outcome{Status: Duplicate, Note: "event already applied"}
			return nil
		}

		var err error
		switch e := ev.(type) {
		case *CheckoutCompleted:
			out, pending, err = s.checkoutCompleted(ctx, tx, e)
		case *SubscriptionUpdated:
			out, err = s.subscriptionUpdated(tx, e)
		case *SubscriptionDeleted:
			out, err = s.subscriptionDeleted(tx, e)
		case *PaymentFailed:
			out, err = s.paymentFailed(tx, e)
		default:
			err = fmt.Errorf("unhandled event %T", ev)
		}
		if err != nil {
			return err
		}

		return tx.Model(&entry).Updates(map[string]interface{}{
			"status": out.Status,
			"note":   out.Note,
		}).Error
	})
	if err != nil {
		log.Printf("[WEBHOOK] %s %s failed: %v", m.Type, m.ID, err)
		return Outcome{}, err
	}

	log.Printf("[WEBHOOK] %s %s: %s %s", m.Type, m.ID, out.Status, out.Note)
	if pending != nil && s.enrollments != nil {
		s.enrollments.NotifyEnrolled(ctx, pending.userID, pending.courseID)
	}
	return out, nil
}

func (s *Synchronizer) checkoutCompleted(ctx context.Context, tx *gorm.DB, e *CheckoutCompleted) (Outcome, *pendingEnrollment, error) {
	user, note, err := checkoutUser(tx, e)
	if err != nil || user == nil {
		return ignored(note), nil, err
	}

	updates := map[string]interface{}{}
	if e.CustomerID != "" {
		updates["stripe_customer_id"] = e.CustomerID
	}
	stale := isStale(user, e.Created, false)
	if !stale {
		updates["subscription_status"] = models.SubscriptionActive
		updates["subscription_event_at"] = e.Created
		if e.SubscriptionID != "" {
			updates["stripe_subscription_id"] = e.SubscriptionID
		}
	}
	if len(updates) > 0 {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return Outcome{}, nil, err
		}
	}

	// a paid course is still granted when a later billing event already moved the status on
	if e.CourseID == 0 {
		if stale {
			return ignored("older than the last applied billing event"), nil, nil
		}
		return Outcome{Status: Processed}, nil, nil
	}
	if s.enrollments == nil {
		return Outcome{}, nil, errors.New("course purchase without an enrollment manager")
	}
	_, created, err := s.enrollments.WithTx(tx).EnrollFromPaymentEvent(ctx, user.ID, e.CourseID)
	if err != nil {
		return Outcome{}, nil, err
	}
	if !created {
		return Outcome{Status: Processed, Note: "already enrolled"}, nil, nil
	}
	return Outcome{Status: Processed}, &pendingEnrollment{userID: user.ID, courseID: e.CourseID}, nil
}

// checkoutUser finds the user a completed checkout belongs to. A known
// customer id wins; otherwise the user id the server put in the session
// metadata links the new customer to that user.
func checkoutUser(tx *gorm.DB, e *CheckoutCompleted) (*models.User, string, error) {
	if e.CustomerID != "" {
		user, err := userByCustomer(tx, e.CustomerID)
		if err != nil {
			return nil, "", err
		}
		if user != nil {
			if e.UserID != 0 && e.UserID != user.ID {
				return nil, "customer belongs to another user", nil
			}
			return user, "", nil
		}
	}
	if e.UserID == 0 {
		return nil, "no user reference on checkout session", nil
	}

	var user models.User
	err := database.ForUpdate(tx).Where("id = ? AND is_deleted = ?", e.UserID, false).First(&user).Error
	if database.IsNotFound(err) {
		return nil, "unknown user", nil
	}
	if err != nil {
		return nil, "", err
	}
	return &user, "", nil
}

func (s *Synchronizer) subscriptionUpdated(tx *gorm.DB, e *SubscriptionUpdated) (Outcome, error) {
	user, err := userByCustomer(tx, e.CustomerID)
	if err != nil {
		return Outcome{}, err
	}
	if user == nil {
		return Outcome{}, ErrUnknownCustomer
	}
	reviving := e.Status != models.SubscriptionCanceled && user.StripeSubscriptionID == nil
	if isStale(user, e.Created, reviving) {
		return ignored("older than the last applied billing event"), nil
	}
	if otherSubscription(user, e.SubscriptionID) {
		return ignored("event for a replaced subscription"), nil
	}

	updates := map[string]interface{}{
		"subscription_status":   e.Status,
		"subscription_event_at": e.Created,
		"subscription_ends_at":  e.PeriodEnd,
	}
	if e.SubscriptionID != "" && e.Status != models.SubscriptionCanceled {
		updates["stripe_subscription_id"] = e.SubscriptionID
	}
	return Outcome{Status: Processed}, tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error
}

func (s *Synchronizer) subscriptionDeleted(tx *gorm.DB, e *SubscriptionDeleted) (Outcome, error) {
	user, err := userByCustomer(tx, e.CustomerID)
	if err != nil {
		return Outcome{}, err
	}
	if user == nil {
		return Outcome{}, ErrUnknownCustomer
	}
	if isStale(user, e.Created, false) {
		return ignored("older than the last applied billing event"), nil
	}
	if otherSubscription(user, e.SubscriptionID) {
		return ignored("event for a replaced subscription"), nil
	}

	// the customer id stays so the user can resubscribe
	err = tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"subscription_status":    models.SubscriptionCanceled,
		"stripe_subscription_id": nil,
		"subscription_event_at":  e.Created,
	}).Error
	return Outcome{Status: Processed}, err
}

func (s *Synchronizer) paymentFailed(tx *gorm.DB, e *PaymentFailed) (Outcome, error) {
	user, err := userByCustomer(tx, e.CustomerID)
	if err != nil {
		return Outcome{}, err
	}
	if user == nil {
		return Outcome{}, ErrUnknownCustomer
	}
	if isStale(user, e.Created, false) {
		return ignored("older than the last applied billing event"), nil
	}
	if otherSubscription(user, e.SubscriptionID) {
		return ignored("event for a replaced subscription"), nil
	}

	err = tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"subscription_status":   models.SubscriptionPastDue,
		"subscription_event_at": e.Created,
	}).Error
	return Outcome{Status: Processed}, err
}

// userByCustomer locks the user linked to a provider customer id. It returns
// nil without error when no user is linked.
func userByCustomer(tx *gorm.DB, customerID string) (*models.User, error) {
	if customerID == "" {
		return nil, nil
	}
	var user models.User
	err := database.ForUpdate(tx).Where("stripe_customer_id = ?", customerID).First(&user).Error
	if database.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// isStale reports whether an event created at t predates the last applied
// one. Events sharing that second are applied in arrival order, except ones
// that would revive a subscription already torn down at that second.
func isStale(user *models.User, t time.Time, reviving bool) bool {
	if user.SubscriptionEventAt == nil {
		return false
	}
	last := *user.SubscriptionEventAt
	if t.Before(last) {
		return true
	}
	return reviving && t.Equal(last)
}

func otherSubscription(user *models.User, subscriptionID string) bool {
	return subscriptionID != "" && user.StripeSubscriptionID != nil &&
		*user.StripeSubscriptionID != "" && *user.StripeSubscriptionID != subscriptionID
}

func ignored(note string) Outcome {
	return Outcome{Status: Ignored, Note: note}
}
