package subscription

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"academy/models"

	"github.com/stripe/stripe-go/v76"
)

const (
	TypeCheckoutCompleted   = "checkout.session.completed"
	TypeSubscriptionUpdated = "customer.subscription.updated"
	TypeSubscriptionDeleted = "customer.subscription.deleted"
	TypePaymentFailed       = "invoice.payment_failed"
)

// Meta is the envelope shared by every billing event
type Meta struct {
	ID      string
	Type    string
	Created time.Time
	Raw     json.RawMessage
}

// Event is one of CheckoutCompleted, SubscriptionUpdated, SubscriptionDeleted
// or PaymentFailed.
type Event interface {
	meta() Meta
}

type CheckoutCompleted struct {
	Meta
	CustomerID     string
	SubscriptionID string
	// UserID and CourseID come from metadata the server attached when it
	// created the session.
	UserID   uint
	CourseID uint
	// Subscription is true for plan checkouts, false for one-off purchases.
	Subscription bool
}

type SubscriptionUpdated struct {
	Meta
	CustomerID     string
	SubscriptionID string
	Status         models.SubscriptionStatus
	PeriodEnd      *time.Time
}

type SubscriptionDeleted struct {
	Meta
	CustomerID     string
	SubscriptionID string
}

type PaymentFailed struct {
	Meta
	CustomerID     string
	SubscriptionID string
}

func (m Meta) meta() Meta { return m }

// FromStripe decodes a verified provider event. Types this service does not
// handle return a nil Event and no error.
func FromStripe(ev stripe.Event) (Event, error) {
	if ev.Data == nil {
		return nil, fmt.Errorf("event %s has no data", ev.ID)
	}
	m := Meta{
		ID:      ev.ID,
		Type:    string(ev.Type),
		Created: time.Unix(ev.Created, 0).UTC(),
		Raw:     ev.Data.Raw,
	}

	switch m.Type {
	case TypeCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out := &CheckoutCompleted{
			Meta:         m,
			Subscription: s.Mode == stripe.CheckoutSessionModeSubscription,
		}
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}
		if s.Subscription != nil {
			out.SubscriptionID = s.Subscription.ID
			out.Subscription = true
		}
		userRef := s.Metadata["userId"]
		if userRef == "" {
			userRef = s.ClientReferenceID
		}
		out.UserID = parseID(userRef)
		out.CourseID = parseID(s.Metadata["courseId"])
		return out, nil

	case TypeSubscriptionUpdated, TypeSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		customerID := ""
		if s.Customer != nil {
			customerID = s.Customer.ID
		}
		if m.Type == TypeSubscriptionDeleted {
			return &SubscriptionDeleted{Meta: m, CustomerID: customerID, SubscriptionID: s.ID}, nil
		}
		out := &SubscriptionUpdated{
			Meta:           m,
			CustomerID:     customerID,
			SubscriptionID: s.ID,
			Status:         MapStatus(s.Status),
		}
		if s.CurrentPeriodEnd > 0 {
			end := time.Unix(s.CurrentPeriodEnd, 0).UTC()
			out.PeriodEnd = &end
		}
		return out, nil

	case TypePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		out := &PaymentFailed{Meta: m}
		if inv.Customer != nil {
			out.CustomerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			out.SubscriptionID = inv.Subscription.ID
		}
		return out, nil
	}
	return nil, nil
}

// MapStatus folds the provider's subscription states onto the four states
// that gate enrollment.
func MapStatus(s stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.SubscriptionActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionCanceled
	default:
		return models.SubscriptionNone
	}
}

func parseID(s string) uint {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
