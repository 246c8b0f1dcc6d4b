package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleLearner    Role = "LEARNER"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// SubscriptionStatus is the user's standing with the recurring-billing provider
type SubscriptionStatus string

const (
	SubscriptionNone     SubscriptionStatus = "NONE"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)

type User struct {
	gorm.Model
	Name     string `json:"name" gorm:"default:''"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"default:'LEARNER'"`

	SubscriptionStatus   SubscriptionStatus `json:"subscription_status" gorm:"default:'NONE'"`
	StripeCustomerID     *string            `json:"-" gorm:"uniqueIndex"`
	StripeSubscriptionID *string            `json:"-"`
	SubscriptionEndsAt   *time.Time         `json:"subscription_ends_at"`
	// SubscriptionEventAt is the creation time of the last billing event applied to this user.
	SubscriptionEventAt *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login"`
	IsDeleted bool       `json:"-" gorm:"default:false"`
}

// HasActiveSubscription reports whether paid-course enrollment is permitted.
// PastDue, Canceled and None all block.
func (u *User) HasActiveSubscription() bool {
	return u.SubscriptionStatus == SubscriptionActive
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
