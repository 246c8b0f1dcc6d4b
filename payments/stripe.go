// Package payments talks to Stripe: it opens checkout and billing-portal
// sessions and authenticates incoming webhook deliveries.
package payments

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"academy/apperr"
	"academy/config"
	"academy/models"
	"academy/models/course"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// SignatureHeader carries the webhook signature
const SignatureHeader = "Stripe-Signature"

// Session is a hosted page the user is redirected to
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Provider is what the HTTP layer needs from the payment provider
type Provider interface {
	VerifyEvent(payload []byte, signature string) (stripe.Event, error)
	SubscriptionCheckout(ctx context.Context, user models.User, tier string) (*Session, error)
	CourseCheckout(ctx context.Context, user models.User, c course.Course) (*Session, error)
	PortalSession(ctx context.Context, user models.User) (*Session, error)
}

type Client struct {
	api           *client.API
	webhookSecret string
	appURL        string
	prices        map[string]string
	currency      string
}

// NewClient builds a Stripe client from config. A nil backends uses the
// live Stripe API.
func NewClient(cfg *config.Config, backends *stripe.Backends) *Client {
	return &Client{
		api:           client.New(cfg.StripeSecretKey, backends),
		webhookSecret: cfg.StripeWebhookSecret,
		appURL:        strings.TrimRight(cfg.AppURL, "/"),
		prices:        cfg.StripePrices,
		currency:      string(stripe.CurrencyUSD),
	}
}

// VerifyEvent checks the signature header against the raw body and returns
// the parsed event. Any failure, including a missing secret, is
// apperr.ErrSignatureInvalid.
func (s *Client) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	if s.webhookSecret == "" {
		return stripe.Event{}, apperr.Wrap(apperr.ErrSignatureInvalid, fmt.Errorf("webhook secret not configured"))
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, apperr.Wrap(apperr.ErrSignatureInvalid, err)
	}
	return ev, nil
}

// SubscriptionCheckout opens a subscription checkout for a plan tier
func (s *Client) SubscriptionCheckout(ctx context.Context, user models.User, tier string) (*Session, error) {
	priceID := s.prices[strings.ToUpper(tier)]
	if priceID == "" {
		return nil, apperr.Validationf("Unknown plan %q!", tier)
	}

	userRef := strconv.FormatUint(uint64(user.ID), 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(userRef),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.appURL + "/dashboard?success=true"),
		CancelURL:  stripe.String(s.appURL + "/pricing?canceled=true"),
	}
	s.setCustomer(params, user)
	params.AddMetadata("userId", userRef)
	params.Context = ctx

	return s.checkout(params)
}

// CourseCheckout opens a one-off payment checkout for a paid course
func (s *Client) CourseCheckout(ctx context.Context, user models.User, c course.Course) (*Session, error) {
	if c.IsFree() {
		return nil, apperr.Validationf("Course is free, enroll directly!")
	}

	userRef := strconv.FormatUint(uint64(user.ID), 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(userRef),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.currency),
					UnitAmount: stripe.Int64(c.Price),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(c.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/courses/%d?success=true", s.appURL, c.ID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/courses/%d?canceled=true", s.appURL, c.ID)),
	}
	s.setCustomer(params, user)
	if params.Customer == nil {
		// payment mode only creates a customer when asked to
		params.CustomerCreation = stripe.String("always")
	}
	params.AddMetadata("userId", userRef)
	params.AddMetadata("courseId", strconv.FormatUint(uint64(c.ID), 10))
	params.Context = ctx

	return s.checkout(params)
}

// PortalSession opens the billing portal for a user with a stored customer
func (s *Client) PortalSession(ctx context.Context, user models.User) (*Session, error) {
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return nil, apperr.Validationf("No subscription found!")
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  user.StripeCustomerID,
		ReturnURL: stripe.String(s.appURL + "/dashboard/billing"),
	}
	params.Context = ctx

	ps, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, apperr.Externalf(err, "Failed to open billing portal, try again!")
	}
	return &Session{ID: ps.ID, URL: ps.URL}, nil
}

func (s *Client) checkout(params *stripe.CheckoutSessionParams) (*Session, error) {
	cs, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, apperr.Externalf(err, "Failed to create checkout session, try again!")
	}
	return &Session{ID: cs.ID, URL: cs.URL}, nil
}

// setCustomer reuses a known customer so webhook events stay keyed to one id
func (s *Client) setCustomer(params *stripe.CheckoutSessionParams, user models.User) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		params.Customer = user.StripeCustomerID
		return
	}
	params.CustomerEmail = stripe.String(user.Email)
}
