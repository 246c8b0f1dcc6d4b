// Package mailer sends transactional email. Delivery is fire-and-forget:
// a failed send is logged and never fails the operation that triggered it.
package mailer

import (
	"context"
	"fmt"
	"log"

	"academy/config"
)

type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers one message through a provider
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks the provider named by EMAIL_PROVIDER
func NewSender(cfg *config.Config) (Sender, error) {
	switch cfg.EmailProvider {
	case "sendgrid":
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFromName, cfg.EmailFrom), nil
	case "resend":
		return NewResendSender(cfg.ResendAPIKey, cfg.EmailFromName, cfg.EmailFrom, resendBaseURL), nil
	case "log", "":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
}

// LogSender only logs; used in development
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("[MAILER] (log) to=%s subject=%q", msg.ToEmail, msg.Subject)
	return nil
}
