package mailer

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const resendBaseURL = "https://api.resend.com"

// ResendSender talks to the Resend HTTP API
type ResendSender struct {
	client *resty.Client
	from   string
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func NewResendSender(key, fromName, fromEmail, baseURL string) *ResendSender {
	return &ResendSender{
		client: resty.New().SetBaseURL(baseURL).SetAuthToken(key),
		from:   fmt.Sprintf("%s <%s>", fromName, fromEmail),
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	apiErr := &resendError{}
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(resendRequest{
			From:    s.from,
			To:      []string{msg.ToEmail},
			Subject: msg.Subject,
			HTML:    msg.HTML,
			Text:    msg.Text,
		}).
		SetError(apiErr).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("resend: status %d: %s", res.StatusCode(), apiErr.Message)
	}
	return nil
}
