package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"academy/config"
	"academy/models"
	"academy/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestNotifier_EnrollmentConfirmed(t *testing.T) {
	sender := &recordingSender{}
	n := NewSyncNotifier(sender, "https://academy.test")

	c := course.Course{Title: "Biblical Leadership"}
	c.ID = 7
	n.EnrollmentConfirmed(models.User{Email: "john@test.com", Name: "John"}, c)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "john@test.com", msg.ToEmail)
	assert.Contains(t, msg.Subject, "Biblical Leadership")
	assert.Contains(t, msg.HTML, "https://academy.test/courses/7")
	assert.Contains(t, msg.HTML, "Dear John")
}

func TestNotifier_FallsBackToEmailWhenNameMissing(t *testing.T) {
	sender := &recordingSender{}
	n := NewSyncNotifier(sender, "https://academy.test")

	n.Welcome(models.User{Email: "anon@test.com"})

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].HTML, "Dear anon@test.com")
}

func TestNotifier_SendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("provider down")}
	n := NewSyncNotifier(sender, "https://academy.test")

	assert.NotPanics(t, func() {
		n.CourseApproved(models.User{Email: "i@test.com"}, course.Course{Title: "X"})
	})
	assert.Len(t, sender.sent, 1)
}

func TestNotifier_NilIsNoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.Welcome(models.User{Email: "x@test.com"}) })
}

func TestResendSender_Send(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	s := NewResendSender("re_test", "Academy", "no-reply@academy.test", srv.URL)
	err := s.Send(context.Background(), Message{ToEmail: "john@test.com", Subject: "Hi", HTML: "<p>Hi</p>"})

	require.NoError(t, err)
	assert.Equal(t, "Academy <no-reply@academy.test>", got.From)
	assert.Equal(t, []string{"john@test.com"}, got.To)
	assert.Equal(t, "Hi", got.Subject)
}

func TestResendSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"name":"validation_error","message":"invalid from"}`))
	}))
	defer srv.Close()

	s := NewResendSender("re_test", "Academy", "bad", srv.URL)
	err := s.Send(context.Background(), Message{ToEmail: "john@test.com", Subject: "Hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from")
}

func TestNewSender(t *testing.T) {
	for provider, want := range map[string]interface{}{
		"sendgrid": &SendGridSender{},
		"resend":   &ResendSender{},
		"log":      LogSender{},
	} {
		s, err := NewSender(&config.Config{EmailProvider: provider})
		require.NoError(t, err, provider)
		assert.IsType(t, want, s, provider)
	}

	_, err := NewSender(&config.Config{EmailProvider: "pigeon"})
	assert.Error(t, err)
}
