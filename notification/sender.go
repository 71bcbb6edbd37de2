// Package notification delivers messages to external channels. Delivery is
// fire-and-forget: failures are logged by callers, never retried by the core
// and never allowed to fail the triggering operation.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrInvalidRecipient is returned when a message has no recipient address.
var ErrInvalidRecipient = errors.New("invalid recipient")

// Email is one outbound message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one message to its channel.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// EmailSender sends email through an HTTP mail API. If EMAIL_MODE=shadow,
// every recipient is forced to EMAIL_SHADOW_ADDRESS. Without an API key the
// sender is a no-op, which keeps local development quiet.
type EmailSender struct {
	apiKey     string
	apiURL     string
	fromEmail  string
	fromName   string
	shadowAddr string
	client     *http.Client
}

// NewEmailSender creates an email sender from the environment
// (MAIL_API_KEY, MAIL_API_URL, MAIL_FROM_EMAIL, MAIL_FROM_NAME,
// EMAIL_MODE, EMAIL_SHADOW_ADDRESS).
func NewEmailSender() *EmailSender {
	shadowAddr := ""
	if os.Getenv("EMAIL_MODE") == "shadow" {
		shadowAddr = os.Getenv("EMAIL_SHADOW_ADDRESS")
	}
	apiURL := os.Getenv("MAIL_API_URL")
	if apiURL == "" {
		apiURL = "https://api.sendgrid.com/v3/mail/send"
	}
	fromEmail := os.Getenv("MAIL_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "noreply@cmfs.local"
	}
	fromName := os.Getenv("MAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Complaint Management"
	}
	return &EmailSender{
		apiKey:     os.Getenv("MAIL_API_KEY"),
		apiURL:     apiURL,
		fromEmail:  fromEmail,
		fromName:   fromName,
		shadowAddr: shadowAddr,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Send sends one email. In shadow mode the recipient is overridden; without
// an API key nothing is sent.
func (s *EmailSender) Send(ctx context.Context, email *Email) error {
	to := email.To
	if s.shadowAddr != "" {
		to = s.shadowAddr
	}
	if to == "" {
		return ErrInvalidRecipient
	}
	if s.apiKey == "" {
		return nil
	}

	body := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]interface{}{{"email": to}}},
		},
		"from":    map[string]string{"email": s.fromEmail, "name": s.fromName},
		"subject": email.Subject,
		"content": []map[string]string{{"type": "text/plain", "value": email.Body}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail api unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail api status %d", resp.StatusCode)
	}
	return nil
}
