// internal/message/message.go
//
// Outbound e-mail.
//
// Context
//   Staff are told about new submissions by e-mail.  Email is the provider-
//   neutral payload; Sender is what callers depend on.  ResendSender posts
//   to a Resend-compatible HTTP API, and Disabled is used when the API key
//   or admin address is missing so callers never branch on config.
//
//   Delivery is attempted exactly once.  Callers log failures and move on.
//
//------------------------------------------------------------------------------

package message

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrDisabled is returned by Disabled.Send.
var ErrDisabled = errors.New("e-mail notifications disabled")

// Email represents one outbound message.
type Email struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers one Email.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

// Disabled is the no-op Sender.
type Disabled struct{}

func (Disabled) Send(context.Context, Email) error { return ErrDisabled }

// ResendSender talks to the Resend e-mail API.
type ResendSender struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewResend returns a sender with a bounded HTTP client.
func NewResend(url, apiKey string, timeout time.Duration) *ResendSender {
	return &ResendSender{URL: url, APIKey: apiKey, Client: &http.Client{Timeout: timeout}}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ProviderError is a non-2xx answer from the API.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("e-mail provider returned %d: %s", e.Status, e.Body)
}

// Send posts msg as JSON with a Bearer token.
func (s *ResendSender) Send(ctx context.Context, msg Email) error {
	if len(msg.To) == 0 {
		return errors.New("e-mail has no recipients")
	}
	body, err := json.Marshal(resendPayload{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send e-mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ProviderError{Status: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
