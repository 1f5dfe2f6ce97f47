package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookConfig configures WebhookSink.
type WebhookConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Secret   string        `yaml:"secret"`
	Timeout  time.Duration `yaml:"timeout"`
}

// WebhookSink posts events to an HTTP endpoint. Each delivery carries the
// action in X-FD-Event, the event ID in X-FD-Delivery and, when a secret is
// set, an HMAC-SHA256 body signature in X-FD-Signature.
type WebhookSink struct {
	Endpoint string
	Secret   string
	Client   *http.Client
}

const defaultWebhookTimeout = 5 * time.Second

// NewWebhookSink creates a WebhookSink from config.
func NewWebhookSink(c WebhookConfig) *WebhookSink {
	if !c.Enabled || c.Endpoint == "" {
		return nil
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookSink{Endpoint: c.Endpoint, Secret: c.Secret, Client: &http.Client{Timeout: timeout}}
}

func (s *WebhookSink) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(s.Secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (s *WebhookSink) Emit(ctx context.Context, e Event) error {
	if s == nil {
		return nil
	}
	body, err := e.Payload()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-FD-Event", e.Action)
	req.Header.Set("X-FD-Delivery", e.ID)
	if s.Secret != "" {
		req.Header.Set("X-FD-Signature", s.sign(body))
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: %s", e.Action, resp.Status)
	}
	return nil
}
