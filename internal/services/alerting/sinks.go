package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

// Sink receives alerts but never influences pipeline state.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, alert *models.Alert) error
}

// WebhookSink posts alerts to the external workflow engine, which routes
// them to WhatsApp, SMS and voice notifications.
type WebhookSink struct {
	url    string
	client *http.Client
}

func NewWebhookSink(cfg *config.Config) *WebhookSink {
	return &WebhookSink{
		url: cfg.WebhookURL,
		client: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, alert *models.Alert) error {
	if s.url == "" {
		return fmt.Errorf("webhook URL not configured")
	}
	return postJSON(ctx, s.client, s.url, alert)
}

// BackendSink logs alerts to the persistence API. Best-effort: detection
// never blocks on its success.
type BackendSink struct {
	url    string
	client *http.Client
}

func NewBackendSink(cfg *config.Config) *BackendSink {
	return &BackendSink{
		url: cfg.BackendURL + "/alerts/fire",
		client: &http.Client{
			Timeout: cfg.BackendTimeout,
		},
	}
}

func (s *BackendSink) Name() string { return "backend" }

func (s *BackendSink) Deliver(ctx context.Context, alert *models.Alert) error {
	// The persistence endpoint keeps the historical record shape:
	// confidence as a percentage, flat event fields.
	payload := map[string]interface{}{
		"event_type":  "fire",
		"alert_type":  alert.AlertType,
		"severity":    alert.Severity,
		"camera_id":   alert.CameraID,
		"floor_id":    alert.FloorID,
		"room":        alert.Room,
		"confidence":  alert.Confidence * 100,
		"fire_type":   alert.FireType,
		"method":      alert.Method,
		"message":     alert.Message,
		"detected_at": alert.DetectedAt.Format(time.RFC3339),
	}
	return postJSON(ctx, s.client, s.url, payload)
}

func postJSON(ctx context.Context, client *http.Client, url string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
