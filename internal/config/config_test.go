package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "firewatch-1", cfg.WorkerID)
	assert.Equal(t, "http://localhost:8500/api/v1", cfg.BackendURL)
	assert.Equal(t, "http://localhost:8001", cfg.FaceServiceURL)
	assert.Equal(t, "http://localhost:8002", cfg.FireMLURL)
	assert.False(t, cfg.NatsEnabled)

	assert.Equal(t, 10, cfg.MaxCameras)
	assert.Equal(t, 2, cfg.FaceSampleInterval)
	assert.Equal(t, 4, cfg.FireSampleInterval)
	assert.Equal(t, 8, cfg.FaceQueueSize)
	assert.Equal(t, 8, cfg.FireQueueSize)

	assert.Equal(t, 0.5, cfg.FireConfidenceThreshold)
	assert.Equal(t, 0.7, cfg.FireCriticalThreshold)
	assert.Equal(t, 0.35, cfg.FaceMatchThreshold)

	assert.Equal(t, 60*time.Second, cfg.PresenceTimeout)
	assert.Equal(t, time.Duration(0), cfg.PresenceUpdateInterval)
	assert.Equal(t, 30*time.Second, cfg.AlertCooldown)
	assert.Equal(t, 2, cfg.SinkRetries)
	assert.Equal(t, "alerts.fire", cfg.AlertsSubject)
	assert.False(t, cfg.EscalationBypass)
	assert.Equal(t, 0.2, cfg.EscalationDelta)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("MAX_CAMERAS", "3")
	t.Setenv("FIRE_CONFIDENCE_THRESHOLD", "0.65")
	t.Setenv("PRESENCE_TIMEOUT", "90s")
	t.Setenv("ESCALATION_BYPASS", "true")
	t.Setenv("WEBHOOK_URL", "http://hooks.local/fire")

	cfg := Load()

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 3, cfg.MaxCameras)
	assert.Equal(t, 0.65, cfg.FireConfidenceThreshold)
	assert.Equal(t, 90*time.Second, cfg.PresenceTimeout)
	assert.True(t, cfg.EscalationBypass)
	assert.Equal(t, "http://hooks.local/fire", cfg.WebhookURL)
}

func TestLoadRejectsValuesThatBreakThePipeline(t *testing.T) {
	t.Setenv("TARGET_FPS", "0")
	t.Setenv("MAX_CAMERAS", "-1")
	t.Setenv("MAX_CONSECUTIVE_ERRORS", "0")
	t.Setenv("FACE_QUEUE_SIZE", "0")
	t.Setenv("FIRE_QUEUE_SIZE", "-2")
	t.Setenv("CAPTURE_WIDTH", "0")
	t.Setenv("FACE_SAMPLE_INTERVAL", "-3")

	cfg := Load()

	assert.Equal(t, 30, cfg.TargetFPS)
	assert.Equal(t, 10, cfg.MaxCameras)
	assert.Equal(t, 10, cfg.MaxConsecutiveErrors)
	assert.Equal(t, 8, cfg.FaceQueueSize)
	assert.Equal(t, 8, cfg.FireQueueSize)
	assert.Equal(t, 640, cfg.CaptureWidth)

	// A negative cadence falls back to 0, which disables the detector.
	assert.Equal(t, 0, cfg.FaceSampleInterval)
}

func TestLoadKeepsZeroSampleInterval(t *testing.T) {
	t.Setenv("FIRE_SAMPLE_INTERVAL", "0")

	cfg := Load()

	assert.Equal(t, 0, cfg.FireSampleInterval)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("FIRE_CRITICAL_THRESHOLD", "high")
	t.Setenv("ALERT_COOLDOWN", "soon")
	t.Setenv("NATS_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 0.7, cfg.FireCriticalThreshold)
	assert.Equal(t, 30*time.Second, cfg.AlertCooldown)
	assert.False(t, cfg.NatsEnabled)
}
