package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"firewatch-worker-go/internal/config"
)

func captureConfig() *config.Config {
	return &config.Config{
		ReconnectBackoffMin: 1 * time.Second,
		ReconnectBackoffMax: 30 * time.Second,
		ReconnectJitterPct:  20,
	}
}

func TestCalculateBackoffDelayBounds(t *testing.T) {
	sc := NewStreamCapture(captureConfig())

	for attempt := 1; attempt <= 10; attempt++ {
		delay := sc.CalculateBackoffDelay(attempt)

		// Jitter is at most 20% around the clamped base.
		assert.GreaterOrEqual(t, delay, 800*time.Millisecond, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, 36*time.Second, "attempt %d", attempt)
	}
}

func TestCalculateBackoffDelayGrows(t *testing.T) {
	cfg := captureConfig()
	cfg.ReconnectJitterPct = 0
	sc := NewStreamCapture(cfg)

	assert.Equal(t, 2*time.Second, sc.CalculateBackoffDelay(1))
	assert.Equal(t, 8*time.Second, sc.CalculateBackoffDelay(3))
	// Clamped to the maximum past attempt 5.
	assert.Equal(t, 30*time.Second, sc.CalculateBackoffDelay(8))
}
