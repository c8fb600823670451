package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

// Classification is the normalized output of a fire classifier.
type Classification struct {
	Detected   bool            `json:"detected"`
	FireType   models.FireType `json:"type"`
	Confidence float64         `json:"confidence"`
	BBox       *models.BBox    `json:"bbox,omitempty"`
}

// Classifier scores a frame for fire. Implementations must respect the
// context deadline.
type Classifier interface {
	Classify(ctx context.Context, frame *models.RawFrame) (*Classification, error)
}

// MLClient calls the ML fire classifier service over HTTP with automatic
// retry backoff. A failing or slow service makes Classify return an
// error; it never blocks past the configured timeout.
type MLClient struct {
	cfg    *config.Config
	client *http.Client
	url    string

	// Retry management
	mu               sync.Mutex
	lastFailTime     time.Time
	consecutiveFails int
	maxRetryBackoff  time.Duration
}

// NewMLClient creates a client for the ML fire classifier service
func NewMLClient(cfg *config.Config) *MLClient {
	return &MLClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.MLTimeout,
		},
		url:             cfg.FireMLURL + "/detect-fire",
		maxRetryBackoff: 30 * time.Second,
	}
}

// mlResponse mirrors the classifier service's JSON body.
type mlResponse struct {
	Detected   bool    `json:"detected"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	BBox       []int   `json:"bbox"`
	Method     string  `json:"method"`
}

// Classify sends the frame as a JPEG and returns the classifier score.
func (c *MLClient) Classify(ctx context.Context, frame *models.RawFrame) (*Classification, error) {
	if !c.shouldAttempt() {
		return nil, fmt.Errorf("ML classifier in backoff period after consecutive failures")
	}

	jpeg, err := EncodeJPEG(frame, c.cfg.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(jpeg); err != nil {
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("ML classifier call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.recordFailure()
		return nil, fmt.Errorf("ML classifier returned status %d", resp.StatusCode)
	}

	var parsed mlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	c.recordSuccess()

	result := &Classification{
		Detected:   parsed.Detected,
		FireType:   models.FireTypeFire,
		Confidence: parsed.Confidence,
	}
	if parsed.Type == "smoke" {
		result.FireType = models.FireTypeSmoke
	}
	if len(parsed.BBox) == 4 {
		result.BBox = &models.BBox{
			X1: parsed.BBox[0], Y1: parsed.BBox[1],
			X2: parsed.BBox[2], Y2: parsed.BBox[3],
		}
	}
	return result, nil
}

// shouldAttempt gates calls through exponential backoff: 1s, 2s, 4s,
// 8s, 16s, 30s (max) after consecutive failures.
func (c *MLClient) shouldAttempt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consecutiveFails == 0 {
		return true
	}

	backoff := time.Duration(1<<uint(c.consecutiveFails-1)) * time.Second
	if backoff > c.maxRetryBackoff {
		backoff = c.maxRetryBackoff
	}
	return time.Since(c.lastFailTime) >= backoff
}

func (c *MLClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFails++
	c.lastFailTime = time.Now()

	if c.consecutiveFails <= 5 {
		log.Warn().
			Int("consecutive_fails", c.consecutiveFails).
			Msg("ML classifier failure recorded")
	}
}

func (c *MLClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consecutiveFails > 0 {
		log.Info().Msg("ML classifier recovered")
	}
	c.consecutiveFails = 0
}
