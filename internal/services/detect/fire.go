package detect

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

// FireDetector runs the primary ML classifier with a bounded timeout and
// falls back to the deterministic color heuristic when the ML path is
// unavailable or times out. The choice is re-evaluated on every call, so
// recovery of the ML service is automatic.
type FireDetector struct {
	cfg       *config.Config
	ml        Classifier
	heuristic func(*models.RawFrame) (*Classification, error)

	skippedFrames int64
}

// NewFireDetector creates a fire detector backed by the ML classifier
// service with the color heuristic as fallback.
func NewFireDetector(cfg *config.Config) *FireDetector {
	return &FireDetector{
		cfg:       cfg,
		ml:        NewMLClient(cfg),
		heuristic: colorClassify,
	}
}

// Detect scores one frame. Returns nil when there is nothing to report:
// empty frame, classifier below threshold, or heuristic miss. It never
// panics and never returns an error for a recoverable condition.
func (d *FireDetector) Detect(ctx context.Context, frame *models.RawFrame) *models.FireEvent {
	if frame.Empty() {
		atomic.AddInt64(&d.skippedFrames, 1)
		return nil
	}

	result, method := d.classify(ctx, frame)
	if result == nil || !result.Detected {
		return nil
	}

	confidence := clamp01(result.Confidence)
	if confidence < d.cfg.FireConfidenceThreshold {
		return nil
	}

	return &models.FireEvent{
		CameraID:   frame.CameraID,
		FloorID:    frame.FloorID,
		Room:       frame.Room,
		Confidence: confidence,
		BBox:       result.BBox,
		FireType:   result.FireType,
		Method:     method,
		DetectedAt: frame.Timestamp,
	}
}

// classify tries the ML classifier first; exactly one of the two paths
// runs per frame.
func (d *FireDetector) classify(ctx context.Context, frame *models.RawFrame) (*Classification, models.DetectionMethod) {
	mlCtx, cancel := context.WithTimeout(ctx, d.cfg.MLTimeout)
	defer cancel()

	result, err := d.ml.Classify(mlCtx, frame)
	if err == nil {
		return result, models.MethodML
	}

	log.Debug().
		Err(err).
		Int("camera_id", frame.CameraID).
		Msg("ML classifier unavailable, using color heuristic")

	result, err = d.heuristic(frame)
	if err != nil {
		// Corrupt frame data: skip it, the next sampled frame proceeds.
		atomic.AddInt64(&d.skippedFrames, 1)
		log.Warn().
			Err(err).
			Int("camera_id", frame.CameraID).
			Int64("frame_id", frame.FrameID).
			Msg("Color heuristic failed, frame skipped")
		return nil, models.MethodColor
	}
	return result, models.MethodColor
}

// SkippedFrames reports how many frames were dropped as empty or corrupt.
func (d *FireDetector) SkippedFrames() int64 {
	return atomic.LoadInt64(&d.skippedFrames)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
