package camera

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

// frameSource reads frames from a camera into its fan-out. The gocv
// backed StreamCapture is the production implementation.
type frameSource interface {
	Run(ctx context.Context, camera *models.Camera, fanout *FrameFanout) error
	CalculateBackoffDelay(attempt int) time.Duration
}

// StreamCapture handles video capture operations
type StreamCapture struct {
	cfg *config.Config
}

// NewStreamCapture creates a new stream capture service
func NewStreamCapture(cfg *config.Config) *StreamCapture {
	return &StreamCapture{
		cfg: cfg,
	}
}

// Run opens the camera stream and reads frames until the context is
// cancelled or too many consecutive read errors occur. Every decoded
// frame goes through the fan-out; the capture handle is always released
// on return.
func (sc *StreamCapture) Run(ctx context.Context, camera *models.Camera, fanout *FrameFanout) error {
	log.Info().
		Int("camera_id", camera.ID).
		Str("stream_url", camera.StreamURL).
		Msg("Opening video capture")

	cap, err := gocv.OpenVideoCapture(camera.StreamURL)
	if err != nil {
		return fmt.Errorf("failed to open stream %s: %w", camera.StreamURL, err)
	}
	defer cap.Close()

	// Minimal buffering keeps latency low on RTSP sources.
	cap.Set(gocv.VideoCaptureBufferSize, 1)
	cap.Set(gocv.VideoCaptureFrameWidth, float64(sc.cfg.CaptureWidth))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(sc.cfg.CaptureHeight))

	if !cap.IsOpened() {
		return fmt.Errorf("video capture is not opened for camera %d", camera.ID)
	}

	log.Info().
		Int("camera_id", camera.ID).
		Float64("actual_fps", cap.Get(gocv.VideoCaptureFPS)).
		Float64("actual_width", cap.Get(gocv.VideoCaptureFrameWidth)).
		Float64("actual_height", cap.Get(gocv.VideoCaptureFrameHeight)).
		Msg("Video capture opened")

	camera.SetStatus(models.CameraStatusOnline)

	frameID := int64(0)
	img := gocv.NewMat()
	defer img.Close()

	consecutiveErrors := 0

	for {
		select {
		case <-ctx.Done():
			log.Info().Int("camera_id", camera.ID).Msg("Stopping video capture, context cancelled")
			return nil
		case <-camera.StopChannel:
			log.Info().Int("camera_id", camera.ID).Msg("Stopping video capture, stop signal")
			return nil
		default:
			ok := cap.Read(&img)

			if !ok || img.Empty() {
				consecutiveErrors++
				log.Warn().
					Int("camera_id", camera.ID).
					Int("consecutive_errors", consecutiveErrors).
					Msg("Failed to read frame from video capture")

				if consecutiveErrors >= sc.cfg.MaxConsecutiveErrors {
					return fmt.Errorf("too many consecutive frame read errors (%d)", consecutiveErrors)
				}

				time.Sleep(100 * time.Millisecond)
				continue
			}

			consecutiveErrors = 0
			frameID++
			camera.RecordFrame(time.Now())

			scaled := gocv.NewMat()
			if img.Cols() != sc.cfg.CaptureWidth || img.Rows() != sc.cfg.CaptureHeight {
				gocv.Resize(img, &scaled, image.Pt(sc.cfg.CaptureWidth, sc.cfg.CaptureHeight), 0, 0, gocv.InterpolationLinear)
			} else {
				scaled = img.Clone()
			}

			frameData := scaled.ToBytes()
			scaled.Close()

			rawFrame := &models.RawFrame{
				CameraID:  camera.ID,
				FloorID:   camera.FloorID,
				Room:      camera.Room,
				Data:      frameData,
				Timestamp: time.Now(),
				FrameID:   frameID,
				Width:     sc.cfg.CaptureWidth,
				Height:    sc.cfg.CaptureHeight,
			}

			fanout.Dispatch(rawFrame)

			camera.UpdateFPS(time.Now())

			// TargetFPS is floored to 1 by config.Load, so the
			// interval is always positive.
			targetInterval := time.Second / time.Duration(sc.cfg.TargetFPS)
			time.Sleep(targetInterval)
		}
	}
}

// CalculateBackoffDelay calculates jittered exponential backoff delay
func (sc *StreamCapture) CalculateBackoffDelay(attempt int) time.Duration {
	// Base delay with exponential backoff
	baseDelay := time.Duration(math.Pow(2, float64(attempt))) * time.Second

	// Clamp to configured min/max
	if baseDelay < sc.cfg.ReconnectBackoffMin {
		baseDelay = sc.cfg.ReconnectBackoffMin
	}
	if baseDelay > sc.cfg.ReconnectBackoffMax {
		baseDelay = sc.cfg.ReconnectBackoffMax
	}

	// Add jitter (random percentage of the delay)
	jitterPct := float64(sc.cfg.ReconnectJitterPct) / 100.0
	jitter := time.Duration(float64(baseDelay) * jitterPct * (rand.Float64()*2 - 1))

	return baseDelay + jitter
}
