package camera

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/models"
)

// CameraState represents the atomic state of a camera
type CameraState int32

const (
	StateStopped CameraState = iota
	StateRunning
	StateStopping
)

func (s CameraState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// CameraLifecycle manages a single camera with isolated resources:
// one capture goroutine plus one worker per detector queue.
type CameraLifecycle struct {
	camera *models.Camera
	cm     *Manager

	// State management
	state   int32
	running int32

	// Context for lifecycle
	ctx    context.Context
	cancel context.CancelFunc

	// Shutdown synchronization
	shutdownDone chan struct{}

	// Per-camera capture pipeline
	fanout        *FrameFanout
	streamCapture frameSource

	// Latest captured frame for the snapshot endpoint
	latestMu    sync.RWMutex
	latestFrame *models.RawFrame

	// Channel management
	mu sync.RWMutex

	// Cleanup coordination
	cleanupOnce sync.Once
}

// NewCameraLifecycle creates a new camera lifecycle manager
func NewCameraLifecycle(camera *models.Camera, cm *Manager) *CameraLifecycle {
	cl := &CameraLifecycle{
		camera: camera,
		cm:     cm,
	}

	cl.setState(StateStopped)
	cl.createChannels()

	return cl
}

// setState atomically sets the camera state
func (cl *CameraLifecycle) setState(state CameraState) {
	atomic.StoreInt32(&cl.state, int32(state))
}

// getState atomically gets the camera state
func (cl *CameraLifecycle) getState() CameraState {
	return CameraState(atomic.LoadInt32(&cl.state))
}

// isRunning checks if camera is running
func (cl *CameraLifecycle) isRunning() bool {
	return atomic.LoadInt32(&cl.running) == 1
}

// createChannels creates the detector queues for the camera
func (cl *CameraLifecycle) createChannels() {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.camera.FaceFrames = make(chan *models.RawFrame, cl.cm.cfg.FaceQueueSize)
	cl.camera.FireFrames = make(chan *models.RawFrame, cl.cm.cfg.FireQueueSize)
	cl.camera.StopChannel = make(chan struct{})
}

// Start starts the camera
func (cl *CameraLifecycle) Start() error {
	if !atomic.CompareAndSwapInt32(&cl.state, int32(StateStopped), int32(StateRunning)) {
		return fmt.Errorf("camera %d cannot start from state %s", cl.camera.ID, cl.getState())
	}

	log.Info().
		Int("camera_id", cl.camera.ID).
		Int("floor_id", cl.camera.FloorID).
		Msg("Starting camera")

	// Create fresh context
	cl.ctx, cl.cancel = context.WithCancel(context.Background())
	atomic.StoreInt32(&cl.running, 1)

	cl.shutdownDone = make(chan struct{})
	cl.cleanupOnce = sync.Once{}

	cl.camera.ResetStats()

	cl.createChannels()
	cl.fanout = NewFrameFanout(cl.camera)
	cl.streamCapture = cl.cm.newSource(cl.cm.cfg)

	go cl.runCamera()

	log.Info().
		Int("camera_id", cl.camera.ID).
		Msg("Camera started successfully")

	return nil
}

// Stop stops the camera
func (cl *CameraLifecycle) Stop() error {
	if !atomic.CompareAndSwapInt32(&cl.state, int32(StateRunning), int32(StateStopping)) {
		return fmt.Errorf("camera %d cannot stop from state %s", cl.camera.ID, cl.getState())
	}

	log.Info().
		Int("camera_id", cl.camera.ID).
		Msg("Stopping camera")

	atomic.StoreInt32(&cl.running, 0)

	if cl.cancel != nil {
		cl.cancel()
	}

	func() {
		defer func() { _ = recover() }()
		if cl.camera.StopChannel != nil {
			close(cl.camera.StopChannel)
		}
	}()

	// Wait for shutdown
	select {
	case <-cl.shutdownDone:
		log.Debug().Int("camera_id", cl.camera.ID).Msg("Shutdown confirmed")
	case <-time.After(5 * time.Second):
		log.Warn().Int("camera_id", cl.camera.ID).Msg("Shutdown timeout")
	}

	cl.cleanup()
	cl.camera.SetActive(false)
	cl.camera.SetStatus(models.CameraStatusStopped)
	cl.setState(StateStopped)

	log.Info().
		Int("camera_id", cl.camera.ID).
		Msg("Camera stopped successfully")

	return nil
}

// Restart restarts the camera
func (cl *CameraLifecycle) Restart() error {
	log.Info().
		Int("camera_id", cl.camera.ID).
		Msg("Restarting camera")

	_ = cl.Stop()
	time.Sleep(300 * time.Millisecond)
	return cl.Start()
}

// LatestFrame returns the most recent captured frame, or nil when none
// has been captured yet.
func (cl *CameraLifecycle) LatestFrame() *models.RawFrame {
	cl.latestMu.RLock()
	defer cl.latestMu.RUnlock()
	return cl.latestFrame
}

func (cl *CameraLifecycle) storeLatestFrame(frame *models.RawFrame) {
	cl.latestMu.Lock()
	cl.latestFrame = frame
	cl.latestMu.Unlock()
}

// runCamera owns the capture loop and restarts it with jittered backoff
// after stream failures. The detector workers run for the whole camera
// lifetime; only the capture handle is reopened. After
// MaxConsecutiveErrors failed capture runs the camera halts offline and
// stays down until an explicit Start.
func (cl *CameraLifecycle) runCamera() {
	defer func() {
		func() {
			defer func() { _ = recover() }()
			close(cl.shutdownDone)
		}()

		if r := recover(); r != nil {
			log.Error().
				Int("camera_id", cl.camera.ID).
				Interface("panic", r).
				Msg("Camera panic recovered")
			_ = cl.Stop()
		}
	}()

	log.Debug().
		Int("camera_id", cl.camera.ID).
		Msg("Camera capture and detection started")

	go cl.runFaceWorker()
	go cl.runFireWorker()

	consecutiveFailures := 0

	for cl.isRunning() {
		select {
		case <-cl.ctx.Done():
			log.Info().
				Int("camera_id", cl.camera.ID).
				Msg("Camera context cancelled")
			return
		default:
			err := cl.streamCapture.Run(cl.ctx, cl.camera, cl.fanout)
			if err == nil {
				// Clean return means a stop was requested.
				return
			}

			if !cl.isRunning() {
				return
			}

			consecutiveFailures++
			cl.camera.RecordCaptureError()
			cl.camera.SetStatus(models.CameraStatusOffline)

			if consecutiveFailures >= cl.cm.cfg.MaxConsecutiveErrors {
				log.Error().
					Err(err).
					Int("camera_id", cl.camera.ID).
					Int("consecutive_failures", consecutiveFailures).
					Msg("Reconnect attempts exhausted, halting capture")
				cl.halt()
				return
			}

			delay := cl.streamCapture.CalculateBackoffDelay(consecutiveFailures)
			log.Error().
				Err(err).
				Int("camera_id", cl.camera.ID).
				Int("consecutive_failures", consecutiveFailures).
				Dur("retry_in", delay).
				Msg("Video capture failed, retrying")

			select {
			case <-cl.ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}
	}
}

// halt shuts the pipeline down from inside runCamera after the
// reconnect budget is spent. The camera keeps its offline status so
// operators can see why it stopped, and it can be started again.
func (cl *CameraLifecycle) halt() {
	atomic.StoreInt32(&cl.running, 0)
	if cl.cancel != nil {
		cl.cancel()
	}
	cl.cleanup()
	cl.camera.SetActive(false)

	// A concurrent Stop owns the transition out of StateStopping, so
	// only flip the state when no stop is in flight.
	atomic.CompareAndSwapInt32(&cl.state, int32(StateRunning), int32(StateStopped))
}

// runFaceWorker drains the face queue and feeds recognized employees
// into the presence tracker.
func (cl *CameraLifecycle) runFaceWorker() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("camera_id", cl.camera.ID).
				Interface("panic", r).
				Msg("Face worker panic recovered")
		}
	}()

	for cl.isRunning() {
		select {
		case <-cl.ctx.Done():
			return
		case frame, ok := <-cl.camera.FaceFrames:
			if !ok {
				return
			}
			cl.processFaceFrame(cl.latestOnQueue(frame, cl.camera.FaceFrames))
		case <-time.After(1 * time.Second):
			continue
		}
	}
}

// runFireWorker drains the fire queue and routes detections into the
// alerting pipeline.
func (cl *CameraLifecycle) runFireWorker() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("camera_id", cl.camera.ID).
				Interface("panic", r).
				Msg("Fire worker panic recovered")
		}
	}()

	for cl.isRunning() {
		select {
		case <-cl.ctx.Done():
			return
		case frame, ok := <-cl.camera.FireFrames:
			if !ok {
				return
			}
			cl.processFireFrame(cl.latestOnQueue(frame, cl.camera.FireFrames))
		case <-time.After(1 * time.Second):
			continue
		}
	}
}

// latestOnQueue drains the queue to get the freshest frame available
// right now. The detectors are slower than capture, so stale samples
// are worthless.
func (cl *CameraLifecycle) latestOnQueue(frame *models.RawFrame, queue chan *models.RawFrame) *models.RawFrame {
	latest := frame
	drained := 0

GetLatest:
	for {
		select {
		case newer, ok := <-queue:
			if !ok {
				break GetLatest
			}
			latest = newer
			drained++
		default:
			break GetLatest
		}
	}

	if drained > 0 {
		log.Debug().
			Int("camera_id", cl.camera.ID).
			Int("skipped_old_frames", drained).
			Int64("latest_frame_id", latest.FrameID).
			Msg("Processing latest available frame")
	}

	return latest
}

// processFaceFrame runs face recognition on one frame and ingests the
// resulting presence events.
func (cl *CameraLifecycle) processFaceFrame(frame *models.RawFrame) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("camera_id", cl.camera.ID).
				Interface("panic", r).
				Msg("Face frame panic recovered")
		}
	}()

	if frame == nil {
		return
	}
	cl.storeLatestFrame(frame)

	ctx, cancel := context.WithTimeout(cl.ctx, cl.cm.cfg.FaceTimeout)
	defer cancel()

	events, err := cl.cm.faces.Recognize(ctx, frame)
	if err != nil {
		cl.camera.RecordFaceError(err.Error())
		log.Debug().
			Err(err).
			Int("camera_id", cl.camera.ID).
			Int64("frame_id", frame.FrameID).
			Msg("Face recognition failed")
		return
	}

	cl.camera.RecordFaceMatches(len(events))

	for _, event := range events {
		cl.cm.presence.Ingest(event)
	}
}

// processFireFrame runs fire detection on one frame and hands any
// event to the alerting service.
func (cl *CameraLifecycle) processFireFrame(frame *models.RawFrame) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("camera_id", cl.camera.ID).
				Interface("panic", r).
				Msg("Fire frame panic recovered")
		}
	}()

	if frame == nil {
		return
	}
	cl.storeLatestFrame(frame)

	event := cl.cm.fire.Detect(cl.ctx, frame)
	if event == nil {
		return
	}

	cl.camera.RecordFireEvent(string(event.Method))

	if _, err := cl.cm.alerts.Handle(cl.ctx, *event); err != nil {
		cl.camera.RecordFireError(err.Error())
		log.Error().
			Err(err).
			Int("camera_id", cl.camera.ID).
			Float64("confidence", event.Confidence).
			Msg("Alert handling failed")
		return
	}
	cl.camera.RecordFireError("")
}

// cleanup closes the detector queues exactly once.
func (cl *CameraLifecycle) cleanup() {
	cl.cleanupOnce.Do(func() {
		cl.mu.Lock()
		defer cl.mu.Unlock()

		func() {
			defer func() { _ = recover() }()
			if cl.camera.FaceFrames != nil {
				close(cl.camera.FaceFrames)
			}
		}()

		func() {
			defer func() { _ = recover() }()
			if cl.camera.FireFrames != nil {
				close(cl.camera.FireFrames)
			}
		}()
	})
}
