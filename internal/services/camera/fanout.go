package camera

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/models"
)

// FrameFanout decimates the capture stream into the per-detector queues.
// Each detector gets every Nth frame; when a queue is full the oldest
// queued frame is dropped so capture never blocks and the detectors
// always see the freshest sample.
type FrameFanout struct {
	camera *models.Camera

	counter     int64
	droppedFace int64
	droppedFire int64
}

// NewFrameFanout creates a fan-out bound to the camera's detector queues.
func NewFrameFanout(camera *models.Camera) *FrameFanout {
	return &FrameFanout{camera: camera}
}

// Dispatch routes one captured frame. The same frame may go to both
// detectors when their cadences coincide.
func (f *FrameFanout) Dispatch(frame *models.RawFrame) {
	count := atomic.AddInt64(&f.counter, 1)

	if f.camera.FaceSampleInterval > 0 && count%int64(f.camera.FaceSampleInterval) == 0 {
		if !offerFrame(f.camera.FaceFrames, frame) {
			f.camera.RecordSkippedFrame()
			dropped := atomic.AddInt64(&f.droppedFace, 1)
			if dropped%100 == 1 {
				log.Debug().
					Int("camera_id", f.camera.ID).
					Int64("dropped_total", dropped).
					Msg("Face queue full, dropped oldest frame")
			}
		}
	}

	if f.camera.FireSampleInterval > 0 && count%int64(f.camera.FireSampleInterval) == 0 {
		if !offerFrame(f.camera.FireFrames, frame) {
			f.camera.RecordSkippedFrame()
			dropped := atomic.AddInt64(&f.droppedFire, 1)
			if dropped%100 == 1 {
				log.Debug().
					Int("camera_id", f.camera.ID).
					Int64("dropped_total", dropped).
					Msg("Fire queue full, dropped oldest frame")
			}
		}
	}
}

// offerFrame sends without blocking. On a full queue it evicts the
// oldest entry and retries once. Returns false when an eviction
// happened or the frame still could not be queued.
func offerFrame(ch chan *models.RawFrame, frame *models.RawFrame) bool {
	select {
	case ch <- frame:
		return true
	default:
	}

	// Queue full: make room by discarding the stalest frame.
	select {
	case <-ch:
	default:
	}

	select {
	case ch <- frame:
	default:
	}
	return false
}

// Counter returns the number of frames dispatched so far.
func (f *FrameFanout) Counter() int64 {
	return atomic.LoadInt64(&f.counter)
}

// DroppedFace returns frames evicted from the face queue.
func (f *FrameFanout) DroppedFace() int64 {
	return atomic.LoadInt64(&f.droppedFace)
}

// DroppedFire returns frames evicted from the fire queue.
func (f *FrameFanout) DroppedFire() int64 {
	return atomic.LoadInt64(&f.droppedFire)
}
