package models

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateFPSRollingWindow(t *testing.T) {
	cam := &Camera{FPSWindowSize: 30}
	cam.ResetStats()
	for i := 0; i < 100; i++ {
		cam.RecordFrame(time.Now())
	}

	// First sample only seeds the window.
	assert.Equal(t, 0.0, cam.UpdateFPS(time.Now()))

	time.Sleep(20 * time.Millisecond)
	assert.Greater(t, cam.UpdateFPS(time.Now()), 0.0)

	// Window never exceeds the configured size.
	for i := 0; i < 50; i++ {
		cam.UpdateFPS(time.Now())
	}
	cam.mu.Lock()
	windowLen := len(cam.recentFrameTimes)
	cam.mu.Unlock()
	assert.LessOrEqual(t, windowLen, cam.FPSWindowSize)
}

func TestUpdateFPSNeedsFrames(t *testing.T) {
	cam := &Camera{FPSWindowSize: 30}
	cam.RecordFrame(time.Now())

	assert.Equal(t, 0.0, cam.UpdateFPS(time.Now()))
}

func TestResetStatsClearsEverything(t *testing.T) {
	cam := &Camera{FPSWindowSize: 30}
	cam.RecordFrame(time.Now())
	cam.RecordSkippedFrame()
	cam.RecordCaptureError()
	cam.RecordFireEvent("ml")
	cam.RecordFireError("delivery failed")
	cam.RecordFaceError("timeout")
	cam.SetStatus(CameraStatusOffline)

	cam.ResetStats()

	stats := cam.Stats()
	assert.True(t, stats.IsActive)
	assert.Equal(t, CameraStatusStarting, stats.Status)
	assert.Zero(t, stats.FrameCount)
	assert.Zero(t, stats.SkippedFrames)
	assert.Zero(t, stats.ErrorCount)
	assert.Zero(t, stats.FireEventCount)
	assert.Empty(t, stats.LastFireMethod)
	assert.Empty(t, stats.LastFireError)
	assert.Empty(t, stats.LastFaceError)
}

func TestRecordFaceMatchesClearsError(t *testing.T) {
	cam := &Camera{}
	cam.RecordFaceError("service unavailable")
	cam.RecordFaceMatches(3)

	stats := cam.Stats()
	assert.Empty(t, stats.LastFaceError)
	assert.Equal(t, int64(3), stats.FaceMatchCount)
}

// Stats snapshots must stay consistent while the capture and detector
// goroutines keep writing. Run with the race detector.
func TestStatsSnapshotDuringConcurrentUpdates(t *testing.T) {
	cam := &Camera{FPSWindowSize: 30}
	cam.ResetStats()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				cam.RecordFrame(time.Now())
				cam.UpdateFPS(time.Now())
				cam.RecordFireEvent("color")
				cam.RecordFaceMatches(1)
				cam.SetStatus(CameraStatusOnline)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		stats := cam.Stats()
		assert.GreaterOrEqual(t, stats.FrameCount, int64(0))
	}

	close(stop)
	wg.Wait()

	stats := cam.Stats()
	// The writer may have been stopped mid-iteration.
	assert.InDelta(t, stats.FireEventCount, stats.FaceMatchCount, 1)
	assert.Equal(t, CameraStatusOnline, stats.Status)
}
