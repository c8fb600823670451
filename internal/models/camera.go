package models

import (
	"sync"
	"time"
)

// CameraStatus represents the camera operational status
type CameraStatus string

const (
	CameraStatusStarting CameraStatus = "starting"
	CameraStatusOnline   CameraStatus = "online"
	CameraStatusOffline  CameraStatus = "offline"
	CameraStatusStopped  CameraStatus = "stopped"
)

// String returns the string representation of CameraStatus
func (cs CameraStatus) String() string {
	return string(cs)
}

// Camera represents a single camera with its detection pipeline. The
// identity and cadence fields are set once at registration; the mutable
// stats are written by the capture and detector goroutines and read by
// the API handlers, all behind one mutex.
type Camera struct {
	ID        int
	Name      string
	StreamURL string // RTSP URL, or a numeric string for a local device index
	FloorID   int
	Room      string
	CreatedAt time.Time

	// Sampling cadence (frames between detector dispatches)
	FaceSampleInterval int
	FireSampleInterval int

	// FPS calculation window
	FPSWindowSize int

	// Pipeline channels
	FaceFrames chan *RawFrame
	FireFrames chan *RawFrame

	// Control
	StopChannel chan struct{}

	mu               sync.Mutex
	isActive         bool
	status           CameraStatus
	frameCount       int64
	skippedFrames    int64
	errorCount       int64
	lastFrameTime    time.Time
	fps              float64
	recentFrameTimes []time.Time
	lastFireMethod   string
	lastFaceError    string
	lastFireError    string
	fireEventCount   int64
	faceMatchCount   int64
}

// CameraStats is a consistent snapshot of a camera's mutable state.
type CameraStats struct {
	IsActive       bool
	Status         CameraStatus
	FrameCount     int64
	SkippedFrames  int64
	ErrorCount     int64
	LastFrameTime  time.Time
	FPS            float64
	LastFireMethod string
	LastFaceError  string
	LastFireError  string
	FireEventCount int64
	FaceMatchCount int64
}

// Stats returns a snapshot of the camera's mutable state.
func (c *Camera) Stats() CameraStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CameraStats{
		IsActive:       c.isActive,
		Status:         c.status,
		FrameCount:     c.frameCount,
		SkippedFrames:  c.skippedFrames,
		ErrorCount:     c.errorCount,
		LastFrameTime:  c.lastFrameTime,
		FPS:            c.fps,
		LastFireMethod: c.lastFireMethod,
		LastFaceError:  c.lastFaceError,
		LastFireError:  c.lastFireError,
		FireEventCount: c.fireEventCount,
		FaceMatchCount: c.faceMatchCount,
	}
}

// ResetStats clears all counters and error state for a fresh start.
func (c *Camera) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isActive = true
	c.status = CameraStatusStarting
	c.frameCount = 0
	c.skippedFrames = 0
	c.errorCount = 0
	c.lastFrameTime = time.Time{}
	c.fps = 0
	c.recentFrameTimes = make([]time.Time, 0, c.FPSWindowSize)
	c.lastFireMethod = ""
	c.lastFaceError = ""
	c.lastFireError = ""
	c.fireEventCount = 0
	c.faceMatchCount = 0
}

// SetActive marks the camera active or inactive.
func (c *Camera) SetActive(active bool) {
	c.mu.Lock()
	c.isActive = active
	c.mu.Unlock()
}

// Active reports whether the camera pipeline is active.
func (c *Camera) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isActive
}

// SetStatus updates the operational status.
func (c *Camera) SetStatus(status CameraStatus) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// CurrentStatus returns the operational status.
func (c *Camera) CurrentStatus() CameraStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// RecordFrame counts one captured frame.
func (c *Camera) RecordFrame(now time.Time) {
	c.mu.Lock()
	c.frameCount++
	c.lastFrameTime = now
	c.mu.Unlock()
}

// RecordSkippedFrame counts one frame evicted before detection.
func (c *Camera) RecordSkippedFrame() {
	c.mu.Lock()
	c.skippedFrames++
	c.mu.Unlock()
}

// RecordCaptureError counts one capture failure.
func (c *Camera) RecordCaptureError() {
	c.mu.Lock()
	c.errorCount++
	c.mu.Unlock()
}

// UpdateFPS advances the rolling FPS window and returns the current
// estimate.
func (c *Camera) UpdateFPS(now time.Time) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frameCount < 2 {
		return 0
	}

	c.recentFrameTimes = append(c.recentFrameTimes, now)
	if len(c.recentFrameTimes) > c.FPSWindowSize {
		c.recentFrameTimes = c.recentFrameTimes[1:]
	}
	if len(c.recentFrameTimes) < 2 {
		return 0
	}

	timeSpan := c.recentFrameTimes[len(c.recentFrameTimes)-1].Sub(c.recentFrameTimes[0]).Seconds()
	if timeSpan > 0 {
		c.fps = float64(len(c.recentFrameTimes)-1) / timeSpan
	}
	return c.fps
}

// RecordFaceError notes a failed face recognition call.
func (c *Camera) RecordFaceError(msg string) {
	c.mu.Lock()
	c.lastFaceError = msg
	c.mu.Unlock()
}

// RecordFaceMatches counts identified employees and clears the error
// state.
func (c *Camera) RecordFaceMatches(n int) {
	c.mu.Lock()
	c.lastFaceError = ""
	c.faceMatchCount += int64(n)
	c.mu.Unlock()
}

// RecordFireEvent counts one fire detection and notes which path
// produced it.
func (c *Camera) RecordFireEvent(method string) {
	c.mu.Lock()
	c.lastFireMethod = method
	c.fireEventCount++
	c.mu.Unlock()
}

// RecordFireError notes an alert dispatch failure; an empty message
// clears it.
func (c *Camera) RecordFireError(msg string) {
	c.mu.Lock()
	c.lastFireError = msg
	c.mu.Unlock()
}

// RawFrame represents a frame from OpenCV
type RawFrame struct {
	CameraID  int
	FloorID   int
	Room      string
	Data      []byte // BGR24 pixel data
	Timestamp time.Time
	FrameID   int64
	Width     int
	Height    int
}

// Empty reports whether the frame carries no usable pixel data.
func (f *RawFrame) Empty() bool {
	return f == nil || len(f.Data) == 0 || f.Width <= 0 || f.Height <= 0
}

// CameraConfig is the camera definition consumed from the backend API.
type CameraConfig struct {
	ID        int    `json:"camera_id"`
	Name      string `json:"name"`
	StreamURL string `json:"stream_url"`
	FloorID   int    `json:"floor_id"`
	Room      string `json:"room"`
	IsActive  bool   `json:"is_active"`
}

// CameraRequest for API
type CameraRequest struct {
	CameraID           int    `json:"camera_id" binding:"required"`
	Name               string `json:"name"`
	StreamURL          string `json:"stream_url" binding:"required"`
	FloorID            int    `json:"floor_id" binding:"required"`
	Room               string `json:"room"`
	FaceSampleInterval *int   `json:"face_sample_interval,omitempty"` // Optional, defaults to config
	FireSampleInterval *int   `json:"fire_sample_interval,omitempty"` // Optional, defaults to config
}

// CameraResponse for API
type CameraResponse struct {
	CameraID      int          `json:"camera_id"`
	Name          string       `json:"name"`
	StreamURL     string       `json:"stream_url"`
	FloorID       int          `json:"floor_id"`
	Room          string       `json:"room"`
	IsActive      bool         `json:"is_active"`
	Status        CameraStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	LastFrameTime time.Time    `json:"last_frame_time"`
	FrameCount    int64        `json:"frame_count"`
	SkippedFrames int64        `json:"skipped_frames"`
	ErrorCount    int64        `json:"error_count"`
	FPS           float64      `json:"fps"`

	FaceSampleInterval int    `json:"face_sample_interval"`
	FireSampleInterval int    `json:"fire_sample_interval"`
	LastFireMethod     string `json:"last_fire_method,omitempty"`
	LastFireError      string `json:"last_fire_error,omitempty"`
	LastFaceError      string `json:"last_face_error,omitempty"`
	FireEventCount     int64  `json:"fire_event_count"`
	FaceMatchCount     int64  `json:"face_match_count"`
}
