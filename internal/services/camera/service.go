package camera

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/logging"
	"firewatch-worker-go/internal/models"
)

// FaceRecognizer identifies employees on a frame.
type FaceRecognizer interface {
	Recognize(ctx context.Context, frame *models.RawFrame) ([]models.PresenceEvent, error)
}

// FireScanner scores a frame for fire or smoke.
type FireScanner interface {
	Detect(ctx context.Context, frame *models.RawFrame) *models.FireEvent
}

// PresenceIngestor consumes recognized-employee events.
type PresenceIngestor interface {
	Ingest(event models.PresenceEvent)
}

// AlertHandler consumes fire events.
type AlertHandler interface {
	Handle(ctx context.Context, event models.FireEvent) (*models.Alert, error)
}

// Manager owns all camera lifecycles and routes their detections into
// the presence tracker and the alerting service.
type Manager struct {
	cfg *config.Config

	faces    FaceRecognizer
	fire     FireScanner
	presence PresenceIngestor
	alerts   AlertHandler

	lifecycles map[int]*CameraLifecycle
	mutex      sync.RWMutex

	// newSource builds the frame source for each lifecycle start.
	newSource func(cfg *config.Config) frameSource

	log zerolog.Logger

	httpClient *http.Client
}

// NewManager creates a camera manager wired to the detection services.
func NewManager(cfg *config.Config, faces FaceRecognizer, fire FireScanner, presence PresenceIngestor, alerts AlertHandler) *Manager {
	cm := &Manager{
		cfg:        cfg,
		faces:      faces,
		fire:       fire,
		presence:   presence,
		alerts:     alerts,
		lifecycles: make(map[int]*CameraLifecycle),
		newSource:  func(cfg *config.Config) frameSource { return NewStreamCapture(cfg) },
		httpClient: &http.Client{Timeout: cfg.BackendTimeout},
		log:        logging.NewServiceLogger(cfg, "camera_manager"),
	}

	cm.log.Info().
		Int("max_cameras", cfg.MaxCameras).
		Int("target_fps", cfg.TargetFPS).
		Msg("Camera manager initialized")

	return cm
}

// StartCamera registers a camera and starts its pipeline. Restarting an
// inactive camera with new parameters is allowed; an active one is not.
func (cm *Manager) StartCamera(req *models.CameraRequest) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if lc, exists := cm.lifecycles[req.CameraID]; exists {
		if lc.getState() != StateStopped {
			return fmt.Errorf("camera %d is already active", req.CameraID)
		}
		delete(cm.lifecycles, req.CameraID)
	}

	if len(cm.lifecycles) >= cm.cfg.MaxCameras {
		return fmt.Errorf("maximum number of cameras (%d) reached", cm.cfg.MaxCameras)
	}

	faceInterval := cm.cfg.FaceSampleInterval
	if req.FaceSampleInterval != nil {
		faceInterval = *req.FaceSampleInterval
	}
	fireInterval := cm.cfg.FireSampleInterval
	if req.FireSampleInterval != nil {
		fireInterval = *req.FireSampleInterval
	}

	cam := &models.Camera{
		ID:                 req.CameraID,
		Name:               req.Name,
		StreamURL:          req.StreamURL,
		FloorID:            req.FloorID,
		Room:               req.Room,
		CreatedAt:          time.Now(),
		FaceSampleInterval: faceInterval,
		FireSampleInterval: fireInterval,
		FPSWindowSize:      30,
	}

	lc := NewCameraLifecycle(cam, cm)
	if err := lc.Start(); err != nil {
		return err
	}
	cm.lifecycles[req.CameraID] = lc

	cm.log.Info().
		Int("camera_id", req.CameraID).
		Str("stream_url", req.StreamURL).
		Int("floor_id", req.FloorID).
		Str("room", req.Room).
		Int("face_sample_interval", faceInterval).
		Int("fire_sample_interval", fireInterval).
		Msg("Camera started")

	return nil
}

// StopCamera stops a camera and removes it from the manager.
func (cm *Manager) StopCamera(cameraID int) error {
	cm.mutex.Lock()
	lc, exists := cm.lifecycles[cameraID]
	if exists {
		delete(cm.lifecycles, cameraID)
	}
	cm.mutex.Unlock()

	if !exists {
		return fmt.Errorf("camera %d not found", cameraID)
	}

	return lc.Stop()
}

// RestartCamera restarts a camera in place.
func (cm *Manager) RestartCamera(cameraID int) error {
	cm.mutex.RLock()
	lc, exists := cm.lifecycles[cameraID]
	cm.mutex.RUnlock()

	if !exists {
		return fmt.Errorf("camera %d not found", cameraID)
	}

	return lc.Restart()
}

// GetCamera returns camera information
func (cm *Manager) GetCamera(cameraID int) (*models.CameraResponse, error) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	lc, exists := cm.lifecycles[cameraID]
	if !exists {
		return nil, fmt.Errorf("camera %d not found", cameraID)
	}

	return cameraResponse(lc), nil
}

// ListCameras returns all cameras
func (cm *Manager) ListCameras() []*models.CameraResponse {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	cameras := make([]*models.CameraResponse, 0, len(cm.lifecycles))
	for _, lc := range cm.lifecycles {
		cameras = append(cameras, cameraResponse(lc))
	}

	return cameras
}

// LatestFrame returns the freshest frame sampled for a camera.
func (cm *Manager) LatestFrame(cameraID int) (*models.RawFrame, error) {
	cm.mutex.RLock()
	lc, exists := cm.lifecycles[cameraID]
	cm.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("camera %d not found", cameraID)
	}

	frame := lc.LatestFrame()
	if frame == nil {
		return nil, fmt.Errorf("camera %d has no frame yet", cameraID)
	}
	return frame, nil
}

// GetStats returns active and total camera counts.
func (cm *Manager) GetStats() (int, int) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	active := 0
	for _, lc := range cm.lifecycles {
		if lc.camera.Active() {
			active++
		}
	}

	return active, len(cm.lifecycles)
}

// LoadConfiguredCameras fetches camera definitions from the backend and
// starts the active ones. When the backend is unreachable it falls back
// to the local config file, so the worker still protects the building
// during a backend outage.
func (cm *Manager) LoadConfiguredCameras(ctx context.Context) error {
	configs, err := cm.fetchBackendCameras(ctx)
	if err != nil {
		cm.log.Warn().
			Err(err).
			Str("fallback_file", cm.cfg.CameraConfigFile).
			Msg("Backend camera config unavailable, trying local file")

		configs, err = cm.loadLocalCameras()
		if err != nil {
			return fmt.Errorf("no camera configuration available: %w", err)
		}
	}

	started := 0
	for _, cc := range configs {
		if !cc.IsActive {
			continue
		}
		req := &models.CameraRequest{
			CameraID:  cc.ID,
			Name:      cc.Name,
			StreamURL: cc.StreamURL,
			FloorID:   cc.FloorID,
			Room:      cc.Room,
		}
		if err := cm.StartCamera(req); err != nil {
			cm.log.Error().
				Err(err).
				Int("camera_id", cc.ID).
				Msg("Failed to start configured camera")
			continue
		}
		started++
	}

	cm.log.Info().
		Int("configured", len(configs)).
		Int("started", started).
		Msg("Configured cameras loaded")

	return nil
}

// fetchBackendCameras pulls camera definitions from the persistence API.
func (cm *Manager) fetchBackendCameras(ctx context.Context) ([]models.CameraConfig, error) {
	if cm.cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend URL not configured")
	}

	url := cm.cfg.BackendURL + "/cameras"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create camera config request: %w", err)
	}

	resp, err := cm.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch camera config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("camera config endpoint returned status %d", resp.StatusCode)
	}

	var configs []models.CameraConfig
	if err := json.NewDecoder(resp.Body).Decode(&configs); err != nil {
		return nil, fmt.Errorf("decode camera config: %w", err)
	}

	cm.log.Info().
		Int("cameras", len(configs)).
		Str("source", url).
		Msg("Camera configuration fetched from backend")

	return configs, nil
}

// loadLocalCameras reads the fallback camera definition file.
func (cm *Manager) loadLocalCameras() ([]models.CameraConfig, error) {
	data, err := os.ReadFile(cm.cfg.CameraConfigFile)
	if err != nil {
		return nil, fmt.Errorf("read camera config file: %w", err)
	}

	var configs []models.CameraConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("parse camera config file: %w", err)
	}

	cm.log.Info().
		Int("cameras", len(configs)).
		Str("source", cm.cfg.CameraConfigFile).
		Msg("Camera configuration loaded from local file")

	return configs, nil
}

// Shutdown stops all cameras.
func (cm *Manager) Shutdown(ctx context.Context) error {
	cm.log.Info().Msg("Shutting down camera manager")

	cm.mutex.Lock()
	lifecycles := make([]*CameraLifecycle, 0, len(cm.lifecycles))
	for _, lc := range cm.lifecycles {
		lifecycles = append(lifecycles, lc)
	}
	cm.lifecycles = make(map[int]*CameraLifecycle)
	cm.mutex.Unlock()

	var wg sync.WaitGroup
	for _, lc := range lifecycles {
		wg.Add(1)
		go func(lc *CameraLifecycle) {
			defer wg.Done()
			if err := lc.Stop(); err != nil {
				cm.log.Warn().
					Err(err).
					Int("camera_id", lc.camera.ID).
					Msg("Camera stop during shutdown failed")
			}
		}(lc)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		cm.log.Info().Msg("All cameras stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("camera manager shutdown timed out: %w", ctx.Err())
	}
}

// cameraResponse builds the API view of a camera from a stats snapshot,
// so the capture goroutine can keep writing while handlers read.
func cameraResponse(lc *CameraLifecycle) *models.CameraResponse {
	cam := lc.camera
	stats := cam.Stats()
	return &models.CameraResponse{
		CameraID:           cam.ID,
		Name:               cam.Name,
		StreamURL:          cam.StreamURL,
		FloorID:            cam.FloorID,
		Room:               cam.Room,
		IsActive:           stats.IsActive,
		Status:             stats.Status,
		CreatedAt:          cam.CreatedAt,
		LastFrameTime:      stats.LastFrameTime,
		FrameCount:         stats.FrameCount,
		SkippedFrames:      stats.SkippedFrames,
		ErrorCount:         stats.ErrorCount,
		FPS:                stats.FPS,
		FaceSampleInterval: cam.FaceSampleInterval,
		FireSampleInterval: cam.FireSampleInterval,
		LastFireMethod:     stats.LastFireMethod,
		LastFireError:      stats.LastFireError,
		LastFaceError:      stats.LastFaceError,
		FireEventCount:     stats.FireEventCount,
		FaceMatchCount:     stats.FaceMatchCount,
	}
}
