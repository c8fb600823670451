package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"firewatch-worker-go/internal/services"
)

type HealthHandler struct {
	container *services.ServiceContainer
}

func NewHealthHandler(container *services.ServiceContainer) *HealthHandler {
	return &HealthHandler{container: container}
}

type CameraHealth struct {
	CameraID      int     `json:"camera_id"`
	Status        string  `json:"status" example:"online"`
	FPS           float64 `json:"fps"`
	DetectionMode string  `json:"detection_mode,omitempty" example:"ml"`
	LastFireError string  `json:"last_fire_error,omitempty"`
	LastFaceError string  `json:"last_face_error,omitempty"`
}

type HealthResponse struct {
	Status        string         `json:"status" example:"healthy"`
	WorkerID      string         `json:"worker_id" example:"firewatch-1"`
	Timestamp     time.Time      `json:"timestamp"`
	ActiveCameras int            `json:"active_cameras"`
	TotalCameras  int            `json:"total_cameras"`
	TrackedPeople int            `json:"tracked_people"`
	NatsConnected bool           `json:"nats_connected"`
	Cameras       []CameraHealth `json:"cameras"`
}

type WorkerInfoResponse struct {
	WorkerID     string   `json:"worker_id" example:"firewatch-1"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Check worker health including per-camera pipeline state
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	active, total := h.container.CameraManager.GetStats()

	cameras := h.container.CameraManager.ListCameras()
	cameraHealth := make([]CameraHealth, 0, len(cameras))
	for _, cam := range cameras {
		cameraHealth = append(cameraHealth, CameraHealth{
			CameraID:      cam.CameraID,
			Status:        cam.Status.String(),
			FPS:           cam.FPS,
			DetectionMode: cam.LastFireMethod,
			LastFireError: cam.LastFireError,
			LastFaceError: cam.LastFaceError,
		})
	}

	status := "healthy"
	if total > 0 && active == 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:        status,
		WorkerID:      h.container.Config.WorkerID,
		Timestamp:     time.Now(),
		ActiveCameras: active,
		TotalCameras:  total,
		TrackedPeople: h.container.Presence.Size(),
		NatsConnected: h.container.Messaging != nil && h.container.Messaging.IsConnected(),
		Cameras:       cameraHealth,
	})
}

// @Summary Worker information
// @Description Get basic worker information and capabilities
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} WorkerInfoResponse
// @Router / [get]
func (h *HealthHandler) WorkerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, WorkerInfoResponse{
		WorkerID: h.container.Config.WorkerID,
		Status:   "running",
		Version:  h.container.Config.Version,
		Capabilities: []string{
			"rtsp_processing",
			"fire_detection",
			"face_presence_tracking",
			"alert_dispatch",
		},
	})
}
