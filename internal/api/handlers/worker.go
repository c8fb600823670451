package handlers

import (
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"firewatch-worker-go/internal/config"
)

type WorkerHandler struct {
	cfg *config.Config
}

func NewWorkerHandler(cfg *config.Config) *WorkerHandler {
	return &WorkerHandler{cfg: cfg}
}

type WorkerDetailResponse struct {
	WorkerID     string       `json:"worker_id"`
	Version      string       `json:"version"`
	Environment  string       `json:"environment"`
	Port         int          `json:"port"`
	StartTime    time.Time    `json:"start_time"`
	Capabilities []string     `json:"capabilities"`
	Config       WorkerConfig `json:"config"`
}

type WorkerConfig struct {
	MaxCameras         int     `json:"max_cameras"`
	TargetFPS          int     `json:"target_fps"`
	FaceSampleInterval int     `json:"face_sample_interval"`
	FireSampleInterval int     `json:"fire_sample_interval"`
	FireThreshold      float64 `json:"fire_confidence_threshold"`
	CriticalThreshold  float64 `json:"fire_critical_threshold"`
	PresenceTimeout    string  `json:"presence_timeout"`
	AlertCooldown      string  `json:"alert_cooldown"`
}

type ShutdownRequest struct {
	Force bool `json:"force,omitempty"`
}

type ShutdownResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

var startTime = time.Now()

// GetInfo godoc
// @Summary Get worker information
// @Description Get detailed information about the worker service
// @Tags worker
// @Accept json
// @Produce json
// @Success 200 {object} WorkerDetailResponse
// @Router /worker/info [get]
func (h *WorkerHandler) GetInfo(c *gin.Context) {
	capabilities := []string{
		"rtsp_streaming",
		"fire_detection",
		"face_presence_tracking",
		"alert_dispatch",
		"multi_camera",
	}

	response := WorkerDetailResponse{
		WorkerID:     h.cfg.WorkerID,
		Version:      h.cfg.Version,
		Environment:  h.cfg.Environment,
		Port:         h.cfg.Port,
		StartTime:    startTime,
		Capabilities: capabilities,
		Config: WorkerConfig{
			MaxCameras:         h.cfg.MaxCameras,
			TargetFPS:          h.cfg.TargetFPS,
			FaceSampleInterval: h.cfg.FaceSampleInterval,
			FireSampleInterval: h.cfg.FireSampleInterval,
			FireThreshold:      h.cfg.FireConfidenceThreshold,
			CriticalThreshold:  h.cfg.FireCriticalThreshold,
			PresenceTimeout:    h.cfg.PresenceTimeout.String(),
			AlertCooldown:      h.cfg.AlertCooldown.String(),
		},
	}

	c.JSON(http.StatusOK, response)
}

// Shutdown godoc
// @Summary Shutdown worker
// @Description Gracefully shutdown the worker service
// @Tags worker
// @Accept json
// @Produce json
// @Param shutdown body ShutdownRequest false "Shutdown options"
// @Success 200 {object} ShutdownResponse
// @Failure 500 {object} ErrorResponse
// @Router /worker/shutdown [post]
func (h *WorkerHandler) Shutdown(c *gin.Context) {
	var req ShutdownRequest
	c.ShouldBindJSON(&req) // Optional body

	response := ShutdownResponse{
		Status:    "shutting_down",
		Message:   "Worker shutdown initiated",
		Timestamp: time.Now(),
	}

	c.JSON(http.StatusOK, response)

	// Initiate shutdown in a goroutine to allow response to be sent
	go func() {
		if req.Force {
			// Force shutdown immediately
			time.Sleep(100 * time.Millisecond) // Allow response to be sent
			os.Exit(0)
		} else {
			// Graceful shutdown
			time.Sleep(100 * time.Millisecond) // Allow response to be sent
			process, _ := os.FindProcess(os.Getpid())
			process.Signal(syscall.SIGTERM)
		}
	}()
}
