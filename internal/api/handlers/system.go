package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"firewatch-worker-go/internal/services"
)

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	container *services.ServiceContainer
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(container *services.ServiceContainer) *SystemHandler {
	return &SystemHandler{container: container}
}

// @Summary Get system stats
// @Description Get system statistics and performance metrics
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	active, total := h.container.CameraManager.GetStats()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"worker_id":      h.container.Config.WorkerID,
			"active_cameras": active,
			"total_cameras":  total,
			"tracked_people": h.container.Presence.Size(),
			"skipped_frames": h.container.FireDetector.SkippedFrames(),
			"memory_mb":      m.Alloc / 1024 / 1024,
			"cpu_cores":      runtime.NumCPU(),
			"goroutines":     runtime.NumGoroutine(),
			"go_version":     runtime.Version(),
		},
		"timestamp": time.Now().Unix(),
	})
}

// @Summary Get debug info
// @Description Get debug information for troubleshooting
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/debug [get]
func (h *SystemHandler) GetDebugInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"debug": gin.H{
			"worker_id":  h.container.Config.WorkerID,
			"endpoints":  []string{"/health", "/cameras", "/presence", "/alerts", "/system"},
			"components": []string{"camera_manager", "fire_detector", "face_adapter", "presence_tracker", "alerting"},
		},
		"timestamp": time.Now().Unix(),
	})
}
