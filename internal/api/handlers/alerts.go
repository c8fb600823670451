package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/services/alerting"
	"firewatch-worker-go/internal/services/camera"
)

type AlertsHandler struct {
	cfg           *config.Config
	alerting      *alerting.Service
	cameraManager *camera.Manager
}

func NewAlertsHandler(cfg *config.Config, alertingSvc *alerting.Service, cameraManager *camera.Manager) *AlertsHandler {
	return &AlertsHandler{
		cfg:           cfg,
		alerting:      alertingSvc,
		cameraManager: cameraManager,
	}
}

// CooldownStatus reports the remaining alert cooldown for one camera
type CooldownStatus struct {
	CameraID    int    `json:"camera_id"`
	CoolingDown bool   `json:"cooling_down"`
	Remaining   string `json:"remaining"`
}

// GetCooldowns reports alert cooldown state for all cameras
// @Summary Get alert cooldowns
// @Description Show which cameras are currently inside their alert cooldown window
// @Tags alerts
// @Success 200 {object} map[string]interface{}
// @Router /alerts/cooldowns [get]
func (h *AlertsHandler) GetCooldowns(c *gin.Context) {
	cameras := h.cameraManager.ListCameras()

	statuses := make([]CooldownStatus, 0, len(cameras))
	for _, cam := range cameras {
		remaining := h.alerting.CooldownRemaining(cam.CameraID)
		statuses = append(statuses, CooldownStatus{
			CameraID:    cam.CameraID,
			CoolingDown: remaining > 0,
			Remaining:   remaining.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"cooldown": h.cfg.AlertCooldown.String(),
		"cameras":  statuses,
	})
}
