package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/logging"
	"firewatch-worker-go/internal/models"
	"firewatch-worker-go/internal/services/camera"
	"firewatch-worker-go/internal/services/detect"
)

type CameraHandler struct {
	cfg           *config.Config
	cameraManager *camera.Manager
}

func NewCameraHandler(cfg *config.Config, cameraManager *camera.Manager) *CameraHandler {
	return &CameraHandler{
		cfg:           cfg,
		cameraManager: cameraManager,
	}
}

// StartCamera starts a camera pipeline
// @Summary Start a camera
// @Description Start capturing from a camera and run fire and presence detection on it
// @Tags cameras
// @Accept json
// @Produce json
// @Param request body models.CameraRequest true "Camera configuration"
// @Success 200 {object} models.CameraResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cameras [post]
func (h *CameraHandler) StartCamera(c *gin.Context) {
	var req models.CameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logging.Error(c).Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cameraManager.StartCamera(&req); err != nil {
		logging.Error(c).Err(err).Int("camera_id", req.CameraID).Msg("Failed to start camera")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.cameraManager.GetCamera(req.CameraID)
	if err != nil {
		logging.Error(c).Err(err).Int("camera_id", req.CameraID).Msg("Failed to get camera details")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Camera started but failed to get details"})
		return
	}

	logging.Info(c).
		Int("camera_id", req.CameraID).
		Str("stream_url", req.StreamURL).
		Int("floor_id", req.FloorID).
		Msg("Camera started successfully")

	c.JSON(http.StatusOK, resp)
}

// StopCamera stops a camera pipeline
// @Summary Stop a camera
// @Description Stop capturing and detection for a camera
// @Tags cameras
// @Param camera_id path int true "Camera ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cameras/{camera_id}/stop [post]
func (h *CameraHandler) StopCamera(c *gin.Context) {
	cameraID, ok := cameraIDParam(c)
	if !ok {
		return
	}

	if err := h.cameraManager.StopCamera(cameraID); err != nil {
		logging.Error(c).Err(err).Int("camera_id", cameraID).Msg("Failed to stop camera")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logging.Info(c).Int("camera_id", cameraID).Msg("Camera stopped successfully")
	c.JSON(http.StatusOK, gin.H{"message": "Camera stopped successfully"})
}

// RestartCamera restarts a camera pipeline in place
// @Summary Restart a camera
// @Description Stop and start a camera without removing it
// @Tags cameras
// @Param camera_id path int true "Camera ID"
// @Success 200 {object} models.CameraResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cameras/{camera_id}/restart [post]
func (h *CameraHandler) RestartCamera(c *gin.Context) {
	cameraID, ok := cameraIDParam(c)
	if !ok {
		return
	}

	if err := h.cameraManager.RestartCamera(cameraID); err != nil {
		logging.Error(c).Err(err).Int("camera_id", cameraID).Msg("Failed to restart camera")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.cameraManager.GetCamera(cameraID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Camera restarted but failed to get details"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCamera gets camera details
// @Summary Get camera details
// @Description Get status and statistics of a specific camera
// @Tags cameras
// @Param camera_id path int true "Camera ID"
// @Success 200 {object} models.CameraResponse
// @Failure 404 {object} ErrorResponse
// @Router /cameras/{camera_id} [get]
func (h *CameraHandler) GetCamera(c *gin.Context) {
	cameraID, ok := cameraIDParam(c)
	if !ok {
		return
	}

	resp, err := h.cameraManager.GetCamera(cameraID)
	if err != nil {
		logging.Error(c).Err(err).Int("camera_id", cameraID).Msg("Camera not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListCameras lists all cameras
// @Summary List all cameras
// @Description Get list of all cameras with their status and statistics
// @Tags cameras
// @Success 200 {array} models.CameraResponse
// @Router /cameras [get]
func (h *CameraHandler) ListCameras(c *gin.Context) {
	cameras := h.cameraManager.ListCameras()
	c.JSON(http.StatusOK, gin.H{
		"cameras": cameras,
		"count":   len(cameras),
	})
}

// GetLatestFrame returns the freshest sampled frame as a JPEG
// @Summary Get latest camera frame
// @Description Get the most recently sampled frame for a camera as a JPEG snapshot
// @Tags cameras
// @Produce jpeg
// @Param camera_id path int true "Camera ID"
// @Success 200 {string} binary "JPEG image"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cameras/{camera_id}/frame [get]
func (h *CameraHandler) GetLatestFrame(c *gin.Context) {
	cameraID, ok := cameraIDParam(c)
	if !ok {
		return
	}

	frame, err := h.cameraManager.LatestFrame(cameraID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	jpeg, err := detect.EncodeJPEG(frame, h.cfg.JPEGQuality)
	if err != nil {
		logging.Error(c).Err(err).Int("camera_id", cameraID).Msg("Failed to encode snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode frame"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", jpeg)
}

// cameraIDParam parses the camera_id path parameter and writes a 400
// response when it is not a valid integer.
func cameraIDParam(c *gin.Context) (int, bool) {
	cameraID, err := strconv.Atoi(c.Param("camera_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "camera_id must be an integer"})
		return 0, false
	}
	return cameraID, true
}
