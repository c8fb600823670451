package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"firewatch-worker-go/internal/models"
	"firewatch-worker-go/internal/services/presence"
)

type PresenceHandler struct {
	presence *presence.Service
}

func NewPresenceHandler(presenceSvc *presence.Service) *PresenceHandler {
	return &PresenceHandler{presence: presenceSvc}
}

// BuildingOccupancyResponse summarizes occupancy across all floors
type BuildingOccupancyResponse struct {
	TotalPeople int                        `json:"total_people"`
	Floors      []models.OccupancySnapshot `json:"floors"`
}

// GetFloorOccupancy returns who is currently on a floor
// @Summary Get floor occupancy
// @Description Get the list of employees currently seen on a floor
// @Tags presence
// @Param floor_id path int true "Floor ID"
// @Success 200 {object} models.OccupancySnapshot
// @Failure 400 {object} ErrorResponse
// @Router /presence/floors/{floor_id} [get]
func (h *PresenceHandler) GetFloorOccupancy(c *gin.Context) {
	floorID, err := strconv.Atoi(c.Param("floor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "floor_id must be an integer"})
		return
	}

	c.JSON(http.StatusOK, h.presence.Occupancy(floorID))
}

// GetBuildingOccupancy returns occupancy for every tracked floor
// @Summary Get building occupancy
// @Description Get current occupancy for all floors with tracked employees
// @Tags presence
// @Success 200 {object} BuildingOccupancyResponse
// @Router /presence [get]
func (h *PresenceHandler) GetBuildingOccupancy(c *gin.Context) {
	floors := h.presence.Floors()

	resp := BuildingOccupancyResponse{
		Floors: make([]models.OccupancySnapshot, 0, len(floors)),
	}
	for _, floorID := range floors {
		snapshot := h.presence.Occupancy(floorID)
		if snapshot.PeopleCount == 0 {
			continue
		}
		resp.Floors = append(resp.Floors, snapshot)
		resp.TotalPeople += snapshot.PeopleCount
	}

	c.JSON(http.StatusOK, resp)
}
