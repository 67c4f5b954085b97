package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"xdrive-logistics-api-server/internal/models"
	"xdrive-logistics-api-server/internal/service"
)

type StatusHandler struct {
	Status *service.StatusService
}

// GetStatusHistory returns the job's ordered status-event audit trail.
func (h *StatusHandler) GetStatusHistory(c *gin.Context) {
	events, err := h.Status.History(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

type UpdateStatusPayload struct {
	Status   string           `json:"status" binding:"required"`
	Notes    string           `json:"notes"`
	Location *models.GeoPoint `json:"location"`
}

// UpdateStatus applies one fulfillment transition to a job.
func (h *StatusHandler) UpdateStatus(c *gin.Context) {
	var payload UpdateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, message, err := h.Status.Advance(c.Request.Context(), actorFromContext(c), c.Param("id"), service.StatusUpdate{
		Status:   payload.Status,
		Notes:    payload.Notes,
		Location: payload.Location,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": message, "job": job})
}
