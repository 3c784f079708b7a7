package handlers

import (
	"errors"
	"net/http"

	"roomhub/internal/models"
	"roomhub/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Room controller config
// @Description  Devices and normalized automations of one room, as pulled by its controller on boot.
// @Tags         esp
// @Produce      json
// @Param        roomId  path      string  true  "Room id"
// @Success      200     {object}  models.RoomConfig
// @Failure      404     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/esp/config/{roomId} [get]
func (h *Handler) getRoomConfig(c *gin.Context) {
	roomID := c.Param("roomId")
	cfg, err := h.services.Pull(c.Request.Context(), roomID)
	if err != nil {
		h.respondError(c, err, "config_pull_failed", "room_id", roomID)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// @Summary      Sensor report
// @Description  Flat key/value readings from a room controller. The response is a status token only.
// @Tags         esp
// @Accept       json
// @Produce      json
// @Param        roomId  path      string                  true  "Room id"
// @Param        body    body      map[string]interface{}  true  "Readings, e.g. {\"temp\":24.5,\"pir\":1}"
// @Success      200     {object}  map[string]string       "status: no-devices | received"
// @Failure      400     {object}  map[string]string       "status: error"
// @Failure      500     {object}  map[string]string       "status: error"
// @Router       /api/esp/report/{roomId} [post]
func (h *Handler) reportReadings(c *gin.Context) {
	roomID := c.Param("roomId")

	var readings map[string]any
	if err := c.ShouldBindJSON(&readings); err != nil {
		if h.log != nil {
			h.log.Infow("report_bad_body", "room_id", roomID, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": models.StatusError})
		return
	}

	status, err := h.services.Report(c.Request.Context(), roomID, readings)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, service.ErrValidation) {
			code = http.StatusBadRequest
		}
		if h.log != nil {
			h.log.Errorw("report_failed", "room_id", roomID, "err", err)
		}
		c.JSON(code, gin.H{"status": models.StatusError})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
