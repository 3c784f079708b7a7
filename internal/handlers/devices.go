package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomhub/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errLimitInvalid = "invalid 'limit'; use a positive integer"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// CommandRequest is the manual actuation payload.
type CommandRequest struct {
	// on | off
	Command string `json:"command" binding:"required" example:"on"`
	// Seconds before the controller reverts; 0 or absent means hold.
	Duration *int `json:"duration,omitempty" example:"60"`
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      Command device
// @Description  Records the new state and forwards the command to the device's room controller.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Device id"
// @Param        body  body      CommandRequest  true  "Command"
// @Success      200   {object}  models.Device
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/devices/{id}/command [post]
func (h *Handler) commandDevice(c *gin.Context) {
	id := c.Param("id")
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errInvalidBodyPref+err.Error())
		return
	}
	cmd := models.Command(strings.ToLower(strings.TrimSpace(req.Command)))
	dev, err := h.services.DeviceControl.Command(c.Request.Context(), id, cmd, req.Duration)
	if err != nil {
		h.respondError(c, err, "device_command_failed", "device_id", id, "command", cmd)
		return
	}
	c.JSON(http.StatusOK, dev)
}

// @Summary      Device readings
// @Description  Newest first. 'from'/'to' accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' is end of day inclusive.
// @Tags         devices
// @Produce      json
// @Param        id     path      string  true   "Device id"
// @Param        from   query     string  false  "Start of range"  example(2025-08-01)
// @Param        to     query     string  false  "End of range"    example(2025-08-31)
// @Param        limit  query     int     false  "Max points (default 100, max 1000)"
// @Success      200    {object}  map[string]interface{}  "count, data"
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/devices/{id}/data [get]
func (h *Handler) getDeviceData(c *gin.Context) {
	f := models.DataFilter{DeviceID: c.Param("id")}
	var err error

	if qs := c.Query("from"); qs != "" {
		f.From, err = parseQueryTime(qs)
		if err != nil {
			badRequest(c, errFromInvalid)
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		f.To, err = parseQueryTime(qs)
		if err != nil {
			badRequest(c, errToInvalid)
			return
		}
		if isDateOnly(qs) {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if qs := c.Query("limit"); qs != "" {
		f.Limit, err = strconv.Atoi(qs)
		if err != nil || f.Limit <= 0 {
			badRequest(c, errLimitInvalid)
			return
		}
	}

	points, err := h.services.DeviceControl.History(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err, "device_history_failed", "device_id", f.DeviceID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(points),
		"data":  points,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
