package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Camera status
// @Description  Whether a producer is bound and how many viewers are subscribed. Unknown cameras report disconnected.
// @Tags         cameras
// @Produce      json
// @Param        id   path      string  true  "Camera id"
// @Success      200  {object}  relay.Status
// @Failure      500  {object}  map[string]string
// @Router       /api/cameras/{id}/status [get]
func (h *Handler) cameraStatus(c *gin.Context) {
	id := c.Param("id")
	st, err := h.cameras.Status(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "camera_status_failed", "camera_id", id)
		return
	}
	c.JSON(http.StatusOK, st)
}

// cameraConnect hands the upgrade to the relay, which serves the connection
// until either side closes it.
func (h *Handler) cameraConnect(c *gin.Context) {
	h.cameras.ServeWS(c.Writer, c.Request)
}
