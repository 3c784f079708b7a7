package handlers

import (
	"errors"
	"net/http"

	"roomhub/internal/service"

	"github.com/gin-gonic/gin"
)

const errInternal = "internal error"

// httpStatus maps the service error taxonomy onto HTTP codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Client errors carry the cause; server
// errors are logged and answered generically.
func (h *Handler) respondError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		if h.log != nil {
			h.log.Errorw(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(code, gin.H{"error": errInternal})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
