package handlers

import (
	"context"
	"net/http"

	"roomhub/internal/logger"
	"roomhub/internal/relay"
	"roomhub/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	defaultCameraPath = "/ws/camera"
	statusOK          = "ok"
)

// CameraRelay is the part of the camera hub the HTTP layer needs.
type CameraRelay interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
	Status(ctx context.Context, cameraID string) (relay.Status, error)
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	cameras  CameraRelay
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, cameras CameraRelay, log *logger.Logger) *Handler {
	return &Handler{services: services, cameras: cameras, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
// The camera websocket is mounted at cameraPath, or /ws/camera when empty.
func (h *Handler) InitRoutes(cameraPath string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	h.registerESPRoutes(router)
	h.registerAPIRoutes(router)

	if cameraPath == "" {
		cameraPath = defaultCameraPath
	}
	router.GET(cameraPath, h.cameraConnect)

	return router
}

// registerESPRoutes serves the room controllers.
func (h *Handler) registerESPRoutes(r *gin.Engine) {
	esp := r.Group("/api/esp")
	{
		esp.GET("/config/:roomId", h.getRoomConfig)
		esp.POST("/report/:roomId", h.reportReadings)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		h.registerAutomationRoutes(api)
		h.registerDeviceRoutes(api)
		api.GET("/cameras/:id/status", h.cameraStatus)
	}
}

func (h *Handler) registerAutomationRoutes(api *gin.RouterGroup) {
	autos := api.Group("/automations")
	{
		autos.GET("", h.listAutomations)
		autos.POST("", h.createAutomation)
		autos.GET("/:id", h.getAutomation)
		autos.PUT("/:id", h.updateAutomation)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	devices := api.Group("/devices")
	{
		// Body example: {"command":"on","duration":60}
		devices.POST("/:id/command", h.commandDevice)
		devices.GET("/:id/data", h.getDeviceData)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
