package handlers

import (
	"net/http"

	"roomhub/internal/models"

	"github.com/gin-gonic/gin"
)

const errInvalidBodyPref = "invalid body: "

// AutomationRequest documents the automation payload for Swagger.
type AutomationRequest struct {
	Name    string `json:"name" example:"Cool the office"`
	Active  bool   `json:"active" example:"true"`
	Trigger struct {
		// sensor | schedule
		Kind       string   `json:"kind" example:"sensor"`
		DeviceID   string   `json:"deviceId,omitempty" example:"dev-temp-1"`
		Operator   string   `json:"operator,omitempty" example:">"`
		Threshold  *float64 `json:"threshold,omitempty" example:"25"`
		Start      string   `json:"start,omitempty" example:"08:00"`
		End        string   `json:"end,omitempty" example:"08:30"`
		DaysOfWeek []int    `json:"daysOfWeek,omitempty"`
	} `json:"trigger"`
	Actions []models.Action `json:"actions"`
}

// @Summary      List automations
// @Tags         automations
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, automations"
// @Failure      500  {object}  map[string]string
// @Router       /api/automations [get]
func (h *Handler) listAutomations(c *gin.Context) {
	autos, err := h.services.Automations.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "automations_list_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(autos),
		"automations": autos,
	})
}

// @Summary      Get automation
// @Tags         automations
// @Produce      json
// @Param        id   path      string  true  "Automation id"
// @Success      200  {object}  AutomationRequest
// @Failure      404  {object}  map[string]string
// @Router       /api/automations/{id} [get]
func (h *Handler) getAutomation(c *gin.Context) {
	id := c.Param("id")
	a, err := h.services.Automations.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "automation_get_failed", "automation_id", id)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      Create automation
// @Description  Stores the automation and pushes fresh config to every room it touches.
// @Tags         automations
// @Accept       json
// @Produce      json
// @Param        body  body      AutomationRequest  true  "Automation"
// @Success      201   {object}  AutomationRequest
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string  "unknown device"
// @Failure      500   {object}  map[string]string
// @Router       /api/automations [post]
func (h *Handler) createAutomation(c *gin.Context) {
	var in models.Automation
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, errInvalidBodyPref+err.Error())
		return
	}
	saved, err := h.services.Automations.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "automation_create_failed")
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// @Summary      Update automation
// @Description  Replaces the automation and pushes fresh config to the rooms it touched before and after.
// @Tags         automations
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Automation id"
// @Param        body  body      AutomationRequest  true  "Automation"
// @Success      200   {object}  AutomationRequest
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/automations/{id} [put]
func (h *Handler) updateAutomation(c *gin.Context) {
	id := c.Param("id")
	var in models.Automation
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, errInvalidBodyPref+err.Error())
		return
	}
	saved, err := h.services.Automations.Update(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err, "automation_update_failed", "automation_id", id)
		return
	}
	c.JSON(http.StatusOK, saved)
}
