package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"magic-encyclopedia/backend/internal/models"
	"magic-encyclopedia/backend/internal/service"
)

// SettingsHandler serves the settings endpoints. Reads are open to the
// child-facing UI; writes sit behind the parental gate.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(service *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get returns the settings record. Secrets carry json:"-" so keys and the
// PIN hash never leave the process.
func (h *SettingsHandler) Get(c *gin.Context) {
	st, err := h.service.Get()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Update applies guardian edits. Parental-gated.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := h.service.Update(&req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ResetTime restores the screen-time budget. Parental-gated.
func (h *SettingsHandler) ResetTime(c *gin.Context) {
	st, err := h.service.ResetTime()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, st)
}
