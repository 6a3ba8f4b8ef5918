package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"magic-encyclopedia/backend/internal/service"
	"magic-encyclopedia/backend/pkg/jwt"
	"magic-encyclopedia/backend/pkg/logger"
)

// ParentalHandler serves the PIN gate: unlock exchanges a correct PIN for a
// short-lived parent token, and the PIN itself can be rotated once unlocked.
type ParentalHandler struct {
	settings *service.SettingsService
	jwt      *jwt.Service
	log      *logger.Logger
}

// NewParentalHandler creates a parental handler
func NewParentalHandler(settings *service.SettingsService, jwtService *jwt.Service, log *logger.Logger) *ParentalHandler {
	return &ParentalHandler{settings: settings, jwt: jwtService, log: log}
}

type unlockRequest struct {
	PIN string `json:"pin" binding:"required"`
}

type setPINRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// Unlock verifies the PIN and issues a parent token
func (h *ParentalHandler) Unlock(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.settings.VerifyPIN(req.PIN) {
		h.log.Warn("parental unlock rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect PIN"})
		return
	}

	token, err := h.jwt.GenerateParentToken()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// SetPIN rotates the parental PIN. Parental-gated.
func (h *ParentalHandler) SetPIN(c *gin.Context) {
	var req setPINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settings.SetPIN(req.PIN); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
