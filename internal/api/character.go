package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"magic-encyclopedia/backend/internal/models"
	"magic-encyclopedia/backend/internal/service"
)

// CharacterHandler serves the character roster endpoints
type CharacterHandler struct {
	service *service.CharacterService
}

// NewCharacterHandler creates a character handler
func NewCharacterHandler(service *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{service: service}
}

// List returns every character
func (h *CharacterHandler) List(c *gin.Context) {
	characters, err := h.service.List()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, characters)
}

// Get returns one character by ID
func (h *CharacterHandler) Get(c *gin.Context) {
	character, err := h.service.Get(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// Create adds a guardian-authored character
func (h *CharacterHandler) Create(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	character, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

// Update edits an existing character
func (h *CharacterHandler) Update(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	character, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// Delete removes a character and its history
func (h *CharacterHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
