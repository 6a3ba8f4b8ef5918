package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"magic-encyclopedia/backend/internal/service"
)

// MessageHandler serves the conversation history endpoints
type MessageHandler struct {
	messages   *service.MessageService
	characters *service.CharacterService
}

// NewMessageHandler creates a message handler
func NewMessageHandler(messages *service.MessageService, characters *service.CharacterService) *MessageHandler {
	return &MessageHandler{messages: messages, characters: characters}
}

// List returns a character's chronological history
func (h *MessageHandler) List(c *gin.Context) {
	characterID := c.Param("characterId")
	if _, err := h.characters.Get(characterID); err != nil {
		c.Error(err)
		return
	}

	messages, err := h.messages.List(characterID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ClearAll wipes every character's history. Parental-gated.
func (h *MessageHandler) ClearAll(c *gin.Context) {
	if err := h.messages.ClearAll(); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
