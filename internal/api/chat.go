package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"magic-encyclopedia/backend/internal/service"
)

// ChatHandler serves the conversation endpoints
type ChatHandler struct {
	chat       *service.ChatService
	characters *service.CharacterService
	settings   *service.SettingsService
}

// NewChatHandler creates a chat handler
func NewChatHandler(chat *service.ChatService, characters *service.CharacterService, settings *service.SettingsService) *ChatHandler {
	return &ChatHandler{chat: chat, characters: characters, settings: settings}
}

type sendRequest struct {
	Content string `json:"content" binding:"required"`
}

type speakRequest struct {
	Text string `json:"text" binding:"required"`
}

// Send runs one conversation turn
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is empty"})
		return
	}

	result, err := h.chat.Send(c.Request.Context(), c.Param("characterId"), req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Speak replays a piece of text in the character's voice
func (h *ChatHandler) Speak(c *gin.Context) {
	var req speakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	character, err := h.characters.Get(c.Param("characterId"))
	if err != nil {
		c.Error(err)
		return
	}
	st, err := h.settings.ProviderSettings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	h.chat.Speak(character.ID, req.Text, character.Voice, st)
	c.JSON(http.StatusAccepted, gin.H{"speaking": true})
}

// StopSpeech cancels the current utterance
func (h *ChatHandler) StopSpeech(c *gin.Context) {
	h.chat.StopSpeech()
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}
