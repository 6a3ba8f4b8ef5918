package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"magic-encyclopedia/backend/internal/models"
)

// MessageService persists the conversation history
type MessageService struct {
	db *gorm.DB
}

// NewMessageService creates a message service
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Append stores one message and returns it with its assigned IDs
func (s *MessageService) Append(characterID, role, content, imageURL string) (*models.Message, error) {
	msg := models.Message{
		ExternalID:  uuid.New().String(),
		CharacterID: characterID,
		Role:        role,
		Content:     content,
		ImageURL:    imageURL,
		Timestamp:   time.Now(),
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return &msg, nil
}

// List returns a character's messages in chronological order
func (s *MessageService) List(characterID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Where("character_id = ?", characterID).
		Order("timestamp asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// ClearAll wipes the history for every character
func (s *MessageService) ClearAll() error {
	if err := s.db.Where("1 = 1").Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}
