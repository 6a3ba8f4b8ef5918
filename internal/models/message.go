package models

import (
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Messages are append-only; the
// per-character view is a filter on CharacterID at read time.
type Message struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ExternalID  string    `json:"external_id" gorm:"index"`
	CharacterID string    `json:"character_id" gorm:"index"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"image_url,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"created_at"`
}
