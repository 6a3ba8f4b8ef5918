package models

import (
	"time"
)

// Voices offered by the primary speech backend. They are cross-lingual and
// adapt to the language named in the synthesis instruction.
const (
	VoiceZephyr = "Zephyr"
	VoicePuck   = "Puck"
	VoiceCharon = "Charon"
	VoiceKore   = "Kore"
	VoiceFenrir = "Fenrir"
)

// Character is a cartoon companion the child can talk to
type Character struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Persona      string    `json:"persona" gorm:"not null"`
	SystemPrompt string    `json:"system_prompt" gorm:"not null"`
	Voice        string    `json:"voice" gorm:"not null"`
	Tone         string    `json:"tone" gorm:"default:friendly"`
	Length       string    `json:"length" gorm:"default:short"`
	Image        string    `json:"image"`
	IsDefault    bool      `json:"is_default" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateCharacterRequest is the payload for creating or replacing a character
type CreateCharacterRequest struct {
	Name         string `json:"name" binding:"required"`
	Persona      string `json:"persona" binding:"required"`
	SystemPrompt string `json:"system_prompt" binding:"required"`
	Voice        string `json:"voice" binding:"required"`
	Tone         string `json:"tone"`
	Length       string `json:"length"`
	Image        string `json:"image"`
}

// DefaultCharacters returns the built-in roster seeded on first run
func DefaultCharacters() []Character {
	return []Character{
		{
			ID:           "sparky",
			Name:         "Sparky the Robot",
			Persona:      "A friendly little robot who loves science and math.",
			SystemPrompt: "You are Sparky, a friendly 8-year-old child companion. Use simple words. Keep answers short and fun. Always encourage curiosity.",
			Voice:        VoiceZephyr,
			Tone:         "excited",
			Length:       "short",
			Image:        "https://picsum.photos/seed/sparky/400/400",
			IsDefault:    true,
		},
		{
			ID:           "luna",
			Name:         "Professor Luna",
			Persona:      "A wise owl who knows everything about nature and animals.",
			SystemPrompt: "You are Professor Luna, a wise but kind owl. You explain nature to kids aged 8. Use analogies and storytelling.",
			Voice:        VoiceKore,
			Tone:         "calm",
			Length:       "medium",
			Image:        "https://picsum.photos/seed/luna/400/400",
			IsDefault:    true,
		},
	}
}
