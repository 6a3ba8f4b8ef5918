package models

import (
	"time"
)

// Provider selectors. Text generation and speech synthesis are chosen
// independently, so one can run on the primary backend while the other uses
// an OpenAI-compatible endpoint.
const (
	ProviderGoogle = "google"
	ProviderCustom = "custom"
)

// Themes
const (
	ThemeNeutral = "neutral"
	ThemeBoy     = "boy"
	ThemeGirl    = "girl"
)

// SupportedLanguages lists the UI locales, in display order
var SupportedLanguages = []string{"en", "de", "zh", "ja", "fr", "es", "it"}

// Settings is the single guardian-controlled configuration record. Exactly
// one row exists (ID 1); it is created with defaults on first run.
type Settings struct {
	ID               uint   `json:"-" gorm:"primaryKey"`
	SearchEnabled    bool   `json:"search_enabled" gorm:"default:true"`
	TimeLimitMinutes int    `json:"time_limit_minutes" gorm:"default:60"`
	RemainingTime    int    `json:"remaining_time" gorm:"default:60"`
	Language         string `json:"language" gorm:"default:en"`
	Theme            string `json:"theme" gorm:"default:neutral"`

	APIProvider   string `json:"api_provider" gorm:"default:google"`
	VoiceProvider string `json:"voice_provider" gorm:"default:google"`

	GeminiModel  string `json:"gemini_model" gorm:"default:gemini-3-flash-preview"`
	GeminiAPIKey string `json:"-"`

	CustomAPIURL string `json:"custom_api_url"`
	CustomAPIKey string `json:"-"`
	CustomModel  string `json:"custom_model"`

	CustomTTSURL   string `json:"custom_tts_url"`
	CustomTTSKey   string `json:"-"`
	CustomTTSModel string `json:"custom_tts_model"`
	CustomTTSVoice string `json:"custom_tts_voice"`

	ParentalPINHash string    `json:"-"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LanguageSupported reports whether lang is one of the seven UI locales
func LanguageSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// UpdateSettingsRequest carries guardian edits from the parental portal.
// Pointer fields distinguish "leave unchanged" from explicit zero values.
type UpdateSettingsRequest struct {
	SearchEnabled    *bool   `json:"search_enabled"`
	TimeLimitMinutes *int    `json:"time_limit_minutes"`
	Language         *string `json:"language"`
	Theme            *string `json:"theme"`
	APIProvider      *string `json:"api_provider"`
	VoiceProvider    *string `json:"voice_provider"`
	GeminiModel      *string `json:"gemini_model"`
	GeminiAPIKey     *string `json:"gemini_api_key"`
	CustomAPIURL     *string `json:"custom_api_url"`
	CustomAPIKey     *string `json:"custom_api_key"`
	CustomModel      *string `json:"custom_model"`
	CustomTTSURL     *string `json:"custom_tts_url"`
	CustomTTSKey     *string `json:"custom_tts_key"`
	CustomTTSModel   *string `json:"custom_tts_model"`
	CustomTTSVoice   *string `json:"custom_tts_voice"`
}
