package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"magic-encyclopedia/backend/ai"
	"magic-encyclopedia/backend/internal/models"
	pkgerrors "magic-encyclopedia/backend/pkg/errors"
	"magic-encyclopedia/backend/pkg/logger"
)

// Classifier screens guardian-authored text before it reaches a character
// profile. Implemented by ai.Router.
type Classifier interface {
	ClassifyContent(ctx context.Context, text string, st ai.Settings) ai.Verdict
}

// CharacterService manages the character roster
type CharacterService struct {
	db         *gorm.DB
	classifier Classifier
	settings   *SettingsService
	log        *logger.Logger
}

// NewCharacterService creates a character service
func NewCharacterService(db *gorm.DB, classifier Classifier, settings *SettingsService, log *logger.Logger) *CharacterService {
	return &CharacterService{db: db, classifier: classifier, settings: settings, log: log}
}

// SeedDefaults inserts the built-in characters if the roster is empty
func (s *CharacterService) SeedDefaults() error {
	var count int64
	if err := s.db.Model(&models.Character{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count characters: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, c := range models.DefaultCharacters() {
		if err := s.db.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to seed character %s: %w", c.Name, err)
		}
	}
	s.log.Info("seeded default characters")
	return nil
}

// List returns all characters ordered by creation time
func (s *CharacterService) List() ([]models.Character, error) {
	var characters []models.Character
	if err := s.db.Order("created_at asc").Find(&characters).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

// Get fetches a single character by ID
func (s *CharacterService) Get(id string) (*models.Character, error) {
	var character models.Character
	if err := s.db.First(&character, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.NewNotFoundError("CHARACTER_NOT_FOUND", "Character not found")
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return &character, nil
}

// Create screens the guardian-authored profile and stores the character.
// The screen fails closed: if the classifier cannot run, the profile is
// rejected.
func (s *CharacterService) Create(ctx context.Context, req *models.CreateCharacterRequest) (*models.Character, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, pkgerrors.NewBadRequestError("INVALID_NAME", "Character name is required")
	}

	if err := s.screen(ctx, req.Persona, req.SystemPrompt); err != nil {
		return nil, err
	}

	character := models.Character{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Persona:      req.Persona,
		SystemPrompt: req.SystemPrompt,
		Voice:        req.Voice,
		Tone:         req.Tone,
		Length:       req.Length,
		Image:        req.Image,
	}
	if character.Voice == "" {
		character.Voice = models.VoiceZephyr
	}
	if err := s.db.Create(&character).Error; err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	return &character, nil
}

// Update edits an existing character, re-screening any changed prompt text
func (s *CharacterService) Update(ctx context.Context, id string, req *models.CreateCharacterRequest) (*models.Character, error) {
	character, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Persona != character.Persona || req.SystemPrompt != character.SystemPrompt {
		if err := s.screen(ctx, req.Persona, req.SystemPrompt); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(req.Name) != "" {
		character.Name = strings.TrimSpace(req.Name)
	}
	character.Persona = req.Persona
	character.SystemPrompt = req.SystemPrompt
	if req.Voice != "" {
		character.Voice = req.Voice
	}
	character.Tone = req.Tone
	character.Length = req.Length
	if req.Image != "" {
		character.Image = req.Image
	}

	if err := s.db.Save(character).Error; err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}
	return character, nil
}

// Delete removes a character along with its message history. Deleting the
// last remaining character is rejected so the roster never empties.
func (s *CharacterService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Character{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count characters: %w", err)
	}
	if count <= 1 {
		return pkgerrors.NewConflictError("LAST_CHARACTER", "Cannot delete the last remaining character")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete character messages: %w", err)
		}
		if err := tx.Delete(&models.Character{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete character: %w", err)
		}
		return nil
	})
}

func (s *CharacterService) screen(ctx context.Context, persona, systemPrompt string) error {
	text := strings.TrimSpace(persona + "\n" + systemPrompt)
	if text == "" {
		return nil
	}

	st, err := s.settings.ProviderSettings(ctx)
	if err != nil {
		return err
	}
	verdict := s.classifier.ClassifyContent(ctx, text, st)
	if !verdict.Safe {
		s.log.Warn("character profile rejected", "reason", verdict.Reason)
		return pkgerrors.NewUnprocessableError("UNSAFE_CONTENT", "This character description is not appropriate for children")
	}
	return nil
}
