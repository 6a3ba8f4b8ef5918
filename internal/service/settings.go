package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"magic-encyclopedia/backend/ai"
	"magic-encyclopedia/backend/internal/models"
	"magic-encyclopedia/backend/pkg/config"
	pkgerrors "magic-encyclopedia/backend/pkg/errors"
	"magic-encyclopedia/backend/pkg/logger"
	"magic-encyclopedia/backend/pkg/secrets"
)

// settingsRowID is the primary key of the single settings record
const settingsRowID = 1

// SettingsService owns the guardian-controlled settings record and the
// screen-time countdown.
type SettingsService struct {
	db  *gorm.DB
	cfg *config.Config
	log *logger.Logger

	tickerMu   sync.Mutex
	tickerDone chan struct{}
}

// NewSettingsService creates the settings service
func NewSettingsService(db *gorm.DB, cfg *config.Config, log *logger.Logger) *SettingsService {
	return &SettingsService{db: db, cfg: cfg, log: log}
}

// Get loads the settings record, creating it with defaults on first run
func (s *SettingsService) Get() (*models.Settings, error) {
	var st models.Settings
	err := s.db.First(&st, settingsRowID).Error
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Parental.DefaultPIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash default PIN: %w", err)
	}

	st = models.Settings{
		ID:               settingsRowID,
		SearchEnabled:    true,
		TimeLimitMinutes: 60,
		RemainingTime:    60,
		Language:         "en",
		Theme:            models.ThemeNeutral,
		APIProvider:      models.ProviderGoogle,
		VoiceProvider:    models.ProviderGoogle,
		GeminiModel:      s.cfg.Providers.GeminiModel,
		ParentalPINHash:  string(pinHash),
	}
	if err := s.db.Create(&st).Error; err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return &st, nil
}

// Update applies guardian edits. Changing the time limit does not touch the
// time already consumed; RemainingTime only moves via ticks and ResetTime.
// Only the fields present in the request are written, so a concurrent tick
// is never overwritten with a stale RemainingTime.
func (s *SettingsService) Update(req *models.UpdateSettingsRequest) (*models.Settings, error) {
	st, err := s.Get()
	if err != nil {
		return nil, err
	}

	var fields []string
	if req.Language != nil {
		if !models.LanguageSupported(*req.Language) {
			return nil, pkgerrors.NewBadRequestError("UNSUPPORTED_LANGUAGE", "Language is not supported")
		}
		st.Language = *req.Language
		fields = append(fields, "Language")
	}
	if req.Theme != nil {
		st.Theme = *req.Theme
		fields = append(fields, "Theme")
	}
	if req.SearchEnabled != nil {
		st.SearchEnabled = *req.SearchEnabled
		fields = append(fields, "SearchEnabled")
	}
	if req.TimeLimitMinutes != nil {
		if *req.TimeLimitMinutes < 0 {
			return nil, pkgerrors.NewBadRequestError("INVALID_TIME_LIMIT", "Time limit cannot be negative")
		}
		st.TimeLimitMinutes = *req.TimeLimitMinutes
		fields = append(fields, "TimeLimitMinutes")
	}
	if req.APIProvider != nil {
		st.APIProvider = *req.APIProvider
		fields = append(fields, "APIProvider")
	}
	if req.VoiceProvider != nil {
		st.VoiceProvider = *req.VoiceProvider
		fields = append(fields, "VoiceProvider")
	}
	if req.GeminiModel != nil {
		st.GeminiModel = *req.GeminiModel
		fields = append(fields, "GeminiModel")
	}
	if req.GeminiAPIKey != nil {
		st.GeminiAPIKey = *req.GeminiAPIKey
		fields = append(fields, "GeminiAPIKey")
	}
	if req.CustomAPIURL != nil {
		st.CustomAPIURL = *req.CustomAPIURL
		fields = append(fields, "CustomAPIURL")
	}
	if req.CustomAPIKey != nil {
		st.CustomAPIKey = *req.CustomAPIKey
		fields = append(fields, "CustomAPIKey")
	}
	if req.CustomModel != nil {
		st.CustomModel = *req.CustomModel
		fields = append(fields, "CustomModel")
	}
	if req.CustomTTSURL != nil {
		st.CustomTTSURL = *req.CustomTTSURL
		fields = append(fields, "CustomTTSURL")
	}
	if req.CustomTTSKey != nil {
		st.CustomTTSKey = *req.CustomTTSKey
		fields = append(fields, "CustomTTSKey")
	}
	if req.CustomTTSModel != nil {
		st.CustomTTSModel = *req.CustomTTSModel
		fields = append(fields, "CustomTTSModel")
	}
	if req.CustomTTSVoice != nil {
		st.CustomTTSVoice = *req.CustomTTSVoice
		fields = append(fields, "CustomTTSVoice")
	}

	if len(fields) == 0 {
		return st, nil
	}
	if err := s.db.Model(st).Select(fields).Updates(st).Error; err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return st, nil
}

// ProviderSettings projects the persisted record into the value object the
// provider layer consumes. API keys fall back to the secrets backend and
// then the environment when the guardian has not entered one.
func (s *SettingsService) ProviderSettings(ctx context.Context) (ai.Settings, error) {
	st, err := s.Get()
	if err != nil {
		return ai.Settings{}, err
	}

	geminiKey := st.GeminiAPIKey
	if geminiKey == "" {
		geminiKey = secrets.GetSecretWithDefault(ctx, "gemini-api-key", s.cfg.Providers.GeminiAPIKey)
	}

	return ai.Settings{
		Language:         st.Language,
		SearchEnabled:    st.SearchEnabled,
		APIProvider:      st.APIProvider,
		VoiceProvider:    st.VoiceProvider,
		GeminiAPIKey:     geminiKey,
		GeminiModel:      st.GeminiModel,
		GeminiTTSModel:   s.cfg.Providers.GeminiTTSModel,
		GeminiImageModel: s.cfg.Providers.GeminiImageModel,
		CustomAPIURL:     st.CustomAPIURL,
		CustomAPIKey:     st.CustomAPIKey,
		CustomModel:      st.CustomModel,
		CustomTTSURL:     st.CustomTTSURL,
		CustomTTSKey:     st.CustomTTSKey,
		CustomTTSModel:   st.CustomTTSModel,
		CustomTTSVoice:   st.CustomTTSVoice,
	}, nil
}

// VerifyPIN checks a parental PIN attempt against the stored hash
func (s *SettingsService) VerifyPIN(pin string) bool {
	st, err := s.Get()
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(st.ParentalPINHash), []byte(pin)) == nil
}

// SetPIN replaces the parental PIN
func (s *SettingsService) SetPIN(pin string) error {
	if len(pin) != 4 {
		return pkgerrors.NewBadRequestError("INVALID_PIN", "PIN must be exactly four digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return pkgerrors.NewBadRequestError("INVALID_PIN", "PIN must be exactly four digits")
		}
	}

	st, err := s.Get()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}
	st.ParentalPINHash = string(hash)
	return s.db.Model(st).Select("ParentalPINHash").Updates(st).Error
}

// ResetTime restores the remaining time to the configured limit
func (s *SettingsService) ResetTime() (*models.Settings, error) {
	if _, err := s.Get(); err != nil {
		return nil, err
	}
	err := s.db.Model(&models.Settings{}).
		Where("id = ?", settingsRowID).
		UpdateColumn("remaining_time", gorm.Expr("time_limit_minutes")).Error
	if err != nil {
		return nil, err
	}
	return s.Get()
}

// TickTime decrements the remaining time by one minute, clamped at zero.
// The decrement runs as a single SQL expression so a concurrent settings
// write can never refund a consumed minute.
func (s *SettingsService) TickTime() error {
	return s.db.Model(&models.Settings{}).
		Where("id = ? AND remaining_time > 0", settingsRowID).
		UpdateColumn("remaining_time", gorm.Expr("remaining_time - 1")).Error
}

// StartTimeTicker runs the once-per-minute screen-time countdown until
// StopTimeTicker is called.
func (s *SettingsService) StartTimeTicker() {
	s.tickerMu.Lock()
	defer s.tickerMu.Unlock()

	if s.tickerDone != nil {
		return
	}
	done := make(chan struct{})
	s.tickerDone = done

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := s.TickTime(); err != nil {
					s.log.LogError(err, "time budget tick failed")
				}
			}
		}
	}()
}

// StopTimeTicker cancels the countdown. Safe to call when never started.
func (s *SettingsService) StopTimeTicker() {
	s.tickerMu.Lock()
	defer s.tickerMu.Unlock()

	if s.tickerDone != nil {
		close(s.tickerDone)
		s.tickerDone = nil
	}
}
