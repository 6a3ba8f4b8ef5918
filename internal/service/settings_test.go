package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"magic-encyclopedia/backend/internal/models"
)

func TestSettingsCreatedWithDefaults(t *testing.T) {
	svc := newSettingsService(t, testDB(t))

	st, err := svc.Get()
	require.NoError(t, err)
	assert.True(t, st.SearchEnabled)
	assert.Equal(t, 60, st.TimeLimitMinutes)
	assert.Equal(t, 60, st.RemainingTime)
	assert.Equal(t, "en", st.Language)
	assert.Equal(t, models.ProviderGoogle, st.APIProvider)
	assert.NotEmpty(t, st.ParentalPINHash)

	// default PIN verifies
	assert.True(t, svc.VerifyPIN("1234"))
	assert.False(t, svc.VerifyPIN("0000"))
}

func TestUpdateSettingsPartial(t *testing.T) {
	svc := newSettingsService(t, testDB(t))

	lang := "de"
	search := false
	st, err := svc.Update(&models.UpdateSettingsRequest{
		Language:      &lang,
		SearchEnabled: &search,
	})
	require.NoError(t, err)
	assert.Equal(t, "de", st.Language)
	assert.False(t, st.SearchEnabled)

	// untouched fields keep their values
	assert.Equal(t, 60, st.TimeLimitMinutes)
	assert.Equal(t, models.ProviderGoogle, st.APIProvider)
}

func TestUpdateSettingsRejectsUnsupportedLanguage(t *testing.T) {
	svc := newSettingsService(t, testDB(t))

	lang := "tlh"
	_, err := svc.Update(&models.UpdateSettingsRequest{Language: &lang})
	require.Error(t, err)
}

func TestTimeLimitChangeIsNotRetroactive(t *testing.T) {
	svc := newSettingsService(t, testDB(t))

	_, err := svc.Get()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.TickTime())
	}

	limit := 120
	st, err := svc.Update(&models.UpdateSettingsRequest{TimeLimitMinutes: &limit})
	require.NoError(t, err)
	assert.Equal(t, 120, st.TimeLimitMinutes)
	assert.Equal(t, 50, st.RemainingTime, "raising the limit must not refill consumed time")

	st, err = svc.ResetTime()
	require.NoError(t, err)
	assert.Equal(t, 120, st.RemainingTime)
}

func TestGuardianUpdateDoesNotRefundTickedTime(t *testing.T) {
	svc := newSettingsService(t, testDB(t))

	_, err := svc.Get()
	require.NoError(t, err)

	// Land a countdown tick after the update has read the row but before it
	// writes. A full-row save would overwrite the tick and refund the minute.
	ticked := false
	err = svc.db.Callback().Update().Before("gorm:update").Register("tick_between", func(tx *gorm.DB) {
		if ticked {
			return
		}
		ticked = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE settings SET remaining_time = remaining_time - 1 WHERE id = ?", settingsRowID)
	})
	require.NoError(t, err)

	lang := "fr"
	_, err = svc.Update(&models.UpdateSettingsRequest{Language: &lang})
	require.NoError(t, err)
	require.True(t, ticked)

	st, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "fr", st.Language)
	assert.Equal(t, 59, st.RemainingTime)
}

func TestTickTimeClampsAtZero(t *testing.T) {
	svc := newSettingsService(t, testDB(t))

	limit := 2
	_, err := svc.Update(&models.UpdateSettingsRequest{TimeLimitMinutes: &limit})
	require.NoError(t, err)
	_, err = svc.ResetTime()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.TickTime())
	}

	st, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, st.RemainingTime)
}

func TestSetPIN(t *testing.T) {
	svc := newSettingsService(t, testDB(t))

	require.Error(t, svc.SetPIN("12"))
	require.Error(t, svc.SetPIN("abcd"))
	require.Error(t, svc.SetPIN("12345"))

	require.NoError(t, svc.SetPIN("8642"))
	assert.True(t, svc.VerifyPIN("8642"))
	assert.False(t, svc.VerifyPIN("1234"))
}

func TestProviderSettingsProjection(t *testing.T) {
	svc := newSettingsService(t, testDB(t))

	key := "user-entered-key"
	url := "https://llm.example.com/v1"
	provider := models.ProviderCustom
	_, err := svc.Update(&models.UpdateSettingsRequest{
		APIProvider:  &provider,
		GeminiAPIKey: &key,
		CustomAPIURL: &url,
	})
	require.NoError(t, err)

	st, err := svc.ProviderSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProviderCustom, st.APIProvider)
	assert.Equal(t, "user-entered-key", st.GeminiAPIKey)
	assert.Equal(t, url, st.CustomAPIURL)
	assert.NotEmpty(t, st.GeminiTTSModel)
}
