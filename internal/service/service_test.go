package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"magic-encyclopedia/backend/ai"
	"magic-encyclopedia/backend/internal/models"
	"magic-encyclopedia/backend/pkg/config"
	"magic-encyclopedia/backend/pkg/logger"
)

// allowAll approves everything; rejectAll refuses everything. They stand in
// for the provider-backed safety gate.
type allowAll struct{}

func (allowAll) ClassifyContent(context.Context, string, ai.Settings) ai.Verdict {
	return ai.Verdict{Safe: true}
}

type rejectAll struct{}

func (rejectAll) ClassifyContent(context.Context, string, ai.Settings) ai.Verdict {
	return ai.Verdict{Safe: false, Reason: "test rejection"}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Character{}, &models.Message{}, &models.Settings{}))
	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", JSON: false, Output: os.Stderr})
}

func newSettingsService(t *testing.T, db *gorm.DB) *SettingsService {
	t.Helper()
	return NewSettingsService(db, config.Get(), testLogger())
}

func newCharacterService(t *testing.T, db *gorm.DB, classifier Classifier) *CharacterService {
	t.Helper()
	return NewCharacterService(db, classifier, newSettingsService(t, db), testLogger())
}
