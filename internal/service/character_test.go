package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magic-encyclopedia/backend/internal/models"
	pkgerrors "magic-encyclopedia/backend/pkg/errors"
)

func TestSeedDefaults(t *testing.T) {
	db := testDB(t)
	svc := newCharacterService(t, db, allowAll{})

	require.NoError(t, svc.SeedDefaults())

	characters, err := svc.List()
	require.NoError(t, err)
	require.Len(t, characters, 2)
	assert.True(t, characters[0].IsDefault)

	// seeding again is a no-op
	require.NoError(t, svc.SeedDefaults())
	characters, err = svc.List()
	require.NoError(t, err)
	assert.Len(t, characters, 2)
}

func TestCreateCharacter(t *testing.T) {
	svc := newCharacterService(t, testDB(t), allowAll{})

	created, err := svc.Create(context.Background(), &models.CreateCharacterRequest{
		Name:         "Willow",
		Persona:      "A gentle forest owl",
		SystemPrompt: "You are Willow, a wise owl who loves nature facts.",
		Voice:        models.VoiceKore,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Willow", created.Name)
	assert.Equal(t, models.VoiceKore, created.Voice)

	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateCharacterRejectsUnsafeProfile(t *testing.T) {
	svc := newCharacterService(t, testDB(t), rejectAll{})

	_, err := svc.Create(context.Background(), &models.CreateCharacterRequest{
		Name:         "Grim",
		Persona:      "something inappropriate",
		SystemPrompt: "prompt",
		Voice:        models.VoiceCharon,
	})
	require.Error(t, err)

	appErr := pkgerrors.FromError(err)
	assert.Equal(t, 422, appErr.StatusCode)
	assert.Equal(t, "UNSAFE_CONTENT", appErr.Code)
}

func TestUpdateCharacterRescreensChangedPrompt(t *testing.T) {
	db := testDB(t)
	svc := newCharacterService(t, db, allowAll{})

	created, err := svc.Create(context.Background(), &models.CreateCharacterRequest{
		Name:         "Willow",
		Persona:      "A gentle forest owl",
		SystemPrompt: "You are Willow.",
		Voice:        models.VoiceKore,
	})
	require.NoError(t, err)

	// same prompt text passes even with a rejecting classifier
	strict := newCharacterService(t, db, rejectAll{})
	updated, err := strict.Update(context.Background(), created.ID, &models.CreateCharacterRequest{
		Name:         "Willow the Wise",
		Persona:      created.Persona,
		SystemPrompt: created.SystemPrompt,
		Voice:        created.Voice,
	})
	require.NoError(t, err)
	assert.Equal(t, "Willow the Wise", updated.Name)

	// a changed persona goes back through the gate
	_, err = strict.Update(context.Background(), created.ID, &models.CreateCharacterRequest{
		Name:         "Willow",
		Persona:      "a different persona",
		SystemPrompt: created.SystemPrompt,
		Voice:        created.Voice,
	})
	require.Error(t, err)
	assert.Equal(t, 422, pkgerrors.FromError(err).StatusCode)
}

func TestDeleteLastCharacterRejected(t *testing.T) {
	db := testDB(t)
	svc := newCharacterService(t, db, allowAll{})
	require.NoError(t, svc.SeedDefaults())

	characters, err := svc.List()
	require.NoError(t, err)
	require.Len(t, characters, 2)

	require.NoError(t, svc.Delete(characters[0].ID))

	err = svc.Delete(characters[1].ID)
	require.Error(t, err)
	appErr := pkgerrors.FromError(err)
	assert.Equal(t, 409, appErr.StatusCode)
	assert.Equal(t, "LAST_CHARACTER", appErr.Code)

	remaining, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestDeleteCharacterRemovesHistory(t *testing.T) {
	db := testDB(t)
	svc := newCharacterService(t, db, allowAll{})
	require.NoError(t, svc.SeedDefaults())

	characters, err := svc.List()
	require.NoError(t, err)
	target := characters[0]

	messages := NewMessageService(db)
	_, err = messages.Append(target.ID, models.RoleUser, "hello", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(target.ID))

	history, err := messages.List(target.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGetUnknownCharacter(t *testing.T) {
	svc := newCharacterService(t, testDB(t), allowAll{})
	_, err := svc.Get("nope")
	require.Error(t, err)
	assert.Equal(t, 404, pkgerrors.FromError(err).StatusCode)
}
