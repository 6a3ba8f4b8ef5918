package service

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magic-encyclopedia/backend/ai"
	"magic-encyclopedia/backend/audio"
	"magic-encyclopedia/backend/internal/models"
	"magic-encyclopedia/backend/pkg/cache"
	pkgerrors "magic-encyclopedia/backend/pkg/errors"
)

// fakeConversationalist answers with a fixed text and synthesizes two PCM
// samples derived from the text length, optionally waiting on a gate first.
type fakeConversationalist struct {
	mu         sync.Mutex
	answerText string
	sources    []ai.Source
	synthGate  chan struct{}
	synthCalls int
}

func (f *fakeConversationalist) Answer(_ context.Context, _, _ string, _ ai.Settings) ai.Answer {
	return ai.Answer{Text: f.answerText, Sources: f.sources}
}

func (f *fakeConversationalist) Synthesize(_ context.Context, text, _ string, _ ai.Settings) *ai.SpeechResult {
	f.mu.Lock()
	gate := f.synthGate
	f.synthCalls++
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data, uint16(len(text)))
	return &ai.SpeechResult{Encoding: ai.EncodingPCM, Data: data, SampleRate: ai.PCMSampleRate}
}

func (f *fakeConversationalist) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synthCalls
}

// recordingSink counts playbacks started
type recordingSink struct {
	mu     sync.Mutex
	starts int
	closed int
}

func (s *recordingSink) Start(int, int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	return nil
}

func (s *recordingSink) Write([]float32) error { return nil }

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *recordingSink) snapshot() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.closed
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newChatFixture(t *testing.T, conv Conversationalist, speechCache cache.SpeechCache) (*ChatService, *CharacterService, *MessageService, *recordingSink) {
	t.Helper()
	db := testDB(t)
	characters := newCharacterService(t, db, allowAll{})
	require.NoError(t, characters.SeedDefaults())

	messages := NewMessageService(db)
	settings := newSettingsService(t, db)
	sink := &recordingSink{}
	player := audio.NewPlayer(func() audio.Sink { return sink }, testLogger())

	chat := NewChatService(characters, messages, settings, conv, player, speechCache, nil, true, testLogger())
	return chat, characters, messages, sink
}

func firstCharacter(t *testing.T, characters *CharacterService) models.Character {
	t.Helper()
	list, err := characters.List()
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0]
}

func TestSendPersistsBothSides(t *testing.T) {
	conv := &fakeConversationalist{
		answerText: "Lions live in groups called prides.",
		sources:    []ai.Source{{Title: "Lions", URL: "https://example.com/lions"}},
	}
	chat, characters, messages, _ := newChatFixture(t, conv, nil)
	char := firstCharacter(t, characters)

	result, err := chat.Send(context.Background(), char.ID, "Tell me about lions")
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, result.UserMessage.Role)
	assert.Equal(t, "Tell me about lions", result.UserMessage.Content)
	assert.Equal(t, models.RoleAssistant, result.Reply.Role)
	assert.Equal(t, conv.answerText, result.Reply.Content)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Lions", result.Sources[0].Title)

	history, err := messages.List(char.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
}

func TestSendUnknownCharacter(t *testing.T) {
	chat, _, _, _ := newChatFixture(t, &fakeConversationalist{answerText: "x"}, nil)

	_, err := chat.Send(context.Background(), "missing", "hello")
	require.Error(t, err)
	assert.Equal(t, 404, pkgerrors.FromError(err).StatusCode)
}

func TestSendSpeaksReply(t *testing.T) {
	conv := &fakeConversationalist{answerText: "Hello little explorer!"}
	chat, characters, _, sink := newChatFixture(t, conv, nil)
	char := firstCharacter(t, characters)

	_, err := chat.Send(context.Background(), char.ID, "hi")
	require.NoError(t, err)

	waitFor(t, func() bool { _, closed := sink.snapshot(); return closed >= 1 })
	starts, _ := sink.snapshot()
	assert.Equal(t, 1, starts)
}

func TestSpeechCacheSkipsSynthesis(t *testing.T) {
	conv := &fakeConversationalist{answerText: "Cached hello."}
	speechCache := cache.NewMemoryCache(time.Minute, 16)
	chat, characters, _, sink := newChatFixture(t, conv, speechCache)
	char := firstCharacter(t, characters)

	_, err := chat.Send(context.Background(), char.ID, "hi")
	require.NoError(t, err)
	waitFor(t, func() bool { _, closed := sink.snapshot(); return closed >= 1 })
	require.Equal(t, 1, conv.calls())

	// same utterance again: served from cache, synthesizer untouched
	_, err = chat.Send(context.Background(), char.ID, "hi")
	require.NoError(t, err)
	waitFor(t, func() bool { _, closed := sink.snapshot(); return closed >= 2 })
	assert.Equal(t, 1, conv.calls())
}

func TestStaleSpeechIsDropped(t *testing.T) {
	gate := make(chan struct{})
	conv := &fakeConversationalist{answerText: "Slow reply.", synthGate: gate}
	chat, characters, _, sink := newChatFixture(t, conv, nil)
	char := firstCharacter(t, characters)

	// first turn blocks inside synthesis
	_, err := chat.Send(context.Background(), char.ID, "first")
	require.NoError(t, err)
	waitFor(t, func() bool { return conv.calls() == 1 })

	// second turn supersedes it before its speech is ready
	conv.mu.Lock()
	conv.synthGate = nil
	conv.mu.Unlock()
	_, err = chat.Send(context.Background(), char.ID, "second")
	require.NoError(t, err)
	waitFor(t, func() bool { _, closed := sink.snapshot(); return closed >= 1 })

	// now the first synthesis completes; its result must not play
	close(gate)
	time.Sleep(50 * time.Millisecond)

	starts, _ := sink.snapshot()
	assert.Equal(t, 1, starts, "superseded speech must not reach the player")
}

func TestStopSpeechInvalidatesPending(t *testing.T) {
	gate := make(chan struct{})
	conv := &fakeConversationalist{answerText: "On the way.", synthGate: gate}
	chat, characters, _, sink := newChatFixture(t, conv, nil)
	char := firstCharacter(t, characters)

	_, err := chat.Send(context.Background(), char.ID, "hello")
	require.NoError(t, err)
	waitFor(t, func() bool { return conv.calls() == 1 })

	chat.StopSpeech()
	close(gate)
	time.Sleep(50 * time.Millisecond)

	starts, _ := sink.snapshot()
	assert.Zero(t, starts)
}
