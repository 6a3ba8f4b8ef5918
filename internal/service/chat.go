package service

import (
	"context"
	"sync/atomic"
	"time"

	"magic-encyclopedia/backend/ai"
	"magic-encyclopedia/backend/audio"
	"magic-encyclopedia/backend/internal/models"
	"magic-encyclopedia/backend/pkg/cache"
	"magic-encyclopedia/backend/pkg/logger"
	"magic-encyclopedia/backend/shared/observability"
)

// speechTimeout bounds the background synthesis call for one turn
const speechTimeout = 60 * time.Second

// Conversationalist produces answers and speech for a turn. Implemented by
// ai.Router.
type Conversationalist interface {
	Answer(ctx context.Context, query, characterPrompt string, st ai.Settings) ai.Answer
	Synthesize(ctx context.Context, text, voice string, st ai.Settings) *ai.SpeechResult
}

// SendResult is one completed conversation turn
type SendResult struct {
	UserMessage models.Message `json:"userMessage"`
	Reply       models.Message `json:"reply"`
	Sources     []ai.Source    `json:"sources"`
}

// ChatService orchestrates a conversation turn: persist the question, route
// it to a provider, persist the reply, then speak it in the background.
type ChatService struct {
	characters *CharacterService
	messages   *MessageService
	settings   *SettingsService
	router     Conversationalist
	player     *audio.Player
	cache      cache.SpeechCache
	metrics    *observability.Metrics
	log        *logger.Logger

	playbackEnabled bool

	// turn increments on every Send; a synthesis result whose token is no
	// longer newest belongs to a superseded turn and is dropped.
	turn atomic.Uint64
}

// NewChatService creates the conversation orchestrator
func NewChatService(
	characters *CharacterService,
	messages *MessageService,
	settings *SettingsService,
	router Conversationalist,
	player *audio.Player,
	speechCache cache.SpeechCache,
	metrics *observability.Metrics,
	playbackEnabled bool,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		characters:      characters,
		messages:        messages,
		settings:        settings,
		router:          router,
		player:          player,
		cache:           speechCache,
		metrics:         metrics,
		playbackEnabled: playbackEnabled,
		log:             log,
	}
}

// Send runs one conversation turn for a character
func (s *ChatService) Send(ctx context.Context, characterID, content string) (*SendResult, error) {
	character, err := s.characters.Get(characterID)
	if err != nil {
		return nil, err
	}

	st, err := s.settings.ProviderSettings(ctx)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.messages.Append(characterID, models.RoleUser, content, "")
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ProviderCalls.Add(ctx, 1)
	}
	answer := s.router.Answer(ctx, content, character.SystemPrompt, st)

	reply, err := s.messages.Append(characterID, models.RoleAssistant, answer.Text, answer.ImageURL)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ChatTurns.Add(ctx, 1)
	}

	s.Speak(character.ID, answer.Text, character.Voice, st)

	return &SendResult{
		UserMessage: *userMsg,
		Reply:       *reply,
		Sources:     answer.Sources,
	}, nil
}

// Speak voices a piece of text with the character's voice in the background.
// Also used to replay an earlier reply.
func (s *ChatService) Speak(characterID, text, voice string, st ai.Settings) {
	if !s.playbackEnabled || text == "" {
		return
	}
	token := s.turn.Add(1)
	go s.speak(token, characterID, text, voice, st)
}

// StopSpeech cancels any speech currently playing and invalidates pending
// synthesis results.
func (s *ChatService) StopSpeech() {
	s.turn.Add(1)
	if s.player != nil {
		s.player.Stop()
	}
}

func (s *ChatService) speak(token uint64, characterID, text, voice string, st ai.Settings) {
	ctx, cancel := context.WithTimeout(context.Background(), speechTimeout)
	defer cancel()

	log := s.log.WithCharacter(characterID).WithProvider(st.VoiceProvider)

	speech := s.cachedSpeech(ctx, text, voice, st)
	if speech == nil {
		return
	}

	buf, err := audio.Decode(*speech)
	if err != nil {
		log.LogError(err, "failed to decode speech")
		return
	}

	// A newer turn started while we were synthesizing; its speech wins.
	if s.turn.Load() != token {
		return
	}

	s.player.Play(buf)
}

func (s *ChatService) cachedSpeech(ctx context.Context, text, voice string, st ai.Settings) *ai.SpeechResult {
	key := cache.Key(st.VoiceProvider, voice, st.Language, text)

	if s.cache != nil {
		if entry, ok := s.cache.Get(ctx, key); ok {
			if s.metrics != nil {
				s.metrics.SpeechCacheHits.Add(ctx, 1)
			}
			return &ai.SpeechResult{
				Encoding:   ai.Encoding(entry.Encoding),
				Data:       entry.Data,
				SampleRate: entry.SampleRate,
			}
		}
	}

	if s.metrics != nil {
		s.metrics.ProviderCalls.Add(ctx, 1)
	}
	speech := s.router.Synthesize(ctx, text, voice, st)
	if speech == nil {
		if s.metrics != nil {
			s.metrics.ProviderFailures.Add(ctx, 1)
		}
		return nil
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, &cache.SpeechEntry{
			Encoding:   string(speech.Encoding),
			Data:       speech.Data,
			SampleRate: speech.SampleRate,
		})
	}
	return speech
}
