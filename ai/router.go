package ai

import (
	"context"
	"strings"
	"sync"

	"magic-encyclopedia/backend/pkg/logger"
)

// Canned responses. Provider failures never surface as errors to the child;
// they degrade to these fixed strings.
const (
	apologyText      = "Oh oh! I couldn't find that out right now."
	imageAckText     = "Here is the picture I drew for you!"
	imageFailText    = "I tried really hard, but my crayons aren't working right now. Ask me again in a bit!"
	clarifySubject   = "Ooh, I'd love to draw for you! What should the picture show?"
	emptyAnswerText  = "I'm sorry, I couldn't find an answer to that."
	defaultTTSModel  = "gemini-2.5-flash-preview-tts"
	defaultImageGen  = "imagen-3.0-generate-002"
	defaultTextModel = "gemini-3-flash-preview"
)

// Router decides, per user message, which backend to call and normalizes
// every outcome into one Answer shape.
type Router struct {
	log *logger.Logger

	mu        sync.Mutex
	gemini    *GeminiProvider
	geminiKey string
}

// NewRouter creates a provider router
func NewRouter(log *logger.Logger) *Router {
	return &Router{log: log}
}

// Answer routes one query: image requests go to the image path, everything
// else to the knowledge path. It always returns a non-empty Text and a
// non-nil Sources slice.
func (r *Router) Answer(ctx context.Context, query, characterPrompt string, st Settings) Answer {
	applyModelDefaults(&st)

	if subject, isImage := ExtractImageSubject(query); isImage {
		return r.answerImage(ctx, subject, st)
	}

	return r.answerKnowledge(ctx, query, characterPrompt, st)
}

func (r *Router) answerImage(ctx context.Context, subject string, st Settings) Answer {
	if strings.TrimSpace(subject) == "" {
		return Answer{Text: clarifySubject, Sources: []Source{}}
	}

	provider, err := r.geminiProvider(ctx, st)
	if err != nil {
		r.log.LogError(err, "image path unavailable")
		return Answer{Text: imageFailText, Sources: []Source{}}
	}

	imageURL, err := provider.GenerateImage(ctx, subject)
	if err != nil {
		r.log.LogError(err, "image generation failed", "subject", subject)
		return Answer{Text: imageFailText, Sources: []Source{}}
	}

	return Answer{Text: imageAckText, ImageURL: imageURL, Sources: []Source{}}
}

func (r *Router) answerKnowledge(ctx context.Context, query, characterPrompt string, st Settings) Answer {
	systemPrompt := BuildSystemPrompt(characterPrompt, st.Language)

	provider, err := r.textProvider(ctx, st)
	if err != nil {
		r.log.LogError(err, "text provider unavailable", "provider", st.APIProvider)
		return Answer{Text: apologyText, Sources: []Source{}}
	}

	answer, err := provider.AnswerQuery(ctx, query, systemPrompt, QueryOptions{
		Language:      st.Language,
		SearchEnabled: st.SearchEnabled,
	})
	if err != nil {
		r.log.WithProvider(provider.Name()).LogError(err, "query failed")
		return Answer{Text: apologyText, Sources: []Source{}}
	}

	if answer.Text == "" {
		answer.Text = emptyAnswerText
	}
	if answer.Sources == nil {
		answer.Sources = []Source{}
	}
	return *answer
}

// Synthesize produces speech for the assistant text, or nil when synthesis
// is unavailable. Callers treat nil as "skip playback".
func (r *Router) Synthesize(ctx context.Context, text, voice string, st Settings) *SpeechResult {
	applyModelDefaults(&st)

	provider, err := r.speechProvider(ctx, st)
	if err != nil {
		r.log.LogError(err, "speech provider unavailable", "provider", st.VoiceProvider)
		return nil
	}

	result, err := provider.SynthesizeSpeech(ctx, text, voice, SpeechOptions{Language: st.Language})
	if err != nil {
		r.log.WithProvider(provider.Name()).LogError(err, "speech synthesis failed")
		return nil
	}
	return result
}

// ClassifyContent runs the safety gate over candidate character content.
// Anything that cannot be positively judged safe is unsafe.
func (r *Router) ClassifyContent(ctx context.Context, text string, st Settings) Verdict {
	applyModelDefaults(&st)

	provider, err := r.geminiProvider(ctx, st)
	if err != nil {
		r.log.LogError(err, "safety gate unavailable")
		return Verdict{Safe: false, Reason: "Service error"}
	}
	return provider.ClassifySafety(ctx, text)
}

func (r *Router) textProvider(ctx context.Context, st Settings) (Provider, error) {
	if st.APIProvider == ProviderCustom {
		return NewCustomProvider(st), nil
	}
	return r.geminiProvider(ctx, st)
}

func (r *Router) speechProvider(ctx context.Context, st Settings) (Provider, error) {
	if st.VoiceProvider == ProviderCustom {
		return NewCustomProvider(st), nil
	}
	return r.geminiProvider(ctx, st)
}

// geminiProvider memoizes the Gemini client per API key so a settings edit
// picks up a new key without restarting.
func (r *Router) geminiProvider(ctx context.Context, st Settings) (*GeminiProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gemini != nil && r.geminiKey == st.GeminiAPIKey {
		return r.gemini, nil
	}

	provider, err := NewGeminiProvider(ctx, st)
	if err != nil {
		return nil, err
	}

	r.gemini = provider
	r.geminiKey = st.GeminiAPIKey
	return provider, nil
}

func applyModelDefaults(st *Settings) {
	if st.GeminiModel == "" {
		st.GeminiModel = defaultTextModel
	}
	if st.GeminiTTSModel == "" {
		st.GeminiTTSModel = defaultTTSModel
	}
	if st.GeminiImageModel == "" {
		st.GeminiImageModel = defaultImageGen
	}
}
