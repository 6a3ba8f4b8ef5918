package ai

import "context"

// Encoding tags the wire format of synthesized speech
type Encoding string

const (
	// EncodingPCM is raw 16-bit little-endian mono samples, no container
	EncodingPCM Encoding = "pcm"
	// EncodingFile is a standard compressed audio container (WAV, MP3)
	EncodingFile Encoding = "file"
)

// PCMSampleRate is the fixed rate of the primary provider's speech output
const PCMSampleRate = 24000

// SpeechResult is one synthesized utterance. Exactly one encoding applies;
// consumers must switch on Encoding rather than sniff Data.
type SpeechResult struct {
	Encoding   Encoding
	Data       []byte
	SampleRate int
}

// Source is a grounding citation attached to a search-augmented answer
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Answer is the uniform result of one routed query. Text is never empty;
// ImageURL is set only when image generation succeeded; Sources is never nil.
type Answer struct {
	Text     string   `json:"text"`
	ImageURL string   `json:"image_url,omitempty"`
	Sources  []Source `json:"sources"`
}

// Verdict is the result of a content-safety classification
type Verdict struct {
	Safe   bool   `json:"safe"`
	Reason string `json:"reason,omitempty"`
}

// QueryOptions carries per-call knobs for text generation
type QueryOptions struct {
	Language      string
	SearchEnabled bool
}

// SpeechOptions carries per-call knobs for speech synthesis
type SpeechOptions struct {
	Language string
}

// Settings is the provider configuration for one call, passed by value.
// It is a projection of the persisted settings record; the ai package never
// reaches into shared state.
type Settings struct {
	Language      string
	SearchEnabled bool

	APIProvider   string
	VoiceProvider string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiTTSModel   string
	GeminiImageModel string

	CustomAPIURL string
	CustomAPIKey string
	CustomModel  string

	CustomTTSURL   string
	CustomTTSKey   string
	CustomTTSModel string
	CustomTTSVoice string
}

// Provider names, matching the settings selectors
const (
	ProviderGoogle = "google"
	ProviderCustom = "custom"
)

// Provider is one text/speech backend. The set is closed: the primary
// Gemini backend and the OpenAI-compatible custom backend.
type Provider interface {
	Name() string
	AnswerQuery(ctx context.Context, query, systemPrompt string, opts QueryOptions) (*Answer, error)
	SynthesizeSpeech(ctx context.Context, text, voice string, opts SpeechOptions) (*SpeechResult, error)
}
