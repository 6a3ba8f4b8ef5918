package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned before any network I/O when a provider is
// selected without the credentials it needs.
var ErrMissingAPIKey = errors.New("provider API key is not configured")

// GeminiProvider is the primary backend: text with optional search
// grounding, speech, image generation and safety classification.
type GeminiProvider struct {
	client     *genai.Client
	model      string
	ttsModel   string
	imageModel string
}

// NewGeminiProvider creates a Gemini-backed provider from call settings
func NewGeminiProvider(ctx context.Context, st Settings) (*GeminiProvider, error) {
	if st.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  st.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{
		client:     client,
		model:      st.GeminiModel,
		ttsModel:   st.GeminiTTSModel,
		imageModel: st.GeminiImageModel,
	}, nil
}

// Name identifies this provider in logs
func (p *GeminiProvider) Name() string { return ProviderGoogle }

// AnswerQuery sends the query with the composed system prompt, attaching the
// web-search tool when enabled, and collects grounding citations.
func (p *GeminiProvider) AnswerQuery(ctx context.Context, query, systemPrompt string, opts QueryOptions) (*Answer, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if opts.SearchEnabled {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(query), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini returned an empty answer")
	}

	return &Answer{
		Text:    text,
		Sources: groundingSources(resp),
	}, nil
}

// SynthesizeSpeech requests audio-modality output with a prebuilt voice.
// The returned payload is raw 24 kHz mono 16-bit PCM.
func (p *GeminiProvider) SynthesizeSpeech(ctx context.Context, text, voice string, opts SpeechOptions) (*SpeechResult, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction:  genai.NewContentFromText(buildSpeechInstruction(voice, opts.Language), genai.RoleUser),
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.ttsModel, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini tts failed: %w", err)
	}

	data := inlineAudioData(resp)
	if len(data) == 0 {
		return nil, errors.New("gemini tts returned no audio payload")
	}

	return &SpeechResult{
		Encoding:   EncodingPCM,
		Data:       data,
		SampleRate: PCMSampleRate,
	}, nil
}

// GenerateImage renders the subject at a fixed square aspect ratio and
// returns the result as a data URI.
func (p *GeminiProvider) GenerateImage(ctx context.Context, subject string) (string, error) {
	resp, err := p.client.Models.GenerateImages(ctx, p.imageModel, subject, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
	})
	if err != nil {
		return "", fmt.Errorf("gemini image generation failed: %w", err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", errors.New("gemini returned no image")
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.ImageBytes)), nil
}

// classifyPrompt wraps candidate text in the safety-check instruction
func classifyPrompt(text string) string {
	return fmt.Sprintf(`Perform an 8-year-old child safety check on the following character description or message.
Flag any NSFW, violence, horror, or inappropriate themes.

Content: %q`, text)
}

// ClassifySafety judges whether free text is appropriate for the target age
// group. The response is constrained to strict JSON; any transport or parse
// failure fails closed.
func (p *GeminiProvider) ClassifySafety(ctx context.Context, text string) Verdict {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"safe":   {Type: genai.TypeBoolean},
				"reason": {Type: genai.TypeString},
			},
			Required: []string{"safe"},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(classifyPrompt(text)), cfg)
	if err != nil {
		return Verdict{Safe: false, Reason: "Service error"}
	}

	return parseVerdict([]byte(resp.Text()))
}

// parseVerdict decodes a classification payload, failing closed on anything
// malformed or missing the required safe field.
func parseVerdict(raw []byte) Verdict {
	var decoded struct {
		Safe   *bool  `json:"safe"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Safe == nil {
		return Verdict{Safe: false, Reason: "Parsing error"}
	}
	return Verdict{Safe: *decoded.Safe, Reason: decoded.Reason}
}

func groundingSources(resp *genai.GenerateContentResponse) []Source {
	sources := []Source{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return sources
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil {
			continue
		}
		sources = append(sources, Source{Title: chunk.Web.Title, URL: chunk.Web.URI})
	}
	return sources
}

func inlineAudioData(resp *genai.GenerateContentResponse) []byte {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}
