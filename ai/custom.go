package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMissingEndpoint is returned before any network I/O when the custom
// provider is selected without a base URL.
var ErrMissingEndpoint = errors.New("custom provider endpoint is not configured")

// CustomProvider talks to an OpenAI-compatible backend: chat completions for
// text and /audio/speech for synthesis. The custom provider decides search
// itself, so the search toggle has no effect here.
type CustomProvider struct {
	baseURL  string
	apiKey   string
	model    string
	ttsURL   string
	ttsKey   string
	ttsModel string
	ttsVoice string
	client   *http.Client
}

// NewCustomProvider creates a provider from the custom blocks of the settings
func NewCustomProvider(st Settings) *CustomProvider {
	return &CustomProvider{
		baseURL:  st.CustomAPIURL,
		apiKey:   st.CustomAPIKey,
		model:    st.CustomModel,
		ttsURL:   st.CustomTTSURL,
		ttsKey:   st.CustomTTSKey,
		ttsModel: st.CustomTTSModel,
		ttsVoice: st.CustomTTSVoice,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies this provider in logs
func (p *CustomProvider) Name() string { return ProviderCustom }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnswerQuery sends a two-message exchange to the chat-completions endpoint.
// Missing configuration fails before any request is issued.
func (p *CustomProvider) AnswerQuery(ctx context.Context, query, systemPrompt string, _ QueryOptions) (*Answer, error) {
	if p.baseURL == "" {
		return nil, ErrMissingEndpoint
	}
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		Temperature: 0.7,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("custom provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("custom provider returned status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode custom provider response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("custom provider error: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return nil, errors.New("custom provider returned no choices")
	}

	return &Answer{
		Text:    decoded.Choices[0].Message.Content,
		Sources: []Source{},
	}, nil
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// SynthesizeSpeech posts to the /audio/speech endpoint and returns the raw
// container bytes. The configured custom voice wins over the character's.
func (p *CustomProvider) SynthesizeSpeech(ctx context.Context, text, voice string, _ SpeechOptions) (*SpeechResult, error) {
	if p.ttsURL == "" {
		return nil, ErrMissingEndpoint
	}
	if p.ttsKey == "" {
		return nil, ErrMissingAPIKey
	}

	if p.ttsVoice != "" {
		voice = p.ttsVoice
	}

	payload, err := json.Marshal(speechRequest{
		Model: p.ttsModel,
		Input: text,
		Voice: voice,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.ttsURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.ttsKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("custom tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("custom tts returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom tts response: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("custom tts returned an empty body")
	}

	return &SpeechResult{
		Encoding: EncodingFile,
		Data:     data,
	}, nil
}
