package tts

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "https://api.elevenlabs.io"
	defaultVoiceID      = "JBFqnCBsd6RMkjVDRZzb"
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "pcm_22050"
	defaultStability    = 0.5
	defaultSimilarity   = 0.75
	defaultTimeout      = 60 * time.Second
)

// ElevenLabsClient implements Synthesizer using the ElevenLabs
// text-to-speech-with-timestamps endpoint, which returns base64 audio.
type ElevenLabsClient struct {
	apiKey       string
	baseURL      string
	voiceID      string
	modelID      string
	outputFormat string
	sampleRate   int
	stability    float64
	similarity   float64
	httpClient   *http.Client
}

type ElevenLabsConfig struct {
	APIKey       string
	BaseURL      string
	VoiceID      string
	ModelID      string
	OutputFormat string  // pcm_<sample rate>, e.g. pcm_22050
	Stability    float64 // negative means default
	Similarity   float64 // negative means default
	HTTPClient   *http.Client
}

func NewElevenLabsClient(cfg ElevenLabsConfig) (*ElevenLabsClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ElevenLabs API key is empty")
	}

	c := &ElevenLabsClient{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		baseURL:      strings.TrimRight(cmp.Or(strings.TrimSpace(cfg.BaseURL), defaultBaseURL), "/"),
		voiceID:      cmp.Or(strings.TrimSpace(cfg.VoiceID), defaultVoiceID),
		modelID:      cmp.Or(strings.TrimSpace(cfg.ModelID), defaultModelID),
		outputFormat: cmp.Or(strings.TrimSpace(cfg.OutputFormat), defaultOutputFormat),
		stability:    cfg.Stability,
		similarity:   cfg.Similarity,
		httpClient:   cfg.HTTPClient,
	}

	if c.stability < 0 {
		c.stability = defaultStability
	}
	if c.similarity < 0 {
		c.similarity = defaultSimilarity
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	rate, err := SampleRate(c.outputFormat)
	if err != nil {
		return nil, err
	}
	c.sampleRate = rate

	return c, nil
}

// SampleRate parses the sample rate out of a pcm_<rate> output format.
func SampleRate(format string) (int, error) {
	raw, ok := strings.CutPrefix(format, "pcm_")
	if !ok {
		return 0, fmt.Errorf("unsupported output format %q", format)
	}

	rate, err := strconv.Atoi(raw)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("invalid sample rate in output format %q", format)
	}

	return rate, nil
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsResponse struct {
	AudioBase64 string `json:"audio_base64"`
}

// Synthesize sends text verbatim and returns the provider's base64 audio.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) (*Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is empty")
	}

	endpoint := fmt.Sprintf(
		"%s/v1/text-to-speech/%s/with-timestamps?output_format=%s",
		c.baseURL,
		url.PathEscape(c.voiceID),
		url.QueryEscape(c.outputFormat),
	)

	body, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ElevenLabs API error: %s - %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var ttsResp ttsResponse
	if err = json.NewDecoder(resp.Body).Decode(&ttsResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if strings.TrimSpace(ttsResp.AudioBase64) == "" {
		return nil, ErrEmptyAudio
	}

	return &Audio{
		Base64:     ttsResp.AudioBase64,
		Format:     c.outputFormat,
		SampleRate: c.sampleRate,
	}, nil
}
