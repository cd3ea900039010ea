package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	localSeed        int64 = 42
	localPlaceholder       = "local"

	localPrompt = `You are a summarization model. Summarize the text for a short spoken podcast.
The summary must be between %d and %d tokens long. Output only the summary as plain prose.`
)

// LocalSummarizer calls a self-hosted model through an OpenAI-compatible
// endpoint with a fixed length window and greedy decoding.
type LocalSummarizer struct {
	client     openai.Client
	model      string
	maxTokens  int64
	minTokens  int64
	inputChars int
}

type LocalConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxTokens  int64
	MinTokens  int64
	InputChars int
}

func NewLocalSummarizer(cfg LocalConfig) (*LocalSummarizer, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("local summarizer base URL is empty")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("local summarizer model is empty")
	}
	if cfg.MaxTokens <= 0 || cfg.MinTokens < 0 || cfg.MinTokens > cfg.MaxTokens {
		return nil, fmt.Errorf("invalid token window (min = %d, max = %d)", cfg.MinTokens, cfg.MaxTokens)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = localPlaceholder
	}

	return &LocalSummarizer{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
		),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		minTokens:  cfg.MinTokens,
		inputChars: cfg.InputChars,
	}, nil
}

func (s *LocalSummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	text := TruncateInput(strings.TrimSpace(input.Text), s.inputChars)
	if text == "" {
		return "", errors.New("input is empty")
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(localPrompt, s.minTokens, s.maxTokens)),
			openai.UserMessage(text),
		},
		MaxTokens:   openai.Int(s.maxTokens),
		Temperature: openai.Float(0),
		Seed:        openai.Int(localSeed),
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("summary is empty (finishReason = %s)", resp.Choices[0].FinishReason)
	}

	return summary, nil
}
