package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"blogcast/internal/summarizer"
	"blogcast/internal/tts"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	Name = "Blog to Podcast Agent"

	defaultModel    = openai.ChatModelGPT4o
	defaultMaxSteps = 4

	description = "You are an AI agent that can generate audio using the ElevenLabs API."
	taskPrefix  = "Convert this blog content to a podcast:\n\n"
)

// Response is the outcome of one agent run. Audio is empty when the model
// never called the speech tool successfully.
type Response struct {
	Content string
	// Audio holds one entry per successful speech tool call, in call order.
	Audio []SpokenAudio
	// ToolErr is the last speech tool failure, if any.
	ToolErr error
}

// SpokenAudio pairs synthesized audio with the exact text it was made from.
type SpokenAudio struct {
	Text  string
	Audio tts.Audio
}

type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxSteps        int
	InputChars      int
	MaxSummaryChars int
}

// Agent drives a chat model that has a single text-to-speech tool.
type Agent struct {
	client          openai.Client
	model           string
	synthesizer     tts.Synthesizer
	maxSteps        int
	inputChars      int
	maxSummaryChars int
	log             *slog.Logger
}

func New(cfg Config, synthesizer tts.Synthesizer, log *slog.Logger) (*Agent, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is empty")
	}
	if synthesizer == nil {
		return nil, errors.New("synthesizer is nil")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	return &Agent{
		client:          openai.NewClient(opts...),
		model:           model,
		synthesizer:     synthesizer,
		maxSteps:        maxSteps,
		inputChars:      cfg.InputChars,
		maxSummaryChars: cfg.MaxSummaryChars,
		log:             log,
	}, nil
}

func (a *Agent) Run(ctx context.Context, content string) (*Response, error) {
	content = summarizer.TruncateInput(strings.TrimSpace(content), a.inputChars)
	if content == "" {
		return nil, errors.New("content is empty")
	}

	params := openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(a.maxSummaryChars)),
			openai.UserMessage(taskPrefix + content),
		},
		Tools: []openai.ChatCompletionToolUnionParam{speechTool()},
	}

	resp := &Response{}

	for step := range a.maxSteps {
		completion, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("do request (step = %d): %w", step, err)
		}

		if len(completion.Choices) == 0 {
			return nil, fmt.Errorf("no choices in response (step = %d)", step)
		}

		message := completion.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			resp.Content = strings.TrimSpace(message.Content)
			return resp, nil
		}

		params.Messages = append(params.Messages, message.ToParam())

		for _, call := range message.ToolCalls {
			result := a.callTool(ctx, call.Function.Name, call.Function.Arguments, resp)
			params.Messages = append(params.Messages, openai.ToolMessage(result, call.ID))
		}
	}

	a.log.WarnContext(ctx, "Agent step limit is reached",
		"agent", Name,
		"maxSteps", a.maxSteps,
		"audioCount", len(resp.Audio))

	return resp, nil
}

func systemPrompt(maxSummaryChars int) string {
	var b strings.Builder

	b.WriteString(description)
	b.WriteString("\n\nInstructions:\n")
	fmt.Fprintf(&b, "- Create a concise summary of the provided blog content that is NO MORE than %d characters long.\n",
		maxSummaryChars)
	b.WriteString("- The summary should capture the main points while being engaging and conversational.\n")
	fmt.Fprintf(&b, "- Use the %s tool to convert the summary to audio.\n", speechToolName)
	fmt.Fprintf(&b, "- Ensure the summary stays within %d characters to avoid ElevenLabs API limits.\n",
		maxSummaryChars)

	return b.String()
}
