package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"blogcast/internal/summarizer"

	"github.com/openai/openai-go/v3"
)

const speechToolName = "text_to_speech"

type speechArgs struct {
	Text string `json:"text"`
}

type toolResult struct {
	Status     string `json:"status"`
	Characters int    `json:"characters,omitempty"`
	Error      string `json:"error,omitempty"`
}

func speechTool() openai.ChatCompletionToolUnionParam {
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        speechToolName,
		Description: openai.String("Convert text to spoken audio with ElevenLabs. Returns whether audio was generated."),
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "The podcast summary to be read aloud.",
				},
			},
			"required": []string{"text"},
		},
	})
}

func (a *Agent) callTool(ctx context.Context, name string, arguments string, resp *Response) string {
	if name != speechToolName {
		return encodeToolResult(toolResult{Status: "error", Error: fmt.Sprintf("unknown tool %q", name)})
	}

	var args speechArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return encodeToolResult(toolResult{Status: "error", Error: "arguments must be JSON with a text field"})
	}

	if strings.TrimSpace(args.Text) == "" {
		return encodeToolResult(toolResult{Status: "error", Error: "text is empty"})
	}

	text := summarizer.ClampSummary(args.Text, a.maxSummaryChars)

	audio, err := a.synthesizer.Synthesize(ctx, text)
	if err != nil {
		resp.ToolErr = err

		a.log.ErrorContext(ctx, "Failed to synthesize speech in agent tool",
			"error", err,
			"tool", name,
			"textLen", utf8.RuneCountInString(text))

		return encodeToolResult(toolResult{Status: "error", Error: err.Error()})
	}

	resp.Audio = append(resp.Audio, SpokenAudio{Text: text, Audio: *audio})

	return encodeToolResult(toolResult{Status: "ok", Characters: utf8.RuneCountInString(text)})
}

func encodeToolResult(r toolResult) string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"status":"error"}`
	}
	return string(b)
}
