package podcast

import (
	"context"
	"errors"
	"fmt"

	"blogcast/internal/agent"
	"blogcast/internal/summarizer"
	"blogcast/internal/tts"
)

// Narration is a summary together with its synthesized speech.
type Narration struct {
	Summary string
	Audio   *tts.Audio
}

// Narrator turns page content into spoken audio.
type Narrator interface {
	Narrate(ctx context.Context, content string, sourceURL string) (*Narration, error)
}

type agentRunner interface {
	Run(ctx context.Context, content string) (*agent.Response, error)
}

// AgentNarrator lets a tool-calling agent write the summary and trigger speech
// synthesis itself.
type AgentNarrator struct {
	agent agentRunner
}

func NewAgentNarrator(a agentRunner) *AgentNarrator {
	return &AgentNarrator{agent: a}
}

func (n *AgentNarrator) Narrate(ctx context.Context, content string, _ string) (*Narration, error) {
	resp, err := n.agent.Run(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("run agent: %w", err)
	}

	if len(resp.Audio) == 0 {
		if resp.ToolErr != nil && !errors.Is(resp.ToolErr, tts.ErrEmptyAudio) {
			return nil, fmt.Errorf("synthesize speech: %w", resp.ToolErr)
		}
		return nil, ErrNoAudio
	}

	first := resp.Audio[0]

	return &Narration{Summary: first.Text, Audio: &first.Audio}, nil
}

// LocalNarrator summarizes with a Summarizer and then calls the synthesizer
// directly.
type LocalNarrator struct {
	summarizer      summarizer.Summarizer
	synthesizer     tts.Synthesizer
	maxSummaryChars int
}

func NewLocalNarrator(s summarizer.Summarizer, synthesizer tts.Synthesizer, maxSummaryChars int) *LocalNarrator {
	return &LocalNarrator{
		summarizer:      s,
		synthesizer:     synthesizer,
		maxSummaryChars: maxSummaryChars,
	}
}

func (n *LocalNarrator) Narrate(ctx context.Context, content string, sourceURL string) (*Narration, error) {
	summary, err := n.summarizer.Summarize(ctx, summarizer.Input{Text: content, SourceURL: sourceURL})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	summary = summarizer.ClampSummary(summary, n.maxSummaryChars)
	if summary == "" {
		return nil, errors.New("summarize: empty summary")
	}

	audio, err := n.synthesizer.Synthesize(ctx, summary)
	if err != nil {
		if errors.Is(err, tts.ErrEmptyAudio) {
			return nil, ErrNoAudio
		}
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	return &Narration{Summary: summary, Audio: audio}, nil
}
