package podcast

import (
	"fmt"
	"log/slog"
	"strings"

	"blogcast/internal/agent"
	"blogcast/internal/config"
	"blogcast/internal/domain"
	"blogcast/internal/summarizer"
	"blogcast/internal/tts"
)

// Keys are the credentials used for a single request.
type Keys struct {
	OpenAI     string
	ElevenLabs string
}

// Fallback fills empty keys from def.
func (k Keys) Fallback(def Keys) Keys {
	if strings.TrimSpace(k.OpenAI) == "" {
		k.OpenAI = def.OpenAI
	}
	if strings.TrimSpace(k.ElevenLabs) == "" {
		k.ElevenLabs = def.ElevenLabs
	}
	return k
}

// NarratorFactory builds the narrator for one request.
type NarratorFactory interface {
	Narrator(mode domain.Mode, keys Keys) (Narrator, error)
}

// ClientFactory builds provider clients from config and per-request keys.
type ClientFactory struct {
	cfg   config.Config
	local summarizer.Summarizer
	log   *slog.Logger
}

func NewClientFactory(cfg config.Config, log *slog.Logger) (*ClientFactory, error) {
	f := &ClientFactory{cfg: cfg, log: log}

	if cfg.SummarizerProvider == config.ProviderLocal {
		local, err := summarizer.NewLocalSummarizer(summarizer.LocalConfig{
			BaseURL:    cfg.LocalBaseURL,
			Model:      cfg.LocalModel,
			MaxTokens:  cfg.LocalMaxTokens,
			MinTokens:  cfg.LocalMinTokens,
			InputChars: cfg.LocalInputChars,
		})
		if err != nil {
			return nil, fmt.Errorf("create local summarizer: %w", err)
		}
		f.local = summarizer.NewCached(local, cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	}

	return f, nil
}

// RequiresOpenAI reports whether mode needs an OpenAI key.
func (f *ClientFactory) RequiresOpenAI(mode domain.Mode) bool {
	return mode == domain.ModeAgent || f.cfg.SummarizerProvider == config.ProviderOpenAI
}

func (f *ClientFactory) Narrator(mode domain.Mode, keys Keys) (Narrator, error) {
	if strings.TrimSpace(keys.ElevenLabs) == "" {
		return nil, ErrMissingKeys
	}
	if f.RequiresOpenAI(mode) && strings.TrimSpace(keys.OpenAI) == "" {
		return nil, ErrMissingKeys
	}

	synthesizer, err := tts.NewElevenLabsClient(tts.ElevenLabsConfig{
		APIKey:       keys.ElevenLabs,
		BaseURL:      f.cfg.TTSBaseURL,
		VoiceID:      f.cfg.TTSVoiceID,
		ModelID:      f.cfg.TTSModelID,
		OutputFormat: f.cfg.TTSOutputFormat,
		Stability:    -1,
		Similarity:   -1,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}

	switch mode {
	case domain.ModeAgent:
		a, err := agent.New(agent.Config{
			APIKey:          keys.OpenAI,
			Model:           f.cfg.AgentModel,
			MaxSteps:        f.cfg.AgentMaxSteps,
			InputChars:      f.cfg.AgentInputChars,
			MaxSummaryChars: f.cfg.MaxSummaryChars,
		}, synthesizer, f.log)
		if err != nil {
			return nil, fmt.Errorf("create agent: %w", err)
		}
		return NewAgentNarrator(a), nil

	case domain.ModeLocal:
		s := f.local
		if f.cfg.SummarizerProvider == config.ProviderOpenAI {
			hosted, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIConfig{
				APIKey:          keys.OpenAI,
				MaxSummaryChars: f.cfg.MaxSummaryChars,
				InputChars:      f.cfg.AgentInputChars,
			})
			if err != nil {
				return nil, fmt.Errorf("create summarizer: %w", err)
			}
			s = hosted
		}
		return NewLocalNarrator(s, synthesizer, f.cfg.MaxSummaryChars), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
