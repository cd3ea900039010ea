package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"blogcast/internal/domain"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR"        envDefault:":8080"`
	OutputDir       string        `env:"OUTPUT_DIR"       envDefault:"audio_generations"`
	OutputRetention time.Duration `env:"OUTPUT_RETENTION" envDefault:"0"`
	DBPath          string        `env:"DB_PATH"          envDefault:"blogcast.sqlite"`
	DefaultMode     string        `env:"DEFAULT_MODE"     envDefault:"agent"`
	GenerateTimeout time.Duration `env:"GENERATE_TIMEOUT" envDefault:"5m"`
	SentryDSN       string        `env:"SENTRY_DSN"`
	Environment     string        `env:"ENVIRONMENT"      envDefault:"development"`

	GenerateRateLimit  int           `env:"GENERATE_RATE_LIMIT"  envDefault:"10"`
	GenerateRateWindow time.Duration `env:"GENERATE_RATE_WINDOW" envDefault:"1m"`
	HistoryLimit       int           `env:"HISTORY_LIMIT"        envDefault:"20"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`

	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT"      envDefault:"20s"`
	FetchMaxBytes   int64         `env:"FETCH_MAX_BYTES"    envDefault:"5242880"`
	MinContentChars int           `env:"MIN_CONTENT_CHARS"  envDefault:"50"`
	MaxSummaryChars int           `env:"MAX_SUMMARY_CHARS"  envDefault:"2000"`

	AgentModel      string `env:"AGENT_MODEL"       envDefault:"gpt-4o"`
	AgentMaxSteps   int    `env:"AGENT_MAX_STEPS"   envDefault:"4"`
	AgentInputChars int    `env:"AGENT_INPUT_CHARS" envDefault:"12000"`

	SummarizerProvider string `env:"SUMMARIZER_PROVIDER" envDefault:"local"`
	LocalBaseURL       string `env:"LOCAL_BASE_URL"      envDefault:"http://localhost:11434/v1"`
	LocalModel         string `env:"LOCAL_MODEL"         envDefault:"llama3.2"`
	LocalInputChars    int    `env:"LOCAL_INPUT_CHARS"   envDefault:"4000"`
	LocalMaxTokens     int64  `env:"LOCAL_MAX_TOKENS"    envDefault:"150"`
	LocalMinTokens     int64  `env:"LOCAL_MIN_TOKENS"    envDefault:"50"`

	SummaryCacheSize int           `env:"SUMMARY_CACHE_SIZE" envDefault:"256"`
	SummaryCacheTTL  time.Duration `env:"SUMMARY_CACHE_TTL"  envDefault:"24h"`

	TTSVoiceID      string `env:"TTS_VOICE_ID"      envDefault:"JBFqnCBsd6RMkjVDRZzb"`
	TTSModelID      string `env:"TTS_MODEL_ID"      envDefault:"eleven_multilingual_v2"`
	TTSOutputFormat string `env:"TTS_OUTPUT_FORMAT" envDefault:"pcm_22050"`
	TTSBaseURL      string `env:"TTS_BASE_URL"      envDefault:"https://api.elevenlabs.io"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.DefaultMode = strings.ToLower(strings.TrimSpace(cfg.DefaultMode))
	cfg.SummarizerProvider = strings.ToLower(strings.TrimSpace(cfg.SummarizerProvider))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if _, ok := domain.ParseMode(c.DefaultMode); !ok {
		errs = append(errs, fmt.Errorf(
			"DEFAULT_MODE must be %q or %q, got %q",
			domain.ModeAgent, domain.ModeLocal, c.DefaultMode,
		))
	}
	if c.SummarizerProvider != ProviderLocal && c.SummarizerProvider != ProviderOpenAI {
		errs = append(errs, fmt.Errorf(
			"SUMMARIZER_PROVIDER must be %q or %q, got %q",
			ProviderLocal, ProviderOpenAI, c.SummarizerProvider,
		))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("OUTPUT_DIR is empty"))
	}
	if c.OutputRetention < 0 {
		errs = append(errs, errors.New("OUTPUT_RETENTION must not be negative"))
	}
	if c.GenerateRateLimit < 0 {
		errs = append(errs, errors.New("GENERATE_RATE_LIMIT must not be negative"))
	}
	if c.MinContentChars < 0 {
		errs = append(errs, errors.New("MIN_CONTENT_CHARS must not be negative"))
	}
	if c.MaxSummaryChars <= 0 {
		errs = append(errs, errors.New("MAX_SUMMARY_CHARS must be positive"))
	}
	if c.LocalMinTokens < 0 || c.LocalMaxTokens <= 0 || c.LocalMinTokens > c.LocalMaxTokens {
		errs = append(errs, fmt.Errorf(
			"LOCAL_MIN_TOKENS/LOCAL_MAX_TOKENS must satisfy 0 <= min <= max and max > 0, got %d/%d",
			c.LocalMinTokens, c.LocalMaxTokens,
		))
	}
	if !strings.HasPrefix(c.TTSOutputFormat, "pcm_") {
		errs = append(errs, fmt.Errorf("TTS_OUTPUT_FORMAT must be a pcm_<rate> format, got %q", c.TTSOutputFormat))
	}

	return errors.Join(errs...)
}
