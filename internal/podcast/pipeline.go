package podcast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"blogcast/internal/domain"
	"blogcast/internal/tts"
)

type Request struct {
	URL  string
	Mode domain.Mode
	Keys Keys
	// RequestedBy identifies the caller in the history, e.g. "web" or "tg:42".
	RequestedBy string
}

type Result struct {
	Artifact *Artifact
	Summary  string
	Mode     domain.Mode
}

type ContentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

type ArtifactStore interface {
	Save(audio *tts.Audio) (*Artifact, error)
}

// Recorder stores the outcome of every run. A nil Recorder disables history.
type Recorder interface {
	InsertGeneration(ctx context.Context, g domain.Generation) error
}

type Options struct {
	MinContentChars int
	DefaultMode     domain.Mode
}

// Pipeline runs fetch, narrate and persist strictly in sequence.
type Pipeline struct {
	fetcher   ContentFetcher
	narrators NarratorFactory
	store     ArtifactStore
	recorder  Recorder
	opts      Options
	log       *slog.Logger
	now       func() time.Time
}

func NewPipeline(
	fetcher ContentFetcher,
	narrators NarratorFactory,
	store ArtifactStore,
	recorder Recorder,
	opts Options,
	log *slog.Logger,
) *Pipeline {
	if opts.DefaultMode == "" {
		opts.DefaultMode = domain.ModeAgent
	}

	return &Pipeline{
		fetcher:   fetcher,
		narrators: narrators,
		store:     store,
		recorder:  recorder,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

func (p *Pipeline) DefaultMode() domain.Mode {
	return p.opts.DefaultMode
}

func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.Mode == "" {
		req.Mode = p.opts.DefaultMode
	}

	start := p.now()
	res, err := p.run(ctx, req)

	if err != nil {
		if IsUnexpected(err) {
			p.log.ErrorContext(ctx, "Failed to generate podcast",
				"error", err,
				"url", req.URL,
				"mode", req.Mode)
		} else {
			p.log.WarnContext(ctx, "Podcast is not generated",
				"reason", err,
				"url", req.URL,
				"mode", req.Mode)
		}
	} else {
		p.log.InfoContext(ctx, "Podcast is generated",
			"url", req.URL,
			"mode", req.Mode,
			"file", res.Artifact.FileName,
			"size", res.Artifact.Size,
			"summaryLen", utf8.RuneCountInString(res.Summary),
			"duration", p.now().Sub(start))
	}

	p.record(ctx, req, res, err)

	return res, err
}

func (p *Pipeline) run(ctx context.Context, req Request) (*Result, error) {
	if req.URL == "" {
		return nil, ErrEmptyURL
	}

	if _, ok := domain.ParseMode(string(req.Mode)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}

	narrator, err := p.narrators.Narrator(req.Mode, req.Keys)
	if err != nil {
		return nil, err
	}

	content, err := p.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(content) < p.opts.MinContentChars {
		return nil, ErrContentTooShort
	}

	narration, err := narrator.Narrate(ctx, content, req.URL)
	if err != nil {
		return nil, err
	}

	artifact, err := p.store.Save(narration.Audio)
	if err != nil {
		return nil, fmt.Errorf("save podcast: %w", err)
	}

	return &Result{
		Artifact: artifact,
		Summary:  narration.Summary,
		Mode:     req.Mode,
	}, nil
}

func (p *Pipeline) record(ctx context.Context, req Request, res *Result, runErr error) {
	if p.recorder == nil {
		return
	}

	g := domain.Generation{
		URL:         req.URL,
		Mode:        req.Mode,
		Status:      StatusOf(runErr),
		RequestedBy: req.RequestedBy,
		CreatedAt:   p.now().UTC(),
	}
	if runErr != nil {
		g.Error = runErr.Error()
	}
	if res != nil {
		g.SummaryLen = utf8.RuneCountInString(res.Summary)
		g.FileName = res.Artifact.FileName
		g.SizeBytes = res.Artifact.Size
	}

	// History must not turn a generated podcast into a failure.
	if err := p.recorder.InsertGeneration(context.WithoutCancel(ctx), g); err != nil {
		p.log.ErrorContext(ctx, "Failed to record generation",
			"error", err,
			"url", req.URL)
	}
}
