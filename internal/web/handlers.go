package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"blogcast/internal/domain"
	"blogcast/internal/podcast"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	formOpenAIKey     = "openai_api_key"
	formElevenLabsKey = "elevenlabs_api_key"
	formURL           = "url"
	formMode          = "mode"

	maxFormBytes = 64 << 10
)

type modeOption struct {
	Value    domain.Mode
	Label    string
	Selected bool
}

type resultView struct {
	ID       string
	Summary  string
	Mode     domain.Mode
	FileName string
	Size     int64
}

type indexPage struct {
	URL           string
	Modes         []modeOption
	HasServerKeys bool
	Warning       string
	Error         string
	Success       string
	Result        *resultView
}

type statusTotal struct {
	Status domain.Status
	Count  int
}

type historyPage struct {
	Generations []domain.Generation
	Totals      []statusTotal
	Error       string
}

var historyStatuses = []domain.Status{
	domain.StatusSucceeded,
	domain.StatusFetchFailed,
	domain.StatusTooShort,
	domain.StatusNoAudio,
	domain.StatusFailed,
	domain.StatusInvalidInput,
}

func (s *Server) newIndexPage(url string, mode domain.Mode) indexPage {
	if mode == "" {
		mode = s.generator.DefaultMode()
	}

	page := indexPage{
		URL: url,
		Modes: []modeOption{
			{Value: domain.ModeAgent, Label: "Agent (hosted model with speech tool)"},
			{Value: domain.ModeLocal, Label: "Local summarizer"},
		},
		HasServerKeys: s.cfg.ServerKeys.ElevenLabs != "" &&
			(!s.cfg.OpenAIKeyRequired || s.cfg.ServerKeys.OpenAI != ""),
	}
	for i := range page.Modes {
		page.Modes[i].Selected = page.Modes[i].Value == mode
	}

	if !page.HasServerKeys {
		page.Warning = podcast.UserMessage(podcast.ErrMissingKeys)
	}

	return page
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", s.newIndexPage("", ""))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	url := strings.TrimSpace(r.PostFormValue(formURL))
	mode := domain.Mode(strings.ToLower(strings.TrimSpace(r.PostFormValue(formMode))))

	keys := podcast.Keys{
		OpenAI:     strings.TrimSpace(r.PostFormValue(formOpenAIKey)),
		ElevenLabs: strings.TrimSpace(r.PostFormValue(formElevenLabsKey)),
	}.Fallback(s.cfg.ServerKeys)

	page := s.newIndexPage(url, mode)
	page.Warning = ""

	res, err := s.generate(r, podcast.Request{
		URL:         url,
		Mode:        mode,
		Keys:        keys,
		RequestedBy: "web:" + middleware.GetReqID(r.Context()),
	})
	if err != nil {
		if podcast.IsUnexpected(err) {
			captureError(r, err, "generate podcast")
		}

		if errors.Is(err, podcast.ErrEmptyURL) || errors.Is(err, podcast.ErrMissingKeys) {
			page.Warning = podcast.UserMessage(err)
		} else {
			page.Error = podcast.UserMessage(err)
		}

		s.render(w, r, statusFor(err), "index.html", page)
		return
	}

	page.Success = "Podcast generated successfully! 🎧"
	page.Result = &resultView{
		ID:       res.Artifact.ID,
		Summary:  res.Summary,
		Mode:     res.Mode,
		FileName: res.Artifact.FileName,
		Size:     res.Artifact.Size,
	}

	s.render(w, r, http.StatusOK, "index.html", page)
}

func (s *Server) generate(r *http.Request, req podcast.Request) (*podcast.Result, error) {
	s.generateMu.Lock()
	defer s.generateMu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.GenerateTimeout)
	defer cancel()

	return s.generator.Run(ctx, req)
}

func statusFor(err error) int {
	switch podcast.StatusOf(err) {
	case domain.StatusInvalidInput, domain.StatusTooShort:
		return http.StatusBadRequest
	case domain.StatusFetchFailed:
		return http.StatusBadGateway
	case domain.StatusNoAudio, domain.StatusFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func (s *Server) handlePodcast(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, false)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, true)
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, attachment bool) {
	id := chi.URLParam(r, "id")

	artifact, err := s.artifacts.Lookup(id)
	if err != nil {
		if errors.Is(err, podcast.ErrArtifactNotFound) {
			http.NotFound(w, r)
			return
		}

		s.log.ErrorContext(r.Context(), "Failed to look up podcast",
			"error", err,
			"id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	f, err := os.Open(artifact.Path)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to open podcast",
			"error", err,
			"path", artifact.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err = f.Close(); err != nil {
			s.log.ErrorContext(r.Context(), "Failed to close podcast",
				"error", err,
				"path", artifact.Path)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", podcast.ContentType)
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", podcast.DownloadName))
	}

	http.ServeContent(w, r, podcast.DownloadName, info.ModTime(), f)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page := historyPage{}

	generations, err := s.store.ListRecentGenerations(r.Context(), s.cfg.HistoryLimit)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to list generations",
			"error", err)
		captureError(r, err, "list generations")
		page.Error = "Failed to load history."
		s.render(w, r, http.StatusInternalServerError, "history.html", page)
		return
	}
	page.Generations = generations

	counts, err := s.store.CountByStatus(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to count generations",
			"error", err)
		captureError(r, err, "count generations")
		page.Error = "Failed to load history."
		s.render(w, r, http.StatusInternalServerError, "history.html", page)
		return
	}
	for _, status := range historyStatuses {
		if n := counts[status]; n > 0 {
			page.Totals = append(page.Totals, statusTotal{Status: status, Count: n})
		}
	}

	s.render(w, r, http.StatusOK, "history.html", page)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to ping database",
			"error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render page",
			"error", err,
			"page", name)
	}
}
