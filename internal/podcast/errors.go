package podcast

import (
	"errors"

	"blogcast/internal/blog"
	"blogcast/internal/domain"
)

var (
	ErrEmptyURL        = errors.New("blog URL is empty")
	ErrMissingKeys     = errors.New("API keys are missing")
	ErrUnknownMode     = errors.New("unknown podcast mode")
	ErrContentTooShort = errors.New("fetched content is too short")
	ErrNoAudio         = errors.New("no audio was generated")
)

// UserMessage renders err as the text shown to the person who asked for the
// podcast.
func UserMessage(err error) string {
	var fetchErr *blog.FetchError

	switch {
	case err == nil:
		return "Podcast generated successfully!"
	case errors.Is(err, ErrEmptyURL):
		return "Please enter a blog URL first."
	case errors.Is(err, ErrMissingKeys):
		return "Please enter both API keys to enable podcast generation."
	case errors.Is(err, ErrUnknownMode):
		return "Please choose a valid podcast mode."
	case errors.As(err, &fetchErr):
		return "Error fetching blog: " + fetchErr.Error()
	case errors.Is(err, ErrContentTooShort):
		return "Fetched content is too short. Please check the URL."
	case errors.Is(err, ErrNoAudio):
		return "No audio was generated. Please try again."
	default:
		return "An error occurred: " + err.Error()
	}
}

// StatusOf classifies a pipeline outcome for the generation history.
func StatusOf(err error) domain.Status {
	var fetchErr *blog.FetchError

	switch {
	case err == nil:
		return domain.StatusSucceeded
	case errors.Is(err, ErrEmptyURL), errors.Is(err, ErrMissingKeys), errors.Is(err, ErrUnknownMode):
		return domain.StatusInvalidInput
	case errors.As(err, &fetchErr):
		return domain.StatusFetchFailed
	case errors.Is(err, ErrContentTooShort):
		return domain.StatusTooShort
	case errors.Is(err, ErrNoAudio):
		return domain.StatusNoAudio
	default:
		return domain.StatusFailed
	}
}

// IsUnexpected reports whether err is a collaborator failure rather than one
// of the expected, user-correctable outcomes.
func IsUnexpected(err error) bool {
	return StatusOf(err) == domain.StatusFailed
}
