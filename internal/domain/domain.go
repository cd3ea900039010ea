package domain

import "time"

type Mode string

const (
	ModeAgent Mode = "agent"
	ModeLocal Mode = "local"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeAgent, ModeLocal:
		return Mode(s), true
	default:
		return "", false
	}
}

type Status string

const (
	StatusSucceeded    Status = "succeeded"
	StatusFetchFailed  Status = "fetch_failed"
	StatusTooShort     Status = "too_short"
	StatusNoAudio      Status = "no_audio"
	StatusFailed       Status = "failed"
	StatusInvalidInput Status = "invalid_input"
)

type Generation struct {
	ID          int64
	URL         string
	Mode        Mode
	Status      Status
	SummaryLen  int
	FileName    string
	SizeBytes   int64
	Error       string
	RequestedBy string
	CreatedAt   time.Time
}
