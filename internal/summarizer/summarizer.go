package summarizer

import (
	"context"
	"strings"
	"unicode"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text is the plain page text to summarise.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

// TruncateInput cuts text to at most maxChars runes, preferring the last
// whitespace before the limit. maxChars <= 0 disables truncation.
func TruncateInput(text string, maxChars int) string {
	return cut(text, maxChars, unicode.IsSpace)
}

// ClampSummary bounds a summary to maxChars runes. Text already within the
// limit is returned unchanged; longer text is cut at the last sentence end,
// falling back to the last whitespace.
func ClampSummary(text string, maxChars int) string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text
	}

	head := runes[:maxChars]
	for i := len(head) - 1; i > maxChars/2; i-- {
		switch head[i] {
		case '.', '!', '?':
			return strings.TrimSpace(string(head[:i+1]))
		}
	}

	return cut(text, maxChars, unicode.IsSpace)
}

func cut(text string, maxChars int, isBoundary func(rune) bool) string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text
	}

	head := runes[:maxChars]
	for i := len(head) - 1; i > maxChars/2; i-- {
		if isBoundary(head[i]) {
			return strings.TrimSpace(string(head[:i]))
		}
	}

	return strings.TrimSpace(string(head))
}
