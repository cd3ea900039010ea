package summarizer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateInput(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     string
	}{
		{name: "within limit", text: "short text", maxChars: 100, want: "short text"},
		{name: "disabled", text: "short text", maxChars: 0, want: "short text"},
		{name: "cuts at whitespace", text: "alpha beta gamma delta", maxChars: 13, want: "alpha beta"},
		{name: "no whitespace", text: "abcdefghij", maxChars: 4, want: "abcd"},
		{name: "multibyte", text: "ééééé ééééé", maxChars: 8, want: "ééééé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateInput(tt.text, tt.maxChars); got != tt.want {
				t.Fatalf("TruncateInput(%q, %d) = %q, want %q", tt.text, tt.maxChars, got, tt.want)
			}
		})
	}
}

func TestClampSummaryKeepsTextWithinLimit(t *testing.T) {
	text := "  Exactly as written.\n\nNothing is trimmed or rewritten.  "

	if got := ClampSummary(text, utf8.RuneCountInString(text)); got != text {
		t.Fatalf("ClampSummary() modified text at the limit: %q", got)
	}
	if got := ClampSummary(text, 2000); got != text {
		t.Fatalf("ClampSummary() modified text under the limit: %q", got)
	}
}

func TestClampSummaryCutsAtSentence(t *testing.T) {
	text := "First sentence here. Second sentence is long enough to overflow the limit"

	got := ClampSummary(text, 36)
	if got != "First sentence here." {
		t.Fatalf("ClampSummary() = %q, want %q", got, "First sentence here.")
	}
}

func TestClampSummaryNeverExceedsLimit(t *testing.T) {
	text := strings.Repeat("word ", 1000)

	got := ClampSummary(text, 2000)
	if n := utf8.RuneCountInString(got); n > 2000 {
		t.Fatalf("ClampSummary() returned %d runes, want <= 2000", n)
	}
}
