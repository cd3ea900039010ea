package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatCompletionJSON(content string) string {
	return fmt.Sprintf(`{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "llama3.2",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %q}}]
}`, content)
}

func TestLocalSummarizerRequest(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionJSON("  A tidy summary.  "))
	}))
	defer srv.Close()

	s, err := NewLocalSummarizer(LocalConfig{
		BaseURL:    srv.URL + "/v1",
		Model:      "llama3.2",
		MaxTokens:  150,
		MinTokens:  50,
		InputChars: 20,
	})
	if err != nil {
		t.Fatalf("NewLocalSummarizer() error = %v", err)
	}

	got, err := s.Summarize(context.Background(), Input{Text: "one two three four five six seven"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if got != "A tidy summary." {
		t.Fatalf("Summarize() = %q", got)
	}

	if body["model"] != "llama3.2" {
		t.Fatalf("model = %v", body["model"])
	}
	if body["temperature"] != float64(0) {
		t.Fatalf("temperature = %v, want 0", body["temperature"])
	}
	if body["max_tokens"] != float64(150) {
		t.Fatalf("max_tokens = %v, want 150", body["max_tokens"])
	}

	messages, ok := body["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("messages = %v", body["messages"])
	}

	system, _ := messages[0].(map[string]any)
	if !strings.Contains(fmt.Sprint(system["content"]), "between 50 and 150 tokens") {
		t.Fatalf("system prompt does not carry length window: %v", system["content"])
	}

	user, _ := messages[1].(map[string]any)
	if got := fmt.Sprint(user["content"]); got != "one two three four" {
		t.Fatalf("user content = %q, want truncated input", got)
	}
}

func TestLocalSummarizerServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"model not loaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := NewLocalSummarizer(LocalConfig{BaseURL: srv.URL, Model: "m", MaxTokens: 10})
	if err != nil {
		t.Fatalf("NewLocalSummarizer() error = %v", err)
	}

	if _, err = s.Summarize(context.Background(), Input{Text: "text"}); err == nil {
		t.Fatalf("expected error")
	}

	if calls != 1 {
		t.Fatalf("expected a single request without retries, got %d", calls)
	}
}

func TestNewLocalSummarizerValidates(t *testing.T) {
	tests := []LocalConfig{
		{Model: "m", MaxTokens: 10},
		{BaseURL: "http://localhost:11434/v1", MaxTokens: 10},
		{BaseURL: "http://localhost:11434/v1", Model: "m", MaxTokens: 10, MinTokens: 20},
		{BaseURL: "http://localhost:11434/v1", Model: "m"},
	}

	for i, cfg := range tests {
		if _, err := NewLocalSummarizer(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
