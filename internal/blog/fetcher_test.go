package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestFetcher() *Fetcher {
	return NewFetcher(0, 0, slog.Default())
}

func TestFetchJoinsParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><h1>Title</h1><p> First </p><div>skip</div><p>Second</p></body></html>`)
	}))
	defer srv.Close()

	got, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := "First \nSecond"
	if got != want {
		t.Fatalf("Fetch() = %q, want %q", got, want)
	}
}

func TestFetchRepeatedParagraphsExceedThreshold(t *testing.T) {
	page := strings.Repeat("<p>Hello world</p>", 6)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	got, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(got) <= 50 {
		t.Fatalf("expected more than 50 characters, got %d (%q)", len(got), got)
	}
}

func TestFetchFailuresCarrySentinel(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "<p>not here</p>", http.StatusNotFound)
	}))
	defer notFound.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer empty.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name string
		url  string
	}{
		{name: "404", url: notFound.URL},
		{name: "empty body", url: empty.URL},
		{name: "connection refused", url: closedURL},
		{name: "empty url", url: "   "},
		{name: "unsupported scheme", url: "ftp://example.com/post"},
		{name: "no host", url: "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestFetcher().Fetch(context.Background(), tt.url)
			if err == nil {
				t.Fatalf("expected error")
			}

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *FetchError, got %T", err)
			}

			if !IsFetchError(err.Error()) {
				t.Fatalf("error text %q does not start with %q", err.Error(), ErrorPrefix)
			}
		})
	}
}

func TestFetchResolvesFeedToNewestEntry(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Blog</title>
<item><title>Old</title><link>/old</link><pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate></item>
<item><title>New</title><link>/new</link><pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate></item>
</channel></rss>`)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<p>newest post</p>`)
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<p>old post</p>`)
	})

	got, err := newTestFetcher().Fetch(context.Background(), srv.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if got != "newest post" {
		t.Fatalf("Fetch() = %q, want %q", got, "newest post")
	}
}

func TestFetchEmptyFeedIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Blog</title></channel></rss>`)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
}

func TestFetchHonoursBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<p>abcdefghij</p><p>"+strings.Repeat("z", 1000)+"</p>")
	}))
	defer srv.Close()

	f := NewFetcher(0, 17, slog.Default())

	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if got != "abcdefghij" {
		t.Fatalf("Fetch() = %q, want %q", got, "abcdefghij")
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{text: "please read https://example.com/post-1 today", want: "https://example.com/post-1", wantOK: true},
		{text: "http://blog.example.org/a?b=c", want: "http://blog.example.org/a?b=c", wantOK: true},
		{text: "example.com without scheme", want: "", wantOK: false},
		{text: "", want: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ExtractURL(tt.text)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ExtractURL(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}
