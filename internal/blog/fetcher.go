package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	// ErrorPrefix marks a failed fetch in any text produced from a FetchError.
	ErrorPrefix = "ERROR: "

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	DefaultTimeout  = 20 * time.Second
	DefaultMaxBytes = 5 << 20
)

// FetchError is returned for every failure of Fetch. Its text always starts
// with ErrorPrefix.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return ErrorPrefix + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func IsFetchError(text string) bool {
	return strings.HasPrefix(text, ErrorPrefix)
}

type Fetcher struct {
	client     *http.Client
	maxBytes   int64
	feedParser *gofeed.Parser
	log        *slog.Logger
}

func NewFetcher(timeout time.Duration, maxBytes int64, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
		feedParser: gofeed.NewParser(),
		log:        log,
	}
}

// Fetch downloads the page and returns the text of all its paragraphs joined
// by newlines. A feed URL is resolved to its newest entry first.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	if err := validateURL(rawURL); err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	body, contentType, err := f.get(ctx, rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	pageURL := rawURL
	if isFeed(contentType, body) {
		link, resolveErr := f.latestEntryLink(rawURL, body)
		if resolveErr != nil {
			return "", &FetchError{URL: rawURL, Err: fmt.Errorf("resolve feed: %w", resolveErr)}
		}

		f.log.InfoContext(ctx, "Feed URL is resolved to its newest entry",
			"feedURL", rawURL,
			"entryURL", link)

		if body, _, err = f.get(ctx, link); err != nil {
			return "", &FetchError{URL: link, Err: err}
		}
		pageURL = link
	}

	text, err := ParagraphText(bytes.NewReader(body))
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}

	return text, nil
}

// ParagraphText concatenates the text of every p element with newlines.
func ParagraphText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})

	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

func (f *Fetcher) get(ctx context.Context, pageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req) //nolint:gosec // user-supplied URL
	if err != nil {
		return nil, "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", pageURL)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, "", errors.New("response body is empty")
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("URL is empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL host is empty")
	}

	return nil
}
