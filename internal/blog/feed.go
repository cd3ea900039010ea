package blog

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

func isFeed(contentType string, body []byte) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && (mediaType == "text/html" || mediaType == "application/xhtml+xml") {
		return false
	}

	return gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown
}

func (f *Fetcher) latestEntryLink(feedURL string, body []byte) (string, error) {
	parsed, err := f.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse feed: %w", err)
	}

	item := newestItem(parsed.Items)
	if item == nil {
		return "", errors.New("feed has no entries")
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		return "", errors.New("newest feed entry has no link")
	}

	base, err := url.Parse(feedURL)
	if err != nil {
		return "", fmt.Errorf("parse feed URL: %w", err)
	}

	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse entry URL: %w", err)
	}

	return base.ResolveReference(ref).String(), nil
}

func newestItem(items []*gofeed.Item) *gofeed.Item {
	var newest *gofeed.Item

	for _, item := range items {
		if item == nil {
			continue
		}
		if newest == nil {
			newest = item
			continue
		}

		if item.PublishedParsed != nil &&
			(newest.PublishedParsed == nil || item.PublishedParsed.After(*newest.PublishedParsed)) {
			newest = item
		}
	}

	return newest
}
