// Package feed retrieves and normalizes RSS/Atom feeds into raw entries.
// A fetcher tolerates malformed feeds field by field: anything missing
// becomes an empty string, and an unparsable date degrades to a nil
// timestamp rather than an error.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/fortega-m/vigia/pkg/models"
)

// DefaultUserAgent identifies the monitor to feed servers.
const DefaultUserAgent = "Mozilla/5.0 (compatible; VigiaNewsMonitor/1.0)"

// Fetcher parses remote feeds with a politeness throttle shared across all
// fetches, so bursts against third-party servers stay bounded no matter how
// many sources are polled concurrently.
type Fetcher struct {
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// New creates a fetcher that spaces requests by the given pause.
// A zero or negative pause disables throttling (useful in tests).
func New(pause time.Duration) *Fetcher {
	p := gofeed.NewParser()
	p.UserAgent = DefaultUserAgent

	limiter := rate.NewLimiter(rate.Inf, 1)
	if pause > 0 {
		limiter = rate.NewLimiter(rate.Every(pause), 1)
	}
	return &Fetcher{parser: p, limiter: limiter}
}

// Fetch retrieves one feed and returns its entries. The returned error is
// informational: callers aggregating many sources absorb it and treat the
// source as having yielded nothing.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]models.RawEntry, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle: %w", err)
	}

	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	entries := make([]models.RawEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, entryFromItem(item))
	}
	return entries, nil
}

// FetchSearch retrieves a search-engine feed, consuming at most cap entries.
// Search feeds are unbounded in principle; the cap keeps one engine from
// flooding the merge.
func (f *Fetcher) FetchSearch(ctx context.Context, url string, cap int) ([]models.RawEntry, error) {
	entries, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if cap > 0 && len(entries) > cap {
		entries = entries[:cap]
	}
	return entries, nil
}

// entryFromItem maps a gofeed item onto a RawEntry with lenient defaults.
func entryFromItem(item *gofeed.Item) models.RawEntry {
	e := models.RawEntry{
		Title:        item.Title,
		Link:         item.Link,
		PublishedRaw: item.Published,
		Summary:      CleanHTML(item.Description),
	}
	if e.Summary == "" {
		e.Summary = CleanHTML(item.Content)
	}
	if item.PublishedParsed != nil {
		t := *item.PublishedParsed
		e.Published = &t
	}
	return e
}

// CleanHTML strips HTML tags from a string using goquery.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
