// Package aggregate drives the fetch-filter-merge stage of the pipeline:
// every configured source is polled for one keyword, entries are matched or
// trusted, and the merged collection is deduplicated and ranked.
package aggregate

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fortega-m/vigia/internal/feed"
	"github.com/fortega-m/vigia/internal/match"
	"github.com/fortega-m/vigia/internal/sources"
	"github.com/fortega-m/vigia/pkg/models"
)

// ErrEmptyKeyword is returned when a search is attempted with a blank
// keyword. This is the one input error that propagates: it is rejected
// before any fetch begins.
var ErrEmptyKeyword = errors.New("aggregate: empty keyword")

// Default entry caps for the search-mode endpoints.
const (
	DefaultGoogleCap = 50
	DefaultBingCap   = 30
)

// DefaultConcurrency bounds how many sources are fetched at once.
const DefaultConcurrency = 5

// Reporter receives human-readable progress lines from the aggregation run.
type Reporter func(format string, args ...any)

// Options configures one aggregation run.
type Options struct {
	Catalog     sources.Catalog
	UseGoogle   bool
	UseBing     bool
	GoogleCap   int // 0 means DefaultGoogleCap
	BingCap     int // 0 means DefaultBingCap
	MinMatches  int // drop articles with fewer keyword mentions; 0/1 keeps all
	Concurrency int // concurrent source fetches; 0 means DefaultConcurrency

	// GoogleURL and BingURL build the search-engine feed URL for a keyword.
	// Nil selects the standard builders; tests point them at local servers.
	GoogleURL func(keyword string) string
	BingURL   func(keyword string) string
}

// Aggregator merges keyword-matched articles from many sources.
type Aggregator struct {
	fetcher *feed.Fetcher
	report  Reporter
}

// New creates an aggregator around the given fetcher. A nil reporter
// silences progress output.
func New(fetcher *feed.Fetcher, report Reporter) *Aggregator {
	if report == nil {
		report = func(string, ...any) {}
	}
	return &Aggregator{fetcher: fetcher, report: report}
}

// fetchJob is one source to poll, pinned to a slot so the merged order is
// deterministic regardless of fetch completion order: search engines first,
// then categories in catalog order, then sources in listed order.
type fetchJob struct {
	label    string
	category string
	url      string
	search   bool
	cap      int
}

// Aggregate polls all configured sources for the keyword and returns the
// deduplicated collection ranked by relevance. Per-source failures are
// absorbed and reported; an empty result is a valid terminal state, not an
// error.
func (a *Aggregator) Aggregate(ctx context.Context, keyword string, opts Options) ([]models.Article, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	jobs := buildJobs(keyword, opts)
	fetchedAt := time.Now()

	// One result slot per job, filled concurrently, concatenated in order.
	slots := make([][]models.Article, len(jobs))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			slots[i] = a.fetchOne(gctx, keyword, job, fetchedAt)
			return nil
		})
	}
	// Merge barrier: no job returns an error, but Wait still synchronizes
	// all slots before the merge reads them.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Article
	for _, slot := range slots {
		all = append(all, slot...)
	}
	if len(all) == 0 {
		return nil, nil
	}

	all = dedupByTitle(all)
	if opts.MinMatches > 1 {
		all = filterMinMatches(all, opts.MinMatches)
	}
	for i := range all {
		all[i].RelevanceScore = all[i].KeywordMatchCount
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].RelevanceScore > all[j].RelevanceScore
	})
	return all, nil
}

// buildJobs lays out the fetch order: Google, Bing, then the catalog.
func buildJobs(keyword string, opts Options) []fetchJob {
	var jobs []fetchJob
	if opts.UseGoogle {
		cap := opts.GoogleCap
		if cap <= 0 {
			cap = DefaultGoogleCap
		}
		build := opts.GoogleURL
		if build == nil {
			build = sources.GoogleNewsURL
		}
		jobs = append(jobs, fetchJob{
			label:  sources.GoogleNewsLabel,
			url:    build(keyword),
			search: true,
			cap:    cap,
		})
	}
	if opts.UseBing {
		cap := opts.BingCap
		if cap <= 0 {
			cap = DefaultBingCap
		}
		build := opts.BingURL
		if build == nil {
			build = sources.BingNewsURL
		}
		jobs = append(jobs, fetchJob{
			label:  sources.BingNewsLabel,
			url:    build(keyword),
			search: true,
			cap:    cap,
		})
	}
	for _, group := range opts.Catalog.Groups() {
		for _, src := range group.Sources {
			jobs = append(jobs, fetchJob{
				label:    src.Name,
				category: group.Category,
				url:      src.URL,
			})
		}
	}
	return jobs
}

// fetchOne polls a single source and returns its matched articles. Any
// transport or parse failure is absorbed here so one broken source cannot
// abort the run.
func (a *Aggregator) fetchOne(ctx context.Context, keyword string, job fetchJob, fetchedAt time.Time) []models.Article {
	var (
		entries []models.RawEntry
		err     error
	)
	if job.search {
		entries, err = a.fetcher.FetchSearch(ctx, job.url, job.cap)
	} else {
		entries, err = a.fetcher.Fetch(ctx, job.url)
	}
	if err != nil {
		a.report("⚠️  %s: %v", job.label, err)
		return nil
	}

	var out []models.Article
	for _, e := range entries {
		e.SourceLabel = job.label
		e.Category = job.category
		if job.search {
			out = append(out, match.Trusted(e, keyword, fetchedAt))
			continue
		}
		if art, ok := match.Match(e, keyword, fetchedAt); ok {
			out = append(out, art)
		}
	}
	return out
}

// normalizeTitle is the dedup key: case-folded with whitespace collapsed.
// The original rule was exact-title equality; folding case and whitespace
// catches the trivial variants it let through.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// dedupByTitle keeps the first occurrence of each normalized title, in the
// merged insertion order.
func dedupByTitle(articles []models.Article) []models.Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, a := range articles {
		key := normalizeTitle(a.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func filterMinMatches(articles []models.Article, min int) []models.Article {
	out := articles[:0]
	for _, a := range articles {
		if a.KeywordMatchCount >= min {
			out = append(out, a)
		}
	}
	return out
}
