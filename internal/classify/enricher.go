package classify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fortega-m/vigia/pkg/models"
)

// DefaultConcurrency bounds concurrent classification calls per batch,
// to stay under the remote API's rate limits.
const DefaultConcurrency = 4

// DefaultSummaryLimit is how many top-ranked articles get an AI summary.
// Summarization is the most expensive call, so it is bounded by design.
const DefaultSummaryLimit = 5

// Reporter receives progress lines from an enrichment run.
type Reporter func(format string, args ...any)

// Enricher annotates ranked articles with sentiment, emotion, and summaries.
type Enricher struct {
	classifier   Classifier
	concurrency  int
	summaryLimit int
	report       Reporter
}

// NewEnricher creates an enricher. Zero or negative concurrency selects the
// default; a negative summary limit selects the default while zero disables
// summaries. A nil reporter silences progress output.
func NewEnricher(classifier Classifier, concurrency, summaryLimit int, report Reporter) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if summaryLimit < 0 {
		summaryLimit = DefaultSummaryLimit
	}
	if report == nil {
		report = func(string, ...any) {}
	}
	return &Enricher{
		classifier:   classifier,
		concurrency:  concurrency,
		summaryLimit: summaryLimit,
		report:       report,
	}
}

// Enrich classifies every article in place. Calls run concurrently but each
// result is written back by index, never by completion order, so labels stay
// attached to the right article. A failed call leaves its fallback label on
// that article only; the rest of the batch proceeds.
func (e *Enricher) Enrich(ctx context.Context, articles []models.Article) {
	if len(articles) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range articles {
		i := i
		g.Go(func() error {
			text := articles[i].Title + " " + articles[i].Summary

			sentiment, err := e.classifier.Sentiment(gctx, text)
			if err != nil {
				e.report("⚠️  sentimiento (%s): %v", articles[i].Source, err)
				sentiment = models.SentimentUnknown
			}
			articles[i].Sentiment = sentiment

			emotion, err := e.classifier.Emotion(gctx, text)
			if err != nil {
				e.report("⚠️  emoción (%s): %v", articles[i].Source, err)
				emotion = models.EmotionUnknown
			}
			articles[i].Emotion = emotion
			return nil
		})
	}
	// No goroutine returns an error; Wait is the barrier before summaries.
	_ = g.Wait()

	// Summaries: top-N of the post-rank ordering, one at a time. Articles
	// outside the bound keep their original summary text.
	limit := e.summaryLimit
	if limit > len(articles) {
		limit = len(articles)
	}
	for i := range articles {
		articles[i].AISummary = articles[i].Summary
	}
	for i := 0; i < limit; i++ {
		summary, err := e.classifier.Summarize(ctx, articles[i].Title, articles[i].Summary)
		if err != nil {
			e.report("⚠️  resumen (%s): %v", articles[i].Source, err)
			continue
		}
		articles[i].AISummary = summary
	}
}
