// Package monitor orchestrates one search end to end: aggregate matching
// articles across all sources, enrich them through the classifier, score the
// crisis risk, and publish the result to the session.
package monitor

import (
	"context"

	"github.com/fortega-m/vigia/internal/aggregate"
	"github.com/fortega-m/vigia/internal/classify"
	"github.com/fortega-m/vigia/internal/crisis"
	"github.com/fortega-m/vigia/internal/session"
	"github.com/fortega-m/vigia/pkg/models"
)

// Reporter receives human-readable progress lines from a search run.
type Reporter func(format string, args ...any)

// Result is the outcome of one completed search.
type Result struct {
	Keyword       string
	Articles      []models.Article
	Risk          models.RiskAssessment
	SourceCount   int
	TotalMentions int
}

// Empty reports whether the search produced no articles. This is a valid
// terminal state, distinct from an error.
func (r *Result) Empty() bool { return len(r.Articles) == 0 }

// AverageMentions returns the mean keyword mention count per article.
func (r *Result) AverageMentions() float64 {
	if len(r.Articles) == 0 {
		return 0
	}
	return float64(r.TotalMentions) / float64(len(r.Articles))
}

// Monitor ties the pipeline stages together for the lifetime of a session.
type Monitor struct {
	aggregator *aggregate.Aggregator
	enricher   *classify.Enricher
	session    *session.Session
	report     Reporter
}

// New assembles a monitor. A nil reporter silences progress output.
func New(aggregator *aggregate.Aggregator, enricher *classify.Enricher, sess *session.Session, report Reporter) *Monitor {
	if report == nil {
		report = func(string, ...any) {}
	}
	return &Monitor{
		aggregator: aggregator,
		enricher:   enricher,
		session:    sess,
		report:     report,
	}
}

// Session exposes the session owning the current result set.
func (m *Monitor) Session() *session.Session { return m.session }

// Search runs the full pipeline for one keyword. The only error it returns
// is invalid input (empty keyword) or context cancellation between stages;
// per-source and per-classification failures are absorbed downstream.
func (m *Monitor) Search(ctx context.Context, keyword string, opts aggregate.Options) (*Result, error) {
	m.report("🔍 Buscando %q en las fuentes configuradas...", keyword)
	articles, err := m.aggregator.Aggregate(ctx, keyword, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Keyword: keyword}
	if len(articles) == 0 {
		m.report("Sin resultados para %q.", keyword)
		return result, nil
	}

	m.report("📰 %d noticias tras deduplicación, clasificando...", len(articles))
	m.enricher.Enrich(ctx, articles)

	result.Articles = articles
	result.Risk = crisis.Score(articles)

	seen := make(map[string]bool)
	for _, a := range articles {
		if !seen[a.Source] {
			seen[a.Source] = true
			result.SourceCount++
		}
		result.TotalMentions += a.KeywordMatchCount
	}

	if m.session != nil {
		m.session.Publish(keyword, articles, result.Risk)
	}
	m.report("🚨 Riesgo %s (%.1f%%), %d negativas.", result.Risk.Level, result.Risk.Score, result.Risk.NegativeCount)
	return result, nil
}
