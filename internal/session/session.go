// Package session holds the per-process search state: the current result
// set with its risk assessment, and a bounded trailing history of searches.
package session

import (
	"sync"
	"time"

	"github.com/fortega-m/vigia/pkg/models"
)

// DefaultHistorySize is how many past searches the session remembers.
const DefaultHistorySize = 5

// HistoryEntry records one completed search: keyword, how many articles it
// produced, and when it ran. Full article sets are not retained in history.
type HistoryEntry struct {
	Keyword   string
	Count     int
	Timestamp time.Time
}

// Session owns the results of the most recent search and a fixed-size ring
// of history entries, oldest evicted first. Safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	articles []models.Article
	risk     models.RiskAssessment
	keyword  string
	history  []HistoryEntry
	size     int
}

// New creates a session with the given history capacity (0 selects the
// default).
func New(historySize int) *Session {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Session{size: historySize}
}

// Publish installs a completed search as the current result set and records
// it in history. The article slice becomes owned by the session and is
// treated as read-only afterwards.
func (s *Session) Publish(keyword string, articles []models.Article, risk models.RiskAssessment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keyword = keyword
	s.articles = articles
	s.risk = risk

	s.history = append(s.history, HistoryEntry{
		Keyword:   keyword,
		Count:     len(articles),
		Timestamp: time.Now(),
	})
	if len(s.history) > s.size {
		s.history = s.history[len(s.history)-s.size:]
	}
}

// Current returns the keyword, articles, and risk of the last search.
// The boolean is false when no search has been published yet, which callers
// must render distinctly from an empty result.
func (s *Session) Current() (string, []models.Article, models.RiskAssessment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keyword == "" {
		return "", nil, models.RiskAssessment{}, false
	}
	return s.keyword, s.articles, s.risk, true
}

// History returns the recorded searches, most recent last.
func (s *Session) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}
