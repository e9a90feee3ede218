// Package match turns raw feed entries into keyword-annotated articles.
// Direct-mode entries are filtered locally: an entry survives only if the
// keyword appears in its title or summary, and the occurrence count becomes
// the article's relevance seed. Search-mode entries arrive pre-filtered by
// the remote engine and are trusted with a fixed count of 1.
package match

import (
	"strings"
	"time"

	"github.com/fortega-m/vigia/pkg/models"
)

// Count returns the number of case-insensitive keyword occurrences across
// the entry's title and summary.
func Count(entry models.RawEntry, keyword string) int {
	kw := strings.ToLower(keyword)
	if kw == "" {
		return 0
	}
	return strings.Count(strings.ToLower(entry.Title), kw) +
		strings.Count(strings.ToLower(entry.Summary), kw)
}

// Match scans a direct-mode entry. It returns the annotated article and true
// when the keyword occurs at least once, or a zero article and false when the
// entry should be dropped.
func Match(entry models.RawEntry, keyword string, fetchedAt time.Time) (models.Article, bool) {
	n := Count(entry, keyword)
	if n == 0 {
		return models.Article{}, false
	}
	a := toArticle(entry, keyword, fetchedAt)
	a.KeywordMatchCount = n
	return a, true
}

// Trusted wraps a search-mode entry as an article with match count fixed
// at 1. The remote engine already judged relevance; the keyword need not
// literally appear in the summary text.
func Trusted(entry models.RawEntry, keyword string, fetchedAt time.Time) models.Article {
	a := toArticle(entry, keyword, fetchedAt)
	a.KeywordMatchCount = 1
	return a
}

func toArticle(entry models.RawEntry, keyword string, fetchedAt time.Time) models.Article {
	return models.Article{
		Title:     entry.Title,
		Link:      entry.Link,
		Published: entry.Published,
		Summary:   entry.Summary,
		Source:    entry.SourceLabel,
		Category:  entry.Category,
		Keyword:   keyword,
		FetchedAt: fetchedAt,
	}
}
