// Package export renders a finished search as tabular rows or as a
// consolidated plain-text report suitable for the terminal or an email body.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fortega-m/vigia/pkg/models"
)

// csvHeader is the union of all article fields, one column each.
var csvHeader = []string{
	"title", "link", "published", "summary", "source", "category",
	"keyword", "keyword_matches", "relevance_score", "fetched_at",
	"sentiment", "emotion", "ai_summary",
}

// WriteCSV writes one row per article. Timestamps are RFC 3339; a nil
// published date becomes an empty cell.
func WriteCSV(w io.Writer, articles []models.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, a := range articles {
		published := ""
		if a.Published != nil {
			published = a.Published.Format("2006-01-02T15:04:05Z07:00")
		}
		row := []string{
			a.Title,
			a.Link,
			published,
			a.Summary,
			a.Source,
			a.Category,
			a.Keyword,
			strconv.Itoa(a.KeywordMatchCount),
			strconv.Itoa(a.RelevanceScore),
			a.FetchedAt.Format("2006-01-02T15:04:05Z07:00"),
			string(a.Sentiment),
			string(a.Emotion),
			a.AISummary,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
