package export

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fortega-m/vigia/pkg/models"
)

// ConsolidatedReport renders the full search outcome as plain text: risk
// block first, then sentiment and emotion distributions, then one detail
// block per article.
func ConsolidatedReport(keyword string, articles []models.Article, risk models.RiskAssessment) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  MONITOR DE NOTICIAS — %q\n", keyword))
	sb.WriteString(fmt.Sprintf("  Generado: %s | %d noticias\n", time.Now().Format("2006-01-02 15:04"), len(articles)))
	sb.WriteString(line + "\n\n")

	// Risk
	sb.WriteString("  ★ ANÁLISIS DE RIESGO\n")
	sb.WriteString(fmt.Sprintf("  Nivel: %s | Score: %.1f%% | Negativas: %d | Positivas: %d\n",
		risk.Level, risk.Score, risk.NegativeCount, risk.PositiveCount))
	sb.WriteString(fmt.Sprintf("  %s\n", risk.Analysis))
	sb.WriteString(thinLine + "\n")

	// Distributions
	writeDistribution(&sb, "SENTIMIENTO", countBy(articles, func(a models.Article) string { return string(a.Sentiment) }), len(articles))
	writeDistribution(&sb, "EMOCIÓN", countBy(articles, func(a models.Article) string { return string(a.Emotion) }), len(articles))

	// Per-article detail
	sb.WriteString("\n  ■ NOTICIAS\n")
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("\n  %d. [%s | %s] %s\n", i+1, a.Sentiment, a.Source, a.Title))
		if a.Published != nil {
			sb.WriteString(fmt.Sprintf("     Fecha: %s\n", a.Published.Format("2006-01-02 15:04")))
		}
		sb.WriteString(fmt.Sprintf("     Menciones: %d | Emoción: %s\n", a.KeywordMatchCount, a.Emotion))
		if a.AISummary != "" {
			sb.WriteString(fmt.Sprintf("     %s\n", Highlight(a.AISummary, keyword)))
		} else if a.Summary != "" {
			sb.WriteString(fmt.Sprintf("     %s\n", Highlight(a.Summary, keyword)))
		}
		if a.Link != "" {
			sb.WriteString(fmt.Sprintf("     %s\n", a.Link))
		}
	}

	sb.WriteString("\n" + line + "\n")
	return sb.String()
}

// writeDistribution appends a label-count-percentage block, labels sorted by
// descending count with name as tiebreaker so output is stable.
func writeDistribution(sb *strings.Builder, title string, counts map[string]int, total int) {
	if total == 0 || len(counts) == 0 {
		return
	}
	type row struct {
		label string
		count int
	}
	rows := make([]row, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, row{label, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].label < rows[j].label
	})

	sb.WriteString(fmt.Sprintf("\n  ■ DISTRIBUCIÓN DE %s\n", title))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("    %-12s %3d (%.1f%%)\n", r.label, r.count, 100*float64(r.count)/float64(total)))
	}
}

func countBy(articles []models.Article, key func(models.Article) string) map[string]int {
	counts := make(map[string]int)
	for _, a := range articles {
		if k := key(a); k != "" {
			counts[k]++
		}
	}
	return counts
}

// Highlight wraps every case-insensitive keyword occurrence in ** markers.
func Highlight(text, keyword string) string {
	if text == "" || keyword == "" {
		return text
	}
	pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(keyword))
	return pattern.ReplaceAllStringFunc(text, func(m string) string {
		return "**" + m + "**"
	})
}
