// Package crisis reduces a classified article set to a single risk signal.
package crisis

import (
	"fmt"

	"github.com/fortega-m/vigia/pkg/models"
)

// Level thresholds over the 0–100 score. The score is the percentage of
// NEGATIVO articles, so it is monotonic in the negative proportion by
// construction.
const (
	mediumThreshold   = 25.0
	highThreshold     = 50.0
	criticalThreshold = 75.0
)

// Score derives a risk assessment from the current article set. An empty
// set is ordinarily unreachable (the pipeline short-circuits earlier) but
// deterministically yields a BAJO/zero assessment.
func Score(articles []models.Article) models.RiskAssessment {
	if len(articles) == 0 {
		return models.RiskAssessment{
			Level:    models.RiskLow,
			Analysis: "Sin noticias para evaluar.",
		}
	}

	var negative, positive int
	emotions := make(map[models.Emotion]int)
	for _, a := range articles {
		switch a.Sentiment {
		case models.SentimentNegative:
			negative++
		case models.SentimentPositive:
			positive++
		}
		if a.Emotion != "" && a.Emotion != models.EmotionUnknown {
			emotions[a.Emotion]++
		}
	}

	total := len(articles)
	score := 100 * float64(negative) / float64(total)

	level := models.RiskLow
	switch {
	case score >= criticalThreshold:
		level = models.RiskCritical
	case score >= highThreshold:
		level = models.RiskHigh
	case score >= mediumThreshold:
		level = models.RiskMedium
	}

	return models.RiskAssessment{
		Level:         level,
		Score:         score,
		NegativeCount: negative,
		PositiveCount: positive,
		Analysis:      analysisText(level, score, negative, positive, total, dominantEmotion(emotions)),
	}
}

// dominantEmotion returns the most frequent emotion, or "" when none were
// classified. Ties resolve to the emotion with the lexically smaller name so
// the text is stable across runs.
func dominantEmotion(counts map[models.Emotion]int) models.Emotion {
	var best models.Emotion
	bestCount := 0
	for e, n := range counts {
		if n > bestCount || (n == bestCount && bestCount > 0 && e < best) {
			best = e
			bestCount = n
		}
	}
	return best
}

func analysisText(level models.RiskLevel, score float64, negative, positive, total int, emotion models.Emotion) string {
	base := fmt.Sprintf(
		"Nivel de riesgo %s: %d de %d noticias negativas (%.1f%%), %d positivas.",
		level, negative, total, score, positive,
	)
	if emotion != "" {
		base += fmt.Sprintf(" Emoción predominante: %s.", emotion)
	}
	switch level {
	case models.RiskCritical:
		base += " Cobertura abrumadoramente negativa; se recomienda seguimiento inmediato."
	case models.RiskHigh:
		base += " La cobertura negativa domina; conviene monitorear de cerca."
	case models.RiskMedium:
		base += " Presencia negativa moderada en la cobertura."
	default:
		base += " Cobertura mayormente neutral o positiva."
	}
	return base
}
