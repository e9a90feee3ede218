package models

import (
	"strings"
	"time"
)

// Sentiment is the sentiment label assigned to an article by the classifier.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVO"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVO"
	// SentimentUnknown marks a failed or unrecognized classification. It is
	// deliberately distinct from NEUTRAL so a broken classifier never reads
	// as a genuine neutral result.
	SentimentUnknown Sentiment = "DESCONOCIDO"
)

// Emotion is the dominant emotion label assigned to an article.
type Emotion string

const (
	EmotionJoy      Emotion = "RISA"
	EmotionAnger    Emotion = "IRA"
	EmotionFear     Emotion = "MIEDO"
	EmotionSadness  Emotion = "TRISTEZA"
	EmotionDisgust  Emotion = "DISGUSTO"
	EmotionSurprise Emotion = "SORPRESA"
	EmotionNeutral  Emotion = "NEUTRAL"
	// EmotionUnknown is reserved for classifier failure or out-of-set labels.
	EmotionUnknown Emotion = "DESCONOCIDO"
)

// ParseSentiment normalizes a raw classifier label into a Sentiment.
// Anything outside the closed set maps to SentimentUnknown so typo'd labels
// cannot slip through downstream filters.
func ParseSentiment(s string) (Sentiment, bool) {
	switch Sentiment(strings.ToUpper(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, true
	case SentimentNeutral:
		return SentimentNeutral, true
	case SentimentNegative:
		return SentimentNegative, true
	}
	return SentimentUnknown, false
}

// ParseEmotion normalizes a raw classifier label into an Emotion.
// DESCONOCIDO itself is not accepted as model output; it is the local fallback.
func ParseEmotion(s string) (Emotion, bool) {
	switch e := Emotion(strings.ToUpper(strings.TrimSpace(s))); e {
	case EmotionJoy, EmotionAnger, EmotionFear, EmotionSadness,
		EmotionDisgust, EmotionSurprise, EmotionNeutral:
		return e, true
	}
	return EmotionUnknown, false
}

// SourceDefinition is one configured news source: a fixed publisher RSS feed
// belonging to a category. Loaded once at startup, immutable afterwards.
type SourceDefinition struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// RawEntry is one feed item as returned by the fetcher, before keyword
// matching. Fields missing from a feed default to the empty string.
type RawEntry struct {
	Title        string
	Link         string
	PublishedRaw string     // unparsed date string, possibly empty or malformed
	Published    *time.Time // parsed timestamp when the feed provided one
	Summary      string     // HTML-stripped description
	SourceLabel  string
	Category     string
}

// Article is the durable unit flowing through the pipeline: a keyword-matched
// entry, later enriched by the classifier.
type Article struct {
	Title             string     `json:"title"`
	Link              string     `json:"link"`
	Published         *time.Time `json:"published,omitempty"` // nil when the feed date was absent or unparsable
	Summary           string     `json:"summary"`
	Source            string     `json:"source"`
	Category          string     `json:"category,omitempty"`
	Keyword           string     `json:"keyword"`
	KeywordMatchCount int        `json:"keyword_matches"`
	RelevanceScore    int        `json:"relevance_score"`
	FetchedAt         time.Time  `json:"fetched_at"`

	// Set by the classifier stage.
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Emotion   Emotion   `json:"emotion,omitempty"`
	AISummary string    `json:"ai_summary,omitempty"`
}

// RiskLevel is the discrete crisis risk level, ordered low to critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "BAJO"
	RiskMedium   RiskLevel = "MEDIO"
	RiskHigh     RiskLevel = "ALTO"
	RiskCritical RiskLevel = "CRÍTICO"
)

// riskOrder maps levels onto an ordinal scale for comparisons.
var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// AtLeast reports whether l is at or above the given level.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return riskOrder[l] >= riskOrder[other]
}

// RiskAssessment summarizes the perceived crisis severity of one search.
// Derived fresh from the current article set, never persisted on its own.
type RiskAssessment struct {
	Level         RiskLevel `json:"level"`
	Score         float64   `json:"score"` // percentage, monotonic in negative proportion
	NegativeCount int       `json:"negative_count"`
	PositiveCount int       `json:"positive_count"`
	Analysis      string    `json:"analysis"`
}
