// Package classify is the boundary to the remote text-classification
// capability: per-article sentiment, emotion, and short summaries. Every
// remote call can fail independently; failures degrade to the unknown
// labels and never abort the batch.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/fortega-m/vigia/internal/llm"
	"github.com/fortega-m/vigia/pkg/models"
)

// MaxInputChars bounds the article text submitted per classification call.
const MaxInputChars = 500

// Classifier is the contract the pipeline consumes. Implementations are
// expected to be safe for concurrent use.
type Classifier interface {
	// Sentiment labels a text POSITIVO, NEUTRAL, or NEGATIVO.
	Sentiment(ctx context.Context, text string) (models.Sentiment, error)

	// Emotion labels a text with its dominant emotion.
	Emotion(ctx context.Context, text string) (models.Emotion, error)

	// Summarize produces a short summary of an article.
	Summarize(ctx context.Context, title, summary string) (string, error)
}

const (
	sentimentSystem = "Eres un analista de noticias. Clasifica el sentimiento del texto. " +
		"Responde con una sola palabra: POSITIVO, NEUTRAL o NEGATIVO."
	emotionSystem = "Eres un analista de noticias. Clasifica la emoción dominante del texto. " +
		"Responde con una sola palabra: RISA, IRA, MIEDO, TRISTEZA, DISGUSTO, SORPRESA o NEUTRAL."
	summarySystem = "Eres un analista de noticias. Resume la noticia en dos frases claras en español."
)

// DeepSeek implements Classifier over the DeepSeek chat API.
type DeepSeek struct {
	client *llm.Client
}

// NewDeepSeek wraps an llm client as a Classifier.
func NewDeepSeek(client *llm.Client) *DeepSeek {
	return &DeepSeek{client: client}
}

// Sentiment classifies the text's sentiment. Out-of-set model replies are an
// error so the caller's fallback stays distinguishable from a real NEUTRAL.
func (d *DeepSeek) Sentiment(ctx context.Context, text string) (models.Sentiment, error) {
	reply, err := d.client.Chat(ctx, sentimentSystem, Truncate(text, MaxInputChars))
	if err != nil {
		return models.SentimentUnknown, err
	}
	s, ok := models.ParseSentiment(firstWord(reply))
	if !ok {
		return models.SentimentUnknown, fmt.Errorf("classify: unrecognized sentiment label %q", reply)
	}
	return s, nil
}

// Emotion classifies the text's dominant emotion.
func (d *DeepSeek) Emotion(ctx context.Context, text string) (models.Emotion, error) {
	reply, err := d.client.Chat(ctx, emotionSystem, Truncate(text, MaxInputChars))
	if err != nil {
		return models.EmotionUnknown, err
	}
	e, ok := models.ParseEmotion(firstWord(reply))
	if !ok {
		return models.EmotionUnknown, fmt.Errorf("classify: unrecognized emotion label %q", reply)
	}
	return e, nil
}

// Summarize produces a short Spanish summary of one article.
func (d *DeepSeek) Summarize(ctx context.Context, title, summary string) (string, error) {
	text := title
	if summary != "" {
		text += "\n\n" + summary
	}
	return d.client.Chat(ctx, summarySystem, Truncate(text, MaxInputChars))
}

// Truncate bounds a string to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// firstWord extracts the leading token of a model reply, tolerating replies
// that append punctuation or explanation after the label.
func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,:;!¡¿?\"'")
}
