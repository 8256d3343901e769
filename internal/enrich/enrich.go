package enrich

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable is returned by providers that cannot serve
	// requests, either because none is configured or because initialisation failed.
	ErrProviderUnavailable = errors.New("enrichment provider unavailable")

	// ErrProviderPanic wraps a panic raised inside a provider call.
	ErrProviderPanic = errors.New("enrichment provider panicked")

	// ErrInvalidScore is returned when a classifier produces a value that is not a number.
	ErrInvalidScore = errors.New("sentiment score is not a number")
)

// Summarizer produces a short summary of plain text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SentimentClassifier scores the sentiment of plain text in [0, 1].
type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) (float64, error)
}

// Provider computes both enrichment fields.
type Provider interface {
	Summarizer
	SentimentClassifier
}

// Result holds the enrichment fields computed for one piece of content.
// A nil field could not be computed.
type Result struct {
	Summary   *string
	Sentiment *float64
}

// IsEmpty reports whether neither field was computed.
func (r Result) IsEmpty() bool {
	return r.Summary == nil && r.Sentiment == nil
}
