package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/phrazzld/notes-api/internal/platform/logger"
)

// PipelineConfig controls how enrichment calls are made.
type PipelineConfig struct {
	// Timeout bounds each provider call. Zero means 30 seconds.
	Timeout time.Duration

	// SummaryMaxChars truncates summaries to this many characters. Zero
	// means 300.
	SummaryMaxChars int

	// CacheSize is the number of results memoised by content hash. Zero
	// disables the cache.
	CacheSize int
}

// DefaultPipelineConfig returns the settings used when none are configured.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Timeout:         30 * time.Second,
		SummaryMaxChars: 300,
		CacheSize:       1024,
	}
}

// Pipeline prepares note content, calls the provider for each field and
// shapes the results.
type Pipeline struct {
	provider Provider
	config   PipelineConfig
	cache    *resultCache
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline backed by provider.
func NewPipeline(provider Provider, config PipelineConfig, logger *slog.Logger) *Pipeline {
	defaults := DefaultPipelineConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.SummaryMaxChars <= 0 {
		config.SummaryMaxChars = defaults.SummaryMaxChars
	}
	if provider == nil {
		provider = NoopProvider{}
	}

	p := &Pipeline{
		provider: provider,
		config:   config,
		logger:   logger.With("component", "enrichment_pipeline"),
	}
	if config.CacheSize > 0 {
		p.cache = newResultCache(config.CacheSize)
	}
	return p
}

// Enrich computes the summary and sentiment of content. It never fails:
// each field is computed independently and left nil when its provider
// call errors, panics or times out.
//
// Content with no readable text gets an empty summary and a zero score
// without calling the provider.
func (p *Pipeline) Enrich(ctx context.Context, content string) Result {
	log := logger.FromContextOrDefault(ctx, p.logger)

	text := PlainText(content)
	if strings.TrimSpace(text) == "" {
		empty, zero := "", 0.0
		return Result{Summary: &empty, Sentiment: &zero}
	}

	var (
		key    cacheKey
		result Result
	)
	if p.cache != nil {
		key = keyFor(text)
		if cached, ok := p.cache.get(key); ok {
			result = cached
			if cached.Summary != nil && cached.Sentiment != nil {
				log.Debug("enrichment served from cache")
				return result
			}
		}
	}

	if result.Summary == nil {
		summary, err := call(ctx, p.config.Timeout, func(ctx context.Context) (string, error) {
			return p.provider.Summarize(ctx, text)
		})
		if err != nil {
			logFailure(log, "summary", err)
		} else {
			summary = truncate(strings.TrimSpace(summary), p.config.SummaryMaxChars)
			result.Summary = &summary
		}
	}

	if result.Sentiment == nil {
		score, err := call(ctx, p.config.Timeout, func(ctx context.Context) (float64, error) {
			return p.provider.ClassifySentiment(ctx, text)
		})
		if err == nil && math.IsNaN(score) {
			err = ErrInvalidScore
		}
		if err != nil {
			logFailure(log, "sentiment", err)
		} else {
			score = clamp(score)
			result.Sentiment = &score
		}
	}

	if p.cache != nil {
		p.cache.merge(key, result)
	}
	return result
}

// call runs fn with a deadline. The deadline holds even when fn ignores its
// context; the abandoned goroutine finishes on its own.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", ErrProviderPanic, r)}
			}
		}()
		v, err := fn(ctx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func logFailure(log *slog.Logger, field string, err error) {
	if errors.Is(err, ErrProviderUnavailable) {
		log.Debug("enrichment skipped, provider unavailable", "field", field)
		return
	}
	log.Warn("enrichment failed, field left empty", "field", field, "error", err)
}

// truncate cuts s to at most limit characters.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
