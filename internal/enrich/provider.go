package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// NoopProvider is used when enrichment is disabled. Every call fails with
// ErrProviderUnavailable.
type NoopProvider struct{}

// Summarize implements Summarizer.
func (NoopProvider) Summarize(context.Context, string) (string, error) {
	return "", ErrProviderUnavailable
}

// ClassifySentiment implements SentimentClassifier.
func (NoopProvider) ClassifySentiment(context.Context, string) (float64, error) {
	return 0, ErrProviderUnavailable
}

// ProviderFactory builds a provider. It is called at most once by LazyProvider.
type ProviderFactory func(ctx context.Context) (Provider, error)

// LazyProvider defers building the real provider until the first call, so
// a slow or failing initialisation does not hold up startup. If the factory
// fails, every call returns ErrProviderUnavailable.
type LazyProvider struct {
	factory ProviderFactory
	logger  *slog.Logger

	once     sync.Once
	provider Provider
	err      error
}

// NewLazyProvider creates a LazyProvider around factory.
func NewLazyProvider(factory ProviderFactory, logger *slog.Logger) *LazyProvider {
	return &LazyProvider{
		factory: factory,
		logger:  logger.With("component", "lazy_provider"),
	}
}

func (p *LazyProvider) get(ctx context.Context) (Provider, error) {
	p.once.Do(func() {
		p.provider, p.err = p.factory(context.WithoutCancel(ctx))
		if p.err == nil && p.provider == nil {
			p.err = errors.New("factory returned no provider")
		}
		if p.err != nil {
			p.logger.Error("enrichment provider initialisation failed, enrichment disabled", "error", p.err)
			return
		}
		p.logger.Info("enrichment provider initialised")
	})
	if p.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, p.err)
	}
	return p.provider, nil
}

// Summarize implements Summarizer.
func (p *LazyProvider) Summarize(ctx context.Context, text string) (string, error) {
	provider, err := p.get(ctx)
	if err != nil {
		return "", err
	}
	return provider.Summarize(ctx, text)
}

// ClassifySentiment implements SentimentClassifier.
func (p *LazyProvider) ClassifySentiment(ctx context.Context, text string) (float64, error) {
	provider, err := p.get(ctx)
	if err != nil {
		return 0, err
	}
	return provider.ClassifySentiment(ctx, text)
}

var (
	_ Provider = NoopProvider{}
	_ Provider = (*LazyProvider)(nil)
)
