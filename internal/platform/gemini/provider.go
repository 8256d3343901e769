package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/phrazzld/notes-api/internal/config"
	"github.com/phrazzld/notes-api/internal/enrich"
	"github.com/phrazzld/notes-api/internal/platform/logger"
	"google.golang.org/genai"
)

// ContentGenerator is the part of the genai client used by Provider.
// *genai.Models implements it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Provider implements enrich.Provider using the Gemini API.
type Provider struct {
	generator  ContentGenerator
	model      string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

var _ enrich.Provider = (*Provider)(nil)

// New creates a Provider with a genai client built from cfg.
func New(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Provider, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return NewWithGenerator(client.Models, cfg, logger)
}

// NewWithGenerator creates a Provider that sends requests through generator.
func NewWithGenerator(generator ContentGenerator, cfg config.LLMConfig, logger *slog.Logger) (*Provider, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	log := logger.With("component", "gemini_provider", "model", cfg.ModelName)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		log.Warn("invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	delaySeconds := cfg.RetryDelaySeconds
	if delaySeconds < 1 {
		log.Warn("invalid retry delay value, using default", "retry_delay_seconds", 2)
		delaySeconds = 2
	}

	return &Provider{
		generator:  generator,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  time.Duration(delaySeconds) * time.Second,
		logger:     log,
	}, nil
}

// Summarize implements enrich.Summarizer.
func (p *Provider) Summarize(ctx context.Context, text string) (string, error) {
	prompt, err := renderPrompt(summaryPrompt, text)
	if err != nil {
		return "", err
	}

	var resp summaryResponse
	if err := p.generateJSON(ctx, prompt, &resp); err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Summary)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", ErrInvalidResponse)
	}
	return summary, nil
}

// ClassifySentiment implements enrich.SentimentClassifier. The score runs
// from 0 (negative) through 0.5 (neutral) to 1 (positive).
func (p *Provider) ClassifySentiment(ctx context.Context, text string) (float64, error) {
	prompt, err := renderPrompt(sentimentPrompt, text)
	if err != nil {
		return 0, err
	}

	var resp sentimentResponse
	if err := p.generateJSON(ctx, prompt, &resp); err != nil {
		return 0, err
	}

	if resp.Score == nil {
		return 0, fmt.Errorf("%w: missing sentiment score", ErrInvalidResponse)
	}
	score := *resp.Score
	if math.IsNaN(score) || score < 0 || score > 1 {
		return 0, fmt.Errorf("%w: sentiment score %v out of range", ErrInvalidResponse, score)
	}
	return score, nil
}

// generateJSON sends prompt to the model and decodes the JSON answer into
// out, retrying transient failures with exponential backoff and jitter.
func (p *Provider) generateJSON(ctx context.Context, prompt string, out any) error {
	log := logger.FromContextOrDefault(ctx, p.logger)

	for attempt := 0; ; attempt++ {
		err := p.generateOnce(ctx, prompt, out)
		if err == nil {
			log.Debug("gemini call succeeded", "attempt", attempt+1)
			return nil
		}

		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			log.Warn("permanent gemini error, not retrying", "error", err)
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ErrTransientFailure, ctxErr)
		}
		if attempt >= p.maxRetries {
			log.Warn("maximum retry attempts reached", "max_retries", p.maxRetries, "error", err)
			return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, p.maxRetries, err)
		}

		delay := p.backoff(attempt)
		log.Info("retrying gemini call after delay",
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns baseDelay * 2^attempt scaled by a random factor in [0.5, 1).
func (p *Provider) backoff(attempt int) time.Duration {
	d := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	return time.Duration(d * (0.5 + rand.Float64()*0.5))
}

func (p *Provider) generateOnce(ctx context.Context, prompt string, out any) error {
	resp, err := p.generator.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return err
	}

	text, err := responseText(resp)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", ErrContentBlocked
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no text in response", ErrInvalidResponse)
	}
	return b.String(), nil
}
