package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurex/internal/domain"
	"github.com/kailas-cloud/jurex/internal/metrics"
)

var (
	_ domain.Generator     = (*Generator)(nil)
	_ domain.HealthChecker = (*Generator)(nil)
)

// Generator is a chat completion provider using the OpenAI-compatible API.
// Transient backend failures are retried with exponential backoff, and
// concurrent calls are bounded by a semaphore.
type Generator struct {
	client     *openai.Client
	model      string
	provider   string
	maxRetries int
	baseDelay  time.Duration
	sem        chan struct{}
	logger     *zap.Logger
}

// GeneratorConfig holds the chat provider settings.
type GeneratorConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Provider       string
	MaxRetries     int
	BaseDelay      time.Duration
	MaxConcurrent  int
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.RequestTimeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	return &Generator{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		provider:   cfg.Provider,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sem:        make(chan struct{}, maxConcurrent),
		logger:     cfg.Logger,
	}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	select {
	case g.sem <- struct{}{}:
		defer func() { <-g.sem }()
	case <-ctx.Done():
		return domain.GenerationResult{}, ctx.Err()
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay(g.baseDelay, attempt)):
			case <-ctx.Done():
				return domain.GenerationResult{}, ctx.Err()
			}
		}

		start := time.Now()
		resp, err := g.client.CreateChatCompletion(ctx, chatReq)
		duration := time.Since(start)

		if err != nil {
			metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
			lastErr = err

			if ctx.Err() != nil {
				return domain.GenerationResult{}, ctx.Err()
			}
			if !isRetryable(err) {
				break
			}
			g.logger.Warn("chat completion failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		if len(resp.Choices) == 0 {
			metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
			lastErr = errors.New("empty choices in chat response")
			continue
		}

		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
		metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())
		if resp.Usage.TotalTokens > 0 {
			metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "prompt").
				Add(float64(resp.Usage.PromptTokens))
			metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "completion").
				Add(float64(resp.Usage.CompletionTokens))
			metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "total").
				Add(float64(resp.Usage.TotalTokens))
		}

		return domain.GenerationResult{
			Text:             resp.Choices[0].Message.Content,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}, nil
	}

	return domain.GenerationResult{}, fmt.Errorf(
		"chat completion after %d attempts: %v: %w", g.maxRetries, lastErr, domain.ErrGenerationProvider)
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// retryDelay computes exponential backoff: base << attempt, capped at 5s.
func retryDelay(base time.Duration, attempt int) time.Duration {
	delay := base << attempt
	if maxDelay := 5 * time.Second; delay > maxDelay {
		return maxDelay
	}
	return delay
}

// isRetryable reports whether the backend error is worth retrying:
// rate limits, server errors, and transport failures.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests ||
			reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	// transport-level failure (connection reset, DNS, etc.)
	return true
}
