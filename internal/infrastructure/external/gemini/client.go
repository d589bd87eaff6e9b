package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightclass/conference-hub/pkg/circuitbreaker"
	"github.com/brightclass/conference-hub/pkg/logger"
	"github.com/brightclass/conference-hub/pkg/retry"

	"google.golang.org/genai"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Google AI API key.
	APIKey string

	// Model is the model name, e.g. "gemini-2.0-flash".
	Model string

	// RequestTimeout bounds a single generation call.
	RequestTimeout time.Duration

	// RateLimiterConfig for API rate limiting.
	RateLimiterConfig RateLimiterConfig

	// MaxOutputTokens caps the generated summary length. Zero keeps the
	// model default.
	MaxOutputTokens int32

	// Temperature controls generation randomness.
	Temperature float32

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		APIKey:            apiKey,
		Model:             "gemini-2.0-flash",
		RequestTimeout:    30 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
		MaxOutputTokens:   2048,
		Temperature:       0.4,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAPIKeyMissing is returned when the client is built without a key.
	ErrAPIKeyMissing = errors.New("gemini: api key is required")

	// ErrRateLimited is returned when the local rate limiter gives up waiting.
	ErrRateLimited = errors.New("gemini: rate limited")

	// ErrEmptyResponse is returned when the model produces no text.
	ErrEmptyResponse = errors.New("gemini: empty response")
)

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client wraps the Gemini API behind a rate limiter, circuit breaker, and
// retrier. Summary generation is a degradable feature: callers treat any
// error here as "no summary", never as a failed meeting prep.
type Client struct {
	config  ClientConfig
	genai   *genai.Client
	logger  *logger.Logger
	limiter *RateLimiter
	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	if config.Model == "" {
		config.Model = DefaultClientConfig("").Model
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultClientConfig("").RequestTimeout
	}
	if config.Logger == nil {
		config.Logger = logger.Default()
	}

	ai, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	log := config.Logger.With(logger.Component("gemini"))

	return &Client{
		config:  config,
		genai:   ai,
		logger:  log,
		limiter: NewRateLimiter(config.RateLimiterConfig),
		breaker: circuitbreaker.GeminiAPIBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
		retrier: retry.GeminiRetrier(),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// WriteMeetingSummary generates a meeting summary from the briefing input.
func (c *Client) WriteMeetingSummary(ctx context.Context, in MeetingSummaryInput) (string, error) {
	prompt := buildMeetingSummaryPrompt(in)

	start := time.Now()
	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("meeting summary generation failed",
			logger.Err(err),
			logger.Latency(time.Since(start)),
		)
		return "", err
	}

	c.logger.Debug("meeting summary generated",
		logger.Int("prompt_chars", len(prompt)),
		logger.Int("summary_chars", len(text)),
		logger.Latency(time.Since(start)),
	)
	return text, nil
}

// generate runs one guarded generation: limiter, then breaker, then the
// retried API call.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Allow(ctx); err != nil {
		return "", err
	}

	var text string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
			defer cancel()

			result, err := c.callModel(callCtx, prompt)
			if err != nil {
				if isQuotaError(err) {
					c.limiter.RecordQuotaHit()
				}
				if isRetryable(err) {
					return retry.Retryable(err)
				}
				return retry.Permanent(err)
			}

			text = result
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	return text, nil
}

// callModel performs a single GenerateContent call.
func (c *Client) callModel(ctx context.Context, prompt string) (string, error) {
	genConfig := &genai.GenerateContentConfig{}
	if c.config.MaxOutputTokens > 0 {
		genConfig.MaxOutputTokens = c.config.MaxOutputTokens
	}
	if c.config.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(c.config.Temperature)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// IsHealthy reports whether the circuit currently allows requests.
func (c *Client) IsHealthy() bool {
	return c.breaker.State() != circuitbreaker.StateOpen
}

// Status returns the current status of the client's guards.
type ClientStatus struct {
	Model        string
	RateLimiter  RateLimiterStatus
	BreakerState string
}

// Status returns the current status of the client.
func (c *Client) Status() ClientStatus {
	return ClientStatus{
		Model:        c.config.Model,
		RateLimiter:  c.limiter.Status(),
		BreakerState: c.breaker.State().String(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error classification
// ─────────────────────────────────────────────────────────────────────────────

// isQuotaError detects API-side quota exhaustion.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return containsAny(msg, []string{"429", "RESOURCE_EXHAUSTED", "quota"})
}

// isRetryable checks if an error is worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}
	if isQuotaError(err) {
		return true
	}

	msg := err.Error()
	return containsAny(msg, []string{
		"500", "503", "INTERNAL", "UNAVAILABLE",
		"timeout", "connection refused", "temporary", "reset", "EOF",
	})
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
