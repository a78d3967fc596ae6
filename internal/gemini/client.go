// Package gemini wraps the Google Gen AI SDK as the assistant's model service.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var (
	ErrMissingAPIKey = errors.New("gemini API key is not set")
	ErrMissingModel  = errors.New("gemini model is not set")
)

// Config configures the client.
type Config struct {
	APIKey            string
	Model             string
	Temperature       float32
	RequestsPerSecond float64
	Burst             int
	// HTTPClient overrides the outbound client, mainly for recorded tests.
	HTTPClient *http.Client
}

// Client generates content with a single Gemini model. It is created once at
// startup and shared by all requests.
type Client struct {
	models      *genai.Models
	model       string
	temperature float32
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// New creates a client. It fails fast when the API key or model is missing.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		models:      client.Models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger,
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent sends one generateContent call. The configured temperature
// is applied when config leaves it unset.
func (c *Client) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if config == nil {
		config = &genai.GenerateContentConfig{}
	}
	if config.Temperature == nil && c.temperature > 0 {
		config.Temperature = genai.Ptr(c.temperature)
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, err
	}

	if resp.UsageMetadata != nil {
		c.logger.DebugContext(ctx, "gemini usage",
			slog.String("model", c.model),
			slog.Int64("total_tokens", int64(resp.UsageMetadata.TotalTokenCount)),
		)
	}
	return resp, nil
}
