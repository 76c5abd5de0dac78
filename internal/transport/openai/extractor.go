package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/domain"
	"github.com/kailas-cloud/pagex/internal/domain/page"
	"github.com/kailas-cloud/pagex/internal/metrics"
)

// Extractor is a page inference provider using the OpenAI-compatible chat completions API.
type Extractor struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	instruction string
	provider    string
	logger      *zap.Logger
}

// Config holds the inference provider settings. APIKey is the only credential.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Instruction string
	Provider    string
	Logger      *zap.Logger
}

// NewExtractor creates an OpenAI-compatible page extractor.
func NewExtractor(cfg *Config) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("inference api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("inference model is required")
	}
	if cfg.Instruction == "" {
		return nil, errors.New("inference instruction is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		instruction: cfg.Instruction,
		provider:    cfg.Provider,
		logger:      logger,
	}, nil
}

// Extract implements domain.Extractor. One request per call, no retries.
func (e *Extractor) Extract(ctx context.Context, p page.Encoded) (domain.InferenceResult, error) {
	requestID := uuid.NewString()

	req := openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Temperature: requestTemperature(e.temperature),
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    p.DataURL(),
							Detail: openai.ImageURLDetailAuto,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: e.instruction,
					},
				},
			},
		},
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(e.provider, e.model, errorType(err)).Inc()
		return domain.InferenceResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.InferenceRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(e.provider, e.model, "empty_response").Inc()
		return domain.InferenceResult{}, fmt.Errorf("empty completion response: %w", domain.ErrInference)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(e.provider, e.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.InferenceTokensTotal.WithLabelValues(e.provider, e.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.InferenceTokensTotal.WithLabelValues(e.provider, e.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		// Truncated output will almost certainly fall back to raw text.
		e.logger.Warn("Completion truncated by max_tokens",
			zap.String("request_id", requestID),
			zap.Int("page", p.Index()),
			zap.Int("max_tokens", e.maxTokens),
		)
	}

	return domain.InferenceResult{
		Text:             choice.Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		RequestID:        requestID,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// requestTemperature maps 0 to the smallest positive float32:
// the request field is omitempty, so a literal 0 would fall back to the server default.
func requestTemperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrInference.
func parseAPIError(err error) error {
	wrap := domain.ErrInference

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("inference API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("inference API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("inference API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	return fmt.Errorf("inference request failed: %w: %w", wrap, err)
}

// errorType classifies a failure for the error_type metric label.
func errorType(err error) string {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return "transport"
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "auth"
	case http.StatusTooManyRequests:
		return "quota"
	default:
		return "api_error"
	}
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
