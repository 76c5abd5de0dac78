// Package vertex implements page inference against Gemini models on Vertex AI.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/kailas-cloud/pagex/internal/domain"
	"github.com/kailas-cloud/pagex/internal/domain/page"
	"github.com/kailas-cloud/pagex/internal/metrics"
)

// generator is the subset of *genai.GenerativeModel used here.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Config holds Vertex AI settings. CredentialsFile is the explicit credential;
// when empty, application default credentials are used.
type Config struct {
	Project         string
	Location        string
	CredentialsFile string
	Model           string
	MaxTokens       int
	Temperature     float32
	Instruction     string
	Provider        string
	Logger          *zap.Logger
}

// Extractor is a page inference provider backed by a Gemini model.
type Extractor struct {
	model       generator
	client      *genai.Client
	modelName   string
	instruction string
	provider    string
	logger      *zap.Logger
}

// NewExtractor dials Vertex AI and configures the generative model.
func NewExtractor(ctx context.Context, cfg *Config) (*Extractor, error) {
	if cfg.Project == "" || cfg.Location == "" {
		return nil, errors.New("vertex project and location are required")
	}
	if cfg.Model == "" {
		return nil, errors.New("inference model is required")
	}
	if cfg.Instruction == "" {
		return nil, errors.New("inference instruction is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.Project, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(cfg.Temperature),
	}
	if cfg.MaxTokens > 0 {
		model.GenerationConfig.MaxOutputTokens = genai.Ptr(int32(cfg.MaxTokens))
	}

	ext := newExtractor(model, cfg)
	ext.client = client
	return ext, nil
}

func newExtractor(model generator, cfg *Config) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		model:       model,
		modelName:   cfg.Model,
		instruction: cfg.Instruction,
		provider:    cfg.Provider,
		logger:      logger,
	}
}

// Extract implements domain.Extractor. One request per call, no retries.
func (e *Extractor) Extract(ctx context.Context, p page.Encoded) (domain.InferenceResult, error) {
	data, err := p.Bytes()
	if err != nil {
		return domain.InferenceResult{}, fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := e.model.GenerateContent(ctx,
		genai.Blob{MIMEType: p.MediaType(), Data: data},
		genai.Text(e.instruction),
	)

	duration := time.Since(start)

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(e.provider, e.modelName, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(e.provider, e.modelName, errorType(err)).Inc()
		return domain.InferenceResult{}, fmt.Errorf("generate content: %w: %w", domain.ErrInference, err)
	}

	text, ok := responseText(resp)
	if !ok {
		metrics.InferenceRequestsTotal.WithLabelValues(e.provider, e.modelName, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(e.provider, e.modelName, "empty_response").Inc()
		return domain.InferenceResult{}, fmt.Errorf("empty generate content response: %w", domain.ErrInference)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(e.provider, e.modelName, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(e.provider, e.modelName).Observe(duration.Seconds())

	result := domain.InferenceResult{Text: text, RequestID: requestID}
	if u := resp.UsageMetadata; u != nil {
		result.PromptTokens = int(u.PromptTokenCount)
		result.CompletionTokens = int(u.CandidatesTokenCount)
		metrics.InferenceTokensTotal.WithLabelValues(e.provider, e.modelName, "prompt").Add(float64(u.PromptTokenCount))
		metrics.InferenceTokensTotal.WithLabelValues(e.provider, e.modelName, "completion").Add(float64(u.CandidatesTokenCount))
	}
	return result, nil
}

// HealthCheck reports whether the model handle is configured.
// Vertex has no free listing endpoint comparable to ListModels.
func (e *Extractor) HealthCheck(_ context.Context) error {
	if e.model == nil {
		return errors.New("vertex model not configured")
	}
	return nil
}

// Close releases the underlying client.
func (e *Extractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	var sb strings.Builder
	found := false
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
			found = true
		}
	}
	return sb.String(), found
}

func errorType(err error) string {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return "blocked"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "transport"
	}
	return "api_error"
}
