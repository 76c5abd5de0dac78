package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/config"
	dbRedis "github.com/kailas-cloud/pagex/internal/db/redis"
	"github.com/kailas-cloud/pagex/internal/domain"
	"github.com/kailas-cloud/pagex/internal/encode"
	"github.com/kailas-cloud/pagex/internal/render"
	openaiExt "github.com/kailas-cloud/pagex/internal/transport/openai"
	vertexExt "github.com/kailas-cloud/pagex/internal/transport/vertex"
	extractionuc "github.com/kailas-cloud/pagex/internal/usecase/extraction"
	inferenceuc "github.com/kailas-cloud/pagex/internal/usecase/inference"
	"github.com/kailas-cloud/pagex/internal/usecase/parse"
)

// extractor is the provider chain: transport -> instrumented.
type extractor interface {
	domain.Extractor
	domain.HealthChecker
}

// extractionConfig merges configured overrides over the built-in defaults.
func extractionConfig(cfg config.Config) domain.ExtractionConfig {
	ec := domain.DefaultExtractionConfig()
	if cfg.Extraction.TitleKey != "" {
		ec.TitleKey = cfg.Extraction.TitleKey
	}
	if cfg.Extraction.Placeholder != "" {
		ec.Placeholder = cfg.Extraction.Placeholder
	}
	if cfg.Inference.Prompt != "" {
		ec.Prompt = cfg.Inference.Prompt
	}
	ec.MaxTokens = cfg.Inference.MaxTokens
	ec.Temperature = cfg.Inference.Temperature
	ec.JPEGQuality = cfg.Render.JPEGQuality
	ec.DPI = cfg.Render.DPI
	return ec
}

// buildExtractor creates the configured provider. closeFn releases provider resources.
func buildExtractor(
	ctx context.Context, cfg config.Config, ec domain.ExtractionConfig, logger *zap.Logger,
) (extractor, func(), error) {
	inf := cfg.Inference
	closeFn := func() {}

	var base extractor
	switch inf.Provider {
	case config.ProviderVertex:
		v, err := vertexExt.NewExtractor(ctx, &vertexExt.Config{
			Project:         inf.Vertex.Project,
			Location:        inf.Vertex.Location,
			CredentialsFile: inf.Vertex.CredentialsFile,
			Model:           inf.Model,
			MaxTokens:       ec.MaxTokens,
			Temperature:     ec.Temperature,
			Instruction:     ec.Instruction(),
			Provider:        inf.Provider,
			Logger:          logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("vertex extractor: %w", err)
		}
		base = v
		closeFn = func() {
			if err := v.Close(); err != nil {
				logger.Warn("Failed to close vertex client", zap.Error(err))
			}
		}
	default:
		o, err := openaiExt.NewExtractor(&openaiExt.Config{
			APIKey:      inf.APIKey,
			BaseURL:     inf.BaseURL,
			Model:       inf.Model,
			MaxTokens:   ec.MaxTokens,
			Temperature: ec.Temperature,
			Instruction: ec.Instruction(),
			Provider:    inf.Provider,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai extractor: %w", err)
		}
		base = o
	}

	return inferenceuc.NewInstrumentedExtractor(base, inf.Provider, inf.Model, logger), closeFn, nil
}

// buildExtraction assembles render -> encode -> extract -> parse for one document.
func buildExtraction(
	cfg config.Config, ec domain.ExtractionConfig, ext domain.Extractor, logger *zap.Logger,
) (*extractionuc.Service, error) {
	renderer := render.New(render.Config{
		DPI:      ec.DPI,
		Precheck: cfg.Render.Precheck,
		Logger:   logger,
	})
	encoder, err := encode.NewJPEG(ec.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	parser := parse.New().WithCodeFences(cfg.Parser.StripCodeFences)

	return extractionuc.New(renderer, encoder, ext, parser).
		WithTitleKey(ec.TitleKey).
		WithPlaceholder(ec.Placeholder).
		WithLogger(logger), nil
}

func newStore(cfg config.StoreConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create result store: %w", err)
	}
	return store, nil
}

// openStore connects to the result store and waits until it answers.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*dbRedis.Store, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("result store not ready: %w", err)
	}
	logger.Info("Connected to result store", zap.Strings("addrs", cfg.Addrs))
	return store, nil
}
