package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/config"
	"github.com/kailas-cloud/pagex/internal/discovery"
	"github.com/kailas-cloud/pagex/internal/domain"
	dombatch "github.com/kailas-cloud/pagex/internal/domain/batch"
	"github.com/kailas-cloud/pagex/internal/export"
	logpkg "github.com/kailas-cloud/pagex/internal/logger"
	resultrepo "github.com/kailas-cloud/pagex/internal/repository/result"
	chiTransport "github.com/kailas-cloud/pagex/internal/transport/chi"
	batchuc "github.com/kailas-cloud/pagex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/pagex/internal/usecase/health"
)

type runFlags struct {
	output       string
	format       string
	policy       string
	titleKey     string
	writePartial bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Extract every PDF in a directory and write the combined result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Discovery.InputDir = args[0]
			}
			if err := f.apply(&a.cfg); err != nil {
				return err
			}
			return a.run(cmd.Context(), f.writePartial)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (overrides output.path)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: json, xlsx, parquet")
	cmd.Flags().StringVar(&f.policy, "policy", "", "failure policy: fail_fast, skip")
	cmd.Flags().StringVar(&f.titleKey, "title-key", "", "response field used in page keys")
	cmd.Flags().BoolVar(&f.writePartial, "write-partial", false, "write documents finished before a fail-fast abort")
	return cmd
}

// apply overlays explicitly set flags onto cfg and re-validates.
func (f *runFlags) apply(cfg *config.Config) error {
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.output != "" {
		cfg.Output.Path = f.output
	}
	if f.policy != "" {
		cfg.Batch.Policy = f.policy
	}
	if f.titleKey != "" {
		cfg.Extraction.TitleKey = f.titleKey
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func (a *app) run(parent context.Context, writePartial bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, runID := logpkg.WithRun(ctx, a.logger)
	ctx, usage := domain.NewContextWithUsage(ctx)
	log := logpkg.FromContext(ctx)
	cfg := a.cfg

	log.Info("Starting pagex run",
		zap.String("env", a.env),
		zap.String("input_dir", cfg.Discovery.InputDir),
		zap.String("provider", cfg.Inference.Provider),
		zap.String("model", cfg.Inference.Model),
		zap.String("policy", cfg.Batch.Policy),
		zap.String("output", cfg.Output.Path),
	)

	docs, err := discovery.New(cfg.Discovery.SkipNames...).Walk(cfg.Discovery.InputDir)
	if err != nil {
		return fmt.Errorf("discover documents: %w", err)
	}
	log.Info("Documents discovered", zap.Int("count", len(docs)))

	writer, err := export.New(cfg.Output.Format, export.Options{
		NameField:  cfg.Output.NameField,
		PagesField: cfg.Output.PagesField,
		Indent:     cfg.Output.Indent,
	})
	if err != nil {
		return err
	}

	ec := extractionConfig(cfg)
	ext, closeExt, err := buildExtractor(ctx, cfg, ec, a.logger)
	if err != nil {
		return err
	}
	defer closeExt()

	extraction, err := buildExtraction(cfg, ec, ext, a.logger)
	if err != nil {
		return err
	}

	var (
		sinks   []batchuc.Sink
		results *resultrepo.Repo
		pinger  healthuc.StorePinger
	)
	if cfg.Store.Enabled {
		store, err := openStore(ctx, cfg.Store, log)
		if err != nil {
			return err
		}
		defer store.Close()
		results = resultrepo.New(store, cfg.Store.KeyPrefix, runID, time.Duration(cfg.Store.TTLHours)*time.Hour)
		sinks = append(sinks, results)
		pinger = store
	}

	if cfg.Ops.Port > 0 {
		health := healthuc.New(ext, pinger)
		ops := chiTransport.NewServer(cfg.Ops.Port, chiTransport.NewRouter(health, a.logger), a.logger)
		if err := ops.Start(); err != nil {
			return err
		}
		defer func() {
			if err := ops.Shutdown(time.Duration(cfg.Ops.ShutdownSec) * time.Second); err != nil {
				log.Error("Error during ops shutdown", zap.Error(err))
			}
		}()
	}

	policy, err := batchuc.ParsePolicy(cfg.Batch.Policy)
	if err != nil {
		return err
	}
	driver := batchuc.New(extraction, sinks...).WithPolicy(policy).WithLogger(a.logger)

	result, runErr := driver.Run(ctx, docs)

	if results != nil {
		// The summary is written even for an aborted run.
		if err := results.SaveSummary(context.WithoutCancel(ctx), result); err != nil {
			log.Error("Failed to save run summary", zap.Error(err))
		}
	}

	if runErr == nil || writePartial {
		if err := export.WriteFile(cfg.Output.Path, writer, result.Documents()); err != nil {
			return errors.Join(runErr, err)
		}
		log.Info("Output written",
			zap.String("path", cfg.Output.Path),
			zap.Int("documents", result.Len()),
			zap.Bool("partial", runErr != nil),
		)
	}

	logSummary(log, result, usage)
	return runErr
}

func logSummary(log *zap.Logger, result *dombatch.Result, usage *domain.InferenceUsage) {
	for _, f := range result.Failures() {
		log.Warn("Document not extracted",
			zap.Int("index", f.Index()),
			zap.String("document", f.Name()),
			zap.String("status", string(f.Status())),
			zap.Error(f.Err()),
		)
	}
	log.Info("Run finished",
		zap.Int("documents", result.Len()),
		zap.Int("pages", result.Pages()),
		zap.Int("failures", len(result.Failures())),
		zap.Int("inference_calls", usage.Calls),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.Int("total_tokens", usage.TotalTokens()),
	)
}
