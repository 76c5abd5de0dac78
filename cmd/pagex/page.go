package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/discovery"
	"github.com/kailas-cloud/pagex/internal/domain/document"
	"github.com/kailas-cloud/pagex/internal/domain/extraction"
	logpkg "github.com/kailas-cloud/pagex/internal/logger"
)

func newPageCmd(a *app) *cobra.Command {
	var titleKey string
	cmd := &cobra.Command{
		Use:   "page <file.pdf>",
		Short: "Extract a single PDF and print its page map as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if titleKey != "" {
				a.cfg.Extraction.TitleKey = titleKey
			}
			return a.page(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&titleKey, "title-key", "", "response field used in page keys")
	return cmd
}

func (a *app) page(cmd *cobra.Command, path string) error {
	ctx, _ := logpkg.WithRun(cmd.Context(), a.logger)

	doc, err := document.New(discovery.DocumentName(filepath.Base(path)), path)
	if err != nil {
		return err
	}

	ec := extractionConfig(a.cfg)
	ext, closeExt, err := buildExtractor(ctx, a.cfg, ec, a.logger)
	if err != nil {
		return err
	}
	defer closeExt()

	svc, err := buildExtraction(a.cfg, ec, ext, a.logger)
	if err != nil {
		return err
	}

	res, err := svc.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}

	out, err := extraction.MarshalValue(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	w := bufio.NewWriter(os.Stdout)
	_, _ = w.Write(out)
	_ = w.WriteByte('\n')
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}

	a.logger.Debug("Page map printed", zap.String("document", doc.Name()), zap.Int("pages", res.Len()))
	return nil
}
