package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	healthuc "github.com/kailas-cloud/pagex/internal/usecase/health"
)

var errDegraded = errors.New("health check degraded")

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the inference provider and result store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ext, closeExt, err := buildExtractor(ctx, a.cfg, extractionConfig(a.cfg), a.logger)
			if err != nil {
				return err
			}
			defer closeExt()

			var pinger healthuc.StorePinger
			if a.cfg.Store.Enabled {
				store, err := newStore(a.cfg.Store)
				if err != nil {
					return err
				}
				defer store.Close()
				pinger = store
			}

			report := healthuc.New(ext, pinger).Check(ctx)
			printReport(cmd, report)
			if report.Status != healthuc.Healthy {
				return errDegraded
			}
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, r healthuc.Report) {
	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "status: %s\n", r.Status)
	for _, name := range names {
		if msg, failed := r.Errors[name]; failed {
			_, _ = fmt.Fprintf(out, "  %-10s %s (%s)\n", name, r.Checks[name], msg)
			continue
		}
		_, _ = fmt.Fprintf(out, "  %-10s %s\n", name, r.Checks[name])
	}
}
