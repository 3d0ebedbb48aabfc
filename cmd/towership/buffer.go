package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/towership/internal/app"
	"github.com/bft-labs/towership/internal/domain"
)

func newImportCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Parse CSV files into the local measurement buffer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			for _, path := range args {
				ms, err := readMeasurements(path)
				if err != nil {
					return err
				}
				if err := store.Store(ctx, ms); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d measurements\n", path, len(ms))
			}
			return nil
		},
	}
}

func readMeasurements(path string) ([]domain.Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ms, err := domain.DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ms, nil
}

func newFlushCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Upload buffered measurements in batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			uploader, err := c.uploader(ctx)
			if err != nil {
				return err
			}
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			flusher := app.NewFlusher(app.FlusherConfig{
				BatchSize: c.cfg.BatchSize,
				Retention: c.cfg.Retention,
			}, store, uploader, c.stateRepo(), c.logger())

			res, err := flusher.Flush(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d measurements in %d batches, rejected %d, purged %d\n",
				res.Rows, res.Batches, res.Rejected, res.Purged)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVar(&c.cfg.BatchSize, "batch-size", c.cfg.BatchSize, "measurements per upload")
	cmd.Flags().StringVar(&c.cfg.MetricsAddr, "metrics-addr", c.cfg.MetricsAddr, "serve Prometheus metrics on this address (empty disables)")
	cmd.Flags().DurationVar(&c.cfg.Retention, "retention", c.cfg.Retention, "how long uploaded measurements stay buffered (0 keeps them)")
	return cmd
}
