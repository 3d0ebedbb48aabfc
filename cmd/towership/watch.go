package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bft-labs/towership/internal/app"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newWatchCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Upload CSV batches dropped into the spool directory",
		Long: `Upload CSV batches dropped into the spool directory.

Files are uploaded in name order. Accepted files move to sent/, files the
service rejects move to rejected/, and files that hit a transient failure
stay in place and are retried with backoff. Write batches under a name
starting with "." and rename them into place when complete.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			uploader, err := c.uploader(ctx)
			if err != nil {
				return err
			}

			spooler := app.NewSpooler(app.SpoolerConfig{
				Dir:          c.cfg.SpoolDir,
				PollInterval: c.cfg.PollInterval,
				Once:         c.cfg.Once,
			}, uploader, c.stateRepo(), c.logger())

			err = spooler.Run(ctx)
			if errors.Is(err, context.Canceled) {
				c.log.Info().Msg("received signal, stopped")
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&c.cfg.PollInterval, "poll", c.cfg.PollInterval, "spool rescan interval")
	cmd.Flags().StringVar(&c.cfg.MetricsAddr, "metrics-addr", c.cfg.MetricsAddr, "serve Prometheus metrics on this address (empty disables)")
	cmd.Flags().BoolVar(&c.cfg.Once, "once", c.cfg.Once, "upload files present now and exit")
	return cmd
}
