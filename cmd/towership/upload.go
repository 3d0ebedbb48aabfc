package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/pkg/upload"
)

func newUploadCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload CSV batch files and print the outcome of each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient(upload.NewFallback())
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			repo := c.stateRepo()
			state, err := repo.Load(ctx)
			if err != nil {
				c.log.Error().Err(err).Msg("failed to load state")
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				outcome, rows, err := uploadFile(ctx, client, path)
				if err != nil {
					fmt.Fprintf(out, "%s\terror: %v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", path, outcome)

				state.Record(outcome.String(), outcome == upload.Success, rows, time.Now())
				if err := repo.Save(context.WithoutCancel(ctx), state); err != nil {
					c.log.Error().Err(err).Msg("failed to save state")
				}

				if outcome.Fatal() {
					return domain.ErrInvalidAPIKey
				}
				if outcome != upload.Success {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads did not succeed", failed, len(args))
			}
			return nil
		},
	}
}

func uploadFile(ctx context.Context, client *upload.Client, path string) (upload.Outcome, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	rows, err := domain.CountRows(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return client.Upload(ctx, string(data)), rows, nil
}
