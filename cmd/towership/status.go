package main

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print shipping statistics and the number of buffered measurements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := c.stateRepo().Load(ctx)
			if err != nil {
				return err
			}
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			pending, err := store.PendingCount(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "endpoint\t%s\n", c.cfg.Endpoint())
			fmt.Fprintf(w, "uploads\t%d\n", state.Uploads)
			fmt.Fprintf(w, "rows shipped\t%d\n", state.Rows)
			fmt.Fprintf(w, "last upload\t%s\n", formatTime(state.LastUploadAt))
			fmt.Fprintf(w, "last outcome\t%s\n", orNone(state.LastOutcome))
			fmt.Fprintf(w, "last success\t%s\n", formatTime(state.LastSuccessAt))
			fmt.Fprintf(w, "buffered\t%d\n", pending)

			names := make([]string, 0, len(state.Outcomes))
			for name := range state.Outcomes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "  %s\t%d\n", name, state.Outcomes[name])
			}
			return w.Flush()
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
