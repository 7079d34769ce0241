package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Resolve missing track covers in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := c.app.StartBackfill(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return printJSON(cmd.OutOrStdout(), c.app.Bridge().Tracks())
		},
	}
}
