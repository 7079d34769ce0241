package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) podcastsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "podcasts",
		Short: "Subscribe to and refresh podcast feeds",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every subscribed podcast with its episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Bridge().ListPodcasts(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <feed-url>",
		Short: "Subscribe to a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.Bridge().AddPodcastByURL(cmd.Context(), args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch every subscribed feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printResult(cmd, c.app.Bridge().RefreshAllPodcasts(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <podcast-id>",
		Short: "Unsubscribe from a podcast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.Bridge().RemovePodcast(cmd.Context(), args[0]))
		},
	})

	var played bool
	progress := &cobra.Command{
		Use:   "progress <podcast-id> <episode-id> <seconds>",
		Short: "Record how far an episode has been played",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid seconds %q: %w", args[2], err)
			}
			return printResult(cmd, c.app.Bridge().UpdateEpisodeProgress(cmd.Context(), args[0], args[1], seconds, played))
		},
	}
	progress.Flags().BoolVar(&played, "played", false, "mark the episode as played")
	cmd.AddCommand(progress)

	cmd.AddCommand(&cobra.Command{
		Use:   "file <podcast-id> <episode-id> [path]",
		Short: "Record the downloaded file of an episode, or clear it when no path is given",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 3 {
				path = absPath(args[2])
			}
			return printResult(cmd, c.app.Bridge().SetEpisodeFile(cmd.Context(), args[0], args[1], path))
		},
	})

	return cmd
}
