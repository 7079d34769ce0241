package main

import "github.com/spf13/cobra"

func (c *cli) playlistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "Manage playlists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Bridge().Playlists())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.Bridge().CreatePlaylist(cmd.Context(), args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.Bridge().DeletePlaylist(cmd.Context(), args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <playlist-id> <track-id>",
		Short: "Append a library track to a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.Bridge().AddToPlaylist(cmd.Context(), args[0], args[1]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <playlist-id> <track-id>",
		Short: "Remove a track from a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.Bridge().RemoveFromPlaylist(cmd.Context(), args[0], args[1]))
		},
	})

	return cmd
}
