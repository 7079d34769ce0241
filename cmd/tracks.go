package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func (c *cli) tracksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "List, add and remove library tracks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every track in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Bridge().Tracks())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <path>...",
		Short: "Add audio files to the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added := c.app.Bridge().AddTracks(cmd.Context(), absPaths(args))
			return printJSON(cmd.OutOrStdout(), added)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "scan <folder>",
		Short: "Add every supported audio file below a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Bridge().ScanFolder(cmd.Context(), absPath(args[0])))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a track from the library and from every playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.Bridge().RemoveTrack(cmd.Context(), args[0]))
		},
	})

	return cmd
}

func (c *cli) metadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <path>",
		Short: "Print the title, artist, album, duration and cover of an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Bridge().ExtractMetadata(cmd.Context(), absPath(args[0])))
		},
	}
}

func (c *cli) coverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cover <path>",
		Short: "Cache the cover of an audio file and print its reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Bridge().ResolveCoverPath(cmd.Context(), absPath(args[0])))
		},
	}
}

// absPath makes local paths absolute; references with a scheme pass through.
func absPath(p string) string {
	if p == "" || hasScheme(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func absPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = absPath(p)
	}
	return out
}

func hasScheme(p string) bool {
	for i := 0; i < len(p); i++ {
		switch ch := p[i]; {
		case ch == ':':
			return i > 1
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '+' || ch == '-' || ch == '.'):
		default:
			return false
		}
	}
	return false
}
