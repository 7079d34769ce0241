package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tejashwikalptaru/tunelib/internal/app"
)

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	fs afero.Fs

	configPath string
	dataDir    string
	logLevel   string

	app *app.Application
}

// execute runs one command line against fs, writing command output to out.
func execute(ctx context.Context, fs afero.Fs, args []string, out io.Writer) error {
	c := &cli{fs: fs}
	defer func() { _ = c.close() }()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	if err := root.ExecuteContext(ctx); err != nil {
		return err
	}
	return c.close()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tunelib",
		Short:         "tunelib manages a local music library and podcast subscriptions.",
		Version:       app.GetVersionInfo().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $HOME/.config/tunelib/tunelib.toml)")
	flags.StringVar(&c.dataDir, "data-dir", "", "directory holding the library, podcasts and cover caches")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		c.tracksCmd(),
		c.metadataCmd(),
		c.coverCmd(),
		c.playlistsCmd(),
		c.podcastsCmd(),
		c.watchCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	if cmd.Annotations["standalone"] == "true" {
		return nil
	}

	config, err := app.LoadConfig(c.fs, c.configPath)
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		config.DataDir = c.dataDir
	}
	if c.logLevel != "" {
		config.Log.Level = c.logLevel
	}

	application, err := app.NewApplication(config, app.WithFs(c.fs))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	c.app = application
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Shutdown()
	c.app = nil
	return err
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints r and turns a failed result into a command error.
func printResult(cmd *cobra.Command, r app.Result) error {
	if err := printJSON(cmd.OutOrStdout(), r); err != nil {
		return err
	}
	if !r.OK {
		return fmt.Errorf("%s failed", cmd.CommandPath())
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"standalone": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), app.GetVersionInfo())
		},
	}
}
