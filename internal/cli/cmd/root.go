// Package cmd provides Cobra CLI commands for retain.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/retain/internal/cli"
	"github.com/bnema/retain/internal/cli/styles"
	"github.com/bnema/retain/internal/domain/build"
)

var (
	app       *cli.App
	appOpts   cli.Options
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "retain",
		Short: "Exercise memory-bounded caches and reference maps",
		Long: `Retain - memory-bounded caches and garbage-collector aware maps.

The library provides a fixed-capacity cache with FIFO eviction and
listeners, and reference maps that hold keys and values strongly, weakly
or softly. This CLI drives them as workloads:

  retain bounded   replay puts, gets and removes against a bounded cache
  retain soak      hammer a concurrent reference map while forcing collections
  retain mem       show the memory figures the pressure monitor acts on
  retain config    inspect and initialise the configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "gen-docs", "version":
				return nil
			}

			var err error
			app, err = cli.NewApp(cmd.Context(), appOpts)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildInfo.String())
		fmt.Fprintln(cmd.OutOrStdout(), build.RepoURL())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&appOpts.ConfigDir, "config-dir", "", "directory holding config.toml (default $XDG_CONFIG_HOME/retain)")
	flags.StringVar(&appOpts.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&appOpts.LogFile, "log-file", "", `write logs to this file; "auto" picks one under $XDG_STATE_HOME/retain/logs`)

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.NewTheme().Failure(err))
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
