// Package commands implements CLI commands.
package commands

import (
	"github.com/satishbabariya/r2dbc-go/cli/internal/version"
	"github.com/satishbabariya/r2dbc-go/internal/debug"
	"github.com/spf13/cobra"
)

// globals holds the persistent flags.
var globals struct {
	configFile string
	provider   string
	url        string
	debug      bool
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "r2dbc",
		Short: "Run SQL with named parameters against any supported database",
		Long: `r2dbc runs SQL statements with :named or positional parameters against
PostgreSQL, MySQL and SQLite, and prints rows as tables, JSON or markdown.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if globals.debug {
				debug.Init(true)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.configFile, "config", "", "Config file (default .r2dbc.yaml in . or $HOME)")
	flags.StringVar(&globals.provider, "provider", "", "Database provider: postgres, pgx, mysql or sqlite")
	flags.StringVar(&globals.url, "url", "", "Database connection URL")
	flags.BoolVar(&globals.debug, "debug", false, "Log statements and execution details")

	rootCmd.AddCommand(NewQueryCommand())
	rootCmd.AddCommand(NewExecCommand())
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute is the main entry point for the CLI
func Execute() error {
	return NewRootCommand().Execute()
}
