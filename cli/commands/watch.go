package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/satishbabariya/r2dbc-go/cli/internal/ui"
	"github.com/satishbabariya/r2dbc-go/cli/internal/watch"
	"github.com/satishbabariya/r2dbc-go/runtime/client"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var (
		stmt   statementFlags
		output outputFormat
	)

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-run a SQL file every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				run := func(path string) error {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					ui.PrintInfo("Running %s", path)
					return runQuery(ctx, c, cmd.OutOrStdout(), &stmt, &output, strings.TrimSpace(string(data)), false)
				}

				if err := run(file); err != nil {
					ui.PrintError("%v", err)
				}

				w, err := watch.NewWatcher(run, file)
				if err != nil {
					return err
				}
				w.OnError(func(err error) { ui.PrintError("%v", err) })

				ui.PrintInfo("Watching %s, press Ctrl+C to stop", file)
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					return err
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&stmt.params, "param", "p", nil, "Named parameter as name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&stmt.args, "arg", "a", nil, "Positional parameter value (repeatable, in order)")
	output.register(cmd)

	return cmd
}
