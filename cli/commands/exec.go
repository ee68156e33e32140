package commands

import (
	"context"

	"github.com/satishbabariya/r2dbc-go/cli/internal/ui"
	"github.com/satishbabariya/r2dbc-go/runtime/client"
	"github.com/spf13/cobra"
)

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	var stmt statementFlags

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Run a modifying statement and print the affected row count",
		Example: `  r2dbc exec "UPDATE legoset SET manual = :manual" -p manual=42
  r2dbc exec "DELETE FROM legoset WHERE id IN (:ids)" -p ids=[1,2,3]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := stmt.statement(cmd, args)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				spec, err := stmt.spec(c, sql)
				if err != nil {
					return err
				}
				n, err := client.Modifying[int64](ctx, spec)
				if err != nil {
					return err
				}
				ui.PrintCount(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}

	stmt.register(cmd)

	return cmd
}
