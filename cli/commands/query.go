package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/satishbabariya/r2dbc-go/cli/internal/ui"
	"github.com/satishbabariya/r2dbc-go/query/mapper"
	"github.com/satishbabariya/r2dbc-go/runtime/client"
	"github.com/spf13/cobra"
)

type outputFormat struct {
	json     bool
	markdown bool
}

func (o *outputFormat) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Print rows as JSON")
	cmd.Flags().BoolVar(&o.markdown, "markdown", false, "Print rows as a rendered markdown table")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

func (o *outputFormat) print(w io.Writer, rows []mapper.ColumnMap) error {
	switch {
	case o.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []mapper.ColumnMap{}
		}
		return enc.Encode(rows)
	case o.markdown:
		return ui.PrintMarkdown(w, ui.MarkdownTable(rows))
	default:
		return ui.PrintRows(w, rows)
	}
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		stmt   statementFlags
		output outputFormat
		first  bool
	)

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a query and print the rows",
		Example: `  r2dbc query "SELECT * FROM legoset WHERE manual = :manual" -p manual=12
  r2dbc query "SELECT name FROM legoset WHERE id = \$1" -a 42055 --json
  r2dbc query -f report.sql --markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := stmt.statement(cmd, args)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return runQuery(ctx, c, cmd.OutOrStdout(), &stmt, &output, sql, first)
			})
		},
	}

	stmt.register(cmd)
	output.register(cmd)
	cmd.Flags().BoolVar(&first, "first", false, "Print only the first row")

	return cmd
}

func runQuery(ctx context.Context, c *client.Client, w io.Writer, stmt *statementFlags, output *outputFormat, sql string, first bool) error {
	spec, err := stmt.spec(c, sql)
	if err != nil {
		return err
	}

	var rows []mapper.ColumnMap
	if first {
		row, err := client.Fetch(spec).First(ctx)
		switch {
		case err == nil:
			rows = append(rows, row)
		case !errors.Is(err, client.ErrNoRows):
			return err
		}
	} else {
		rows, err = client.Fetch(spec).All(ctx)
		if err != nil {
			return err
		}
	}

	if err := output.print(w, rows); err != nil {
		return fmt.Errorf("print rows: %w", err)
	}
	return nil
}
