package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/satishbabariya/r2dbc-go/cli/internal/ui"
	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/query/mapper"
	"github.com/satishbabariya/r2dbc-go/query/named"
	"github.com/spf13/cobra"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		stmt     statementFlags
		dialect  string
		markdown bool
	)

	cmd := &cobra.Command{
		Use:   "render [SQL]",
		Short: "Show the SQL and bindings a statement expands to, without connecting",
		Example: `  r2dbc render "SELECT * FROM legoset WHERE id IN (:ids)" -p ids=[1,2] --dialect mysql
  r2dbc render -f report.sql --markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := stmt.statement(cmd, args)
			if err != nil {
				return err
			}
			d, err := parseDialect(dialect)
			if err != nil {
				return err
			}
			op, err := renderStatement(&stmt, d, sql)
			if err != nil {
				return err
			}
			if markdown {
				return ui.PrintMarkdown(cmd.OutOrStdout(), renderMarkdown(op))
			}
			return printRendered(cmd.OutOrStdout(), op)
		},
	}

	stmt.register(cmd)
	cmd.Flags().StringVar(&dialect, "dialect", "postgres", "SQL dialect: postgres, mysql, sqlite or sqlserver")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the result as markdown")

	return cmd
}

func parseDialect(name string) (domain.SQLDialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return domain.PostgreSQL, nil
	case "mysql":
		return domain.MySQL, nil
	case "sqlite", "sqlite3":
		return domain.SQLite, nil
	case "sqlserver", "mssql":
		return domain.SQLServer, nil
	default:
		return "", fmt.Errorf("unknown dialect %q", name)
	}
}

func renderStatement(stmt *statementFlags, d domain.SQLDialect, sql string) (*binding.Prepared[string], error) {
	params := named.Params{}
	values, err := parseParams(stmt.params)
	if err != nil {
		return nil, err
	}
	params.Named = values
	if len(stmt.args) > 0 {
		params.Indexed = make(map[int]any, len(stmt.args))
		for i, raw := range stmt.args {
			params.Indexed[i] = parseValue(raw)
		}
	}
	return named.NewExpander(named.DefaultCacheSize).Expand(sql, binding.ForDialect(d), params)
}

// bindingRows describes each binding as a row of marker, value and kind.
func bindingRows(op *binding.Prepared[string]) []mapper.ColumnMap {
	var rows []mapper.ColumnMap
	for _, b := range op.Bindings() {
		row := mapper.NewColumnMap(3)
		row.Put("marker", b.Marker.Placeholder())
		if b.Null {
			row.Put("value", nil)
		} else {
			row.Put("value", b.Value)
		}
		row.Put("kind", b.Kind.String())
		rows = append(rows, row)
	}
	return rows
}

func printRendered(w io.Writer, op *binding.Prepared[string]) error {
	if _, err := fmt.Fprintln(w, op.SQL()); err != nil {
		return err
	}
	rows := bindingRows(op)
	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return ui.PrintRows(w, rows)
}

func renderMarkdown(op *binding.Prepared[string]) string {
	var b strings.Builder
	b.WriteString("## Statement\n\n```sql\n")
	b.WriteString(op.SQL())
	b.WriteString("\n```\n")
	if rows := bindingRows(op); len(rows) > 0 {
		b.WriteString("\n## Bindings\n\n")
		b.WriteString(ui.MarkdownTable(rows))
	}
	return b.String()
}
