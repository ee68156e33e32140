package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/satishbabariya/r2dbc-go/query/mapper"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	InfoColor      = lipgloss.Color("#00D9FF")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// NullText is how NULL is displayed.
const NullText = "NULL"

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	fmt.Println(SuccessStyle.Render("✓ " + message))
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+message))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	fmt.Println(WarningStyle.Render("⚠ " + message))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	fmt.Println(InfoStyle.Render("ℹ " + message))
}

// PrintSQL prints a statement in a styled block
func PrintSQL(sql string) {
	codeStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SecondaryColor).
		Padding(0, 1)

	fmt.Println(SecondaryStyle.Render(" sql "))
	fmt.Println(codeStyle.Render(sql))
}

// FormatValue renders a column value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return NullText
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Columns returns the keys of the first row.
func Columns(rows []mapper.ColumnMap) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Keys()
}

// TableData converts rows to display strings, header first.
func TableData(rows []mapper.ColumnMap) [][]string {
	columns := Columns(rows)
	data := [][]string{columns}
	for _, row := range rows {
		line := make([]string, 0, len(columns))
		for _, v := range row.All() {
			line = append(line, FormatValue(v))
		}
		data = append(data, line)
	}
	return data
}

// PrintRows prints rows as a table using pterm
func PrintRows(w io.Writer, rows []mapper.ColumnMap) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, SecondaryStyle.Render("(no rows)"))
		return err
	}
	return pterm.DefaultTable.
		WithHasHeader().
		WithWriter(w).
		WithData(pterm.TableData(TableData(rows))).
		Render()
}

// MarkdownTable renders rows as a markdown table.
func MarkdownTable(rows []mapper.ColumnMap) string {
	data := TableData(rows)
	if len(data[0]) == 0 {
		return "_no rows_\n"
	}

	escape := strings.NewReplacer("|", `\|`, "\n", " ")
	var b strings.Builder
	for i, line := range data {
		b.WriteString("|")
		for _, cell := range line {
			b.WriteString(" " + escape.Replace(cell) + " |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|" + strings.Repeat(" --- |", len(line)) + "\n")
		}
	}
	return b.String()
}

// PrintMarkdown renders markdown content
func PrintMarkdown(w io.Writer, content string) error {
	// Use glamour for markdown rendering
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, out)
	return err
}

// PrintCount prints the number of affected rows.
func PrintCount(w io.Writer, n int64) {
	c := color.New(color.FgGreen, color.Bold)
	if n == 0 {
		c = color.New(color.FgYellow)
	}
	noun := "rows"
	if n == 1 {
		noun = "row"
	}
	c.Fprintf(w, "%d %s affected\n", n, noun)
}

// PrintSpinner creates a spinner and returns it
func PrintSpinner(message string) (*pterm.SpinnerPrinter, error) {
	return pterm.DefaultSpinner.WithRemoveWhenDone().Start(message)
}
