package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/satishbabariya/r2dbc-go/cli/internal/config"
	"github.com/satishbabariya/r2dbc-go/cli/internal/ui"
	"github.com/satishbabariya/r2dbc-go/internal/debug"
	"github.com/satishbabariya/r2dbc-go/query/executor"
	"github.com/satishbabariya/r2dbc-go/runtime/client"
	"github.com/spf13/cobra"
)

// statementFlags are shared by the commands that run a statement.
type statementFlags struct {
	file   string
	params []string
	args   []string
}

func (f *statementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read the statement from a file (- for stdin)")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "Named parameter as name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.args, "arg", "a", nil, "Positional parameter value (repeatable, in order)")
}

// statement reads the SQL text from the first argument, --file or stdin.
func (f *statementFlags) statement(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case f.file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return strings.TrimSpace(string(data)), err
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return "", fmt.Errorf("read statement: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("no statement given, pass SQL as an argument or use --file")
	}
}

// spec creates a client statement with every parameter bound.
func (f *statementFlags) spec(c *client.Client, sql string) (*client.Spec, error) {
	s := c.SQL(sql)
	named, err := parseParams(f.params)
	if err != nil {
		return nil, err
	}
	for name, v := range named {
		s.Bind(name, v)
	}
	for i, raw := range f.args {
		s.BindIndex(i, parseValue(raw))
	}
	return s, nil
}

// parseParams parses name=value pairs.
func parseParams(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		out[name] = parseValue(raw)
	}
	return out, nil
}

// parseValue converts command line text to a parameter value: null, integers,
// floats, booleans, [a,b,...] lists and 'quoted' strings are recognized.
func parseValue(raw string) any {
	s := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(s, "null"):
		return nil
	case len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1]
	case len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']':
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return []any{}
		}
		parts := strings.Split(inner, ",")
		list := make([]any, len(parts))
		for i, p := range parts {
			list[i] = parseValue(p)
		}
		return list
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return raw
}

// loadConfig loads configuration, applies the global flags and prompts for
// a connection when none is configured and stdin is a terminal.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader(config.AppFs)
	loader.SetConfigFile(globals.configFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if globals.provider != "" {
		cfg.Provider = globals.provider
	}
	if globals.url != "" {
		cfg.DatabaseURL = globals.url
		if globals.provider == "" {
			cfg.Provider = config.DetectProvider(cfg.DatabaseURL)
		}
	}

	if cfg.DatabaseURL == "" && isTerminal(cmd.InOrStdin()) {
		if err := promptConnection(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func promptConnection(cfg *config.Config) error {
	provider := cfg.Provider
	if provider == "" {
		provider = "postgres"
	}
	questions := []*survey.Question{
		{
			Name: "provider",
			Prompt: &survey.Select{
				Message: "Database provider:",
				Options: []string{"postgres", "pgx", "mysql", "sqlite"},
				Default: provider,
			},
		},
		{
			Name:     "url",
			Prompt:   &survey.Input{Message: "Connection URL:"},
			Validate: survey.Required,
		},
	}
	answers := struct {
		Provider string `survey:"provider"`
		URL      string `survey:"url"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}
	cfg.Provider = answers.Provider
	cfg.DatabaseURL = answers.URL

	save := false
	if err := survey.AskOne(&survey.Confirm{Message: "Save to your config file?"}, &save); err != nil {
		return err
	}
	if save {
		path, err := config.SaveConfig(config.AppFs, cfg)
		if err != nil {
			return err
		}
		ui.PrintSuccess("Saved %s", path)
	}
	return nil
}

// openClient connects using cfg.
func openClient(ctx context.Context, cfg *config.Config) (*client.Client, error) {
	opts := cfg.ClientOptions()
	if debug.Enabled() {
		opts = append(opts, client.WithMiddleware(executor.LoggingMiddleware(debug.Logger())))
	}
	return client.Open(ctx, cfg.DatabaseConfig(), opts...)
}

// withClient loads configuration, connects and runs fn.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Debug && !debug.Enabled() {
		debug.Init(true)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := openClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close(ctx)
	return fn(ctx, c)
}
