package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/satishbabariya/r2dbc-go/cli/internal/ui"
	"github.com/satishbabariya/r2dbc-go/cli/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().FullString())
			if !check {
				return nil
			}
			return checkForUpdates(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check whether a newer release is available")

	return cmd
}

func checkForUpdates(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	spinner, _ := ui.PrintSpinner("Checking for updates")
	latest, err := version.Latest(ctx, version.ReleasesURL)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return err
	}

	newer, err := version.Newer(version.Version, latest)
	if err != nil {
		return err
	}
	if !newer {
		ui.PrintSuccess("You are on the latest version")
		return nil
	}
	ui.PrintWarning("A new version is available: %s (current %s)", latest, version.Version)
	ui.PrintInfo("Download: %s", version.DownloadURL(latest))
	return nil
}
