package main

import (
	"os"

	"github.com/satishbabariya/r2dbc-go/cli/commands"
	"github.com/satishbabariya/r2dbc-go/cli/internal/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
