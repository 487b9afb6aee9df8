package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/bcforge/internal/cli"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/ui"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		styled := ui.DetectFormat(os.Stderr) == ui.FormatTerminal
		fmt.Fprintln(os.Stderr, ui.FormatError(err, styled))
		os.Exit(errors.ExitCode(err))
	}
}
