package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/bcforge/pkg/pipeline"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		GroupID: "pipeline",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), opts, (*pipeline.Controller).Run)
		},
	}
}

func newCompileCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "compile",
		Short:   MsgCompileShort,
		Long:    MsgCompileLong,
		GroupID: "pipeline",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), opts, (*pipeline.Controller).Compile)
		},
	}
}

func newLinkCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "link",
		Short:   MsgLinkShort,
		Long:    MsgLinkLong,
		GroupID: "pipeline",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), opts, (*pipeline.Controller).Link)
		},
	}
}

// withController runs fn and always persists the checkpoint afterwards,
// including when fn fails, panics or the process is interrupted.
func withController(ctx context.Context, opts *globalOptions, fn func(*pipeline.Controller, context.Context) error) (err error) {
	e, err := opts.load()
	if err != nil {
		return err
	}

	ctrl, err := e.controller()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ctrl.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctrl, ctx)
}
