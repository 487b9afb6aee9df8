package cli

import (
	"fmt"
	"os"

	"github.com/arthur-debert/bcforge/pkg/artifact"
	"github.com/arthur-debert/bcforge/pkg/checkpoint"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/ui"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ui.ParseFormat(output)
			if err != nil {
				return err
			}

			e, err := opts.load()
			if err != nil {
				return err
			}
			progress, err := checkpoint.Read(e.fs, e.paths.ProgressPath())
			if err != nil {
				return err
			}
			return ui.RenderStatus(cmd.OutOrStdout(), progress, ui.Resolve(format, os.Stdout))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "auto", "Output format: auto, text, json or yaml")
	return cmd
}

func newResetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   MsgResetShort,
		GroupID: "pipeline",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			if err := checkpoint.Reset(e.fs, e.paths.ProgressPath(), e.paths.BuildDir()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgResetDone, e.paths.ProgressPath(), e.paths.BuildDir())
			return nil
		},
	}
}

func newEncodeCmd(opts *globalOptions) *cobra.Command {
	var (
		kind    string
		keyOnly bool
	)

	cmd := &cobra.Command{
		Use:     "encode <path>...",
		Short:   MsgEncodeShort,
		Long:    MsgEncodeLong,
		GroupID: "inspect",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyOnly {
				for _, p := range args {
					fmt.Fprintln(cmd.OutOrStdout(), artifact.Encode(p))
				}
				return nil
			}

			k, err := parseKind(kind)
			if err != nil {
				return err
			}

			e, err := opts.load()
			if err != nil {
				return err
			}
			store := e.store()
			for _, p := range args {
				fmt.Fprintln(cmd.OutOrStdout(), store.Path(k, p))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "object", "Artifact kind: object or linked")
	cmd.Flags().BoolVar(&keyOnly, "key", false, "Print only the key, without the store directory")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "decode <key>...",
		Short:   MsgDecodeShort,
		GroupID: "inspect",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range args {
				p, err := artifact.Decode(key)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newArtifactsCmd(opts *globalOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "artifacts",
		Short:   MsgArtifactsShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			e, err := opts.load()
			if err != nil {
				return err
			}
			stored, err := e.store().List(k)
			if err != nil {
				return err
			}
			for _, p := range stored {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "object", "Artifact kind: object or linked")
	return cmd
}

func parseKind(kind string) (artifact.Kind, error) {
	switch kind {
	case "object":
		return artifact.Object, nil
	case "linked":
		return artifact.Linked, nil
	}
	return artifact.Object, errors.Newf(errors.ErrInvalidInput, "unknown kind %q, expected object or linked", kind)
}
