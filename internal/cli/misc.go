package cli

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/bcforge/internal/version"
	"github.com/arthur-debert/bcforge/pkg/config"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newGenConfigCmd(opts *globalOptions) *cobra.Command {
	var (
		commented bool
		write     bool
	)

	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		GroupID: "config",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}

			content := config.GenerateCommented()
			if !commented {
				if content, err = config.Generate(e.cfg); err != nil {
					return err
				}
			}

			if !write {
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}

			target := filepath.Join(e.paths.Root(), config.DefaultFile)
			if err := e.fs.WriteFile(target, []byte(content), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to write %s", target)
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgConfigSaved, target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&commented, "commented", false, "Print the defaults with every value commented out")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write to bcforge.toml in the work root instead of stdout")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionFormat, version.Version)
			fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			fmt.Fprintf(out, MsgBuiltFormat, version.Date)
		},
	}
}

func newManCmd(root *cobra.Command) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:    "man",
		Short:  MsgManShort,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "BCFORGE",
				Section: "1",
			}
			if err := doc.GenManTree(root, header, dir); err != nil {
				return errors.Wrap(err, errors.ErrFileAccess, "failed to generate man pages")
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten, dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write man pages to")
	return cmd
}
