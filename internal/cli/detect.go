package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/python"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

func (c *CLI) detectCommand() *cobra.Command {
	var (
		remote  remoteFlags
		dir     string
		fromDir string
	)

	cmd := &cobra.Command{
		Use:   "detect [owner/repo[@ref]]",
		Short: "Check whether a directory holds a Python project",
		Long: `Check a single directory listing for a requirements file, Pipfile,
pyproject.toml, setup.py or setup.cfg, without fetching any file.

Exits with status 2 when no Python manifest is present.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if fromDir != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateDirectory(dir); err != nil {
				return err
			}
			tree, label, closeFn, err := c.openSource(ctx, args, fromDir, remote)
			if err != nil {
				return err
			}
			defer closeFn()

			ok, err := python.Detect(ctx, tree, dir)
			if err != nil {
				return err
			}
			where := fmt.Sprintf("%s:/%s", label, repo.Clean(dir))
			if !ok {
				printWarning("No Python project in %s", where)
				printDetail(python.RequiredFilesMessage)
				return errors.NewManifestNotFound(repo.Join(dir, python.RequirementsTxt))
			}
			printSuccess("Python project found in %s", where)
			printNextStep("Collect its manifests", fmt.Sprintf("pyfetch discover %s --dir %q", label, repo.Clean(dir)))
			return nil
		},
	}

	remote.register(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory within the repository (default: root)")
	cmd.Flags().StringVar(&fromDir, "from-dir", "", "read a local directory instead of GitHub")
	return cmd
}
