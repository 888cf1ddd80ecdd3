package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/integrations/github"
	"github.com/matzehuels/pyfetch/pkg/python"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

type discoverOpts struct {
	remote      remoteFlags
	dir         string
	fromDir     string
	jsonOut     bool
	content     bool
	interactive bool
	scanSubdirs bool
	concurrency int
}

func (c *CLI) discoverCommand() *cobra.Command {
	var opts discoverOpts

	cmd := &cobra.Command{
		Use:   "discover [owner/repo[@ref]]",
		Short: "Collect the manifest files of a Python project",
		Long: `Collect every file needed to resolve a Python project's dependencies.

Starting from the given directory, pyfetch reads requirements files and follows
their -r and -c includes, reads Pipfile and pyproject.toml, and fetches the
setup.py, setup.cfg or pyproject.toml of every local path dependency.

Exit codes: 2 no Python manifest, 3 malformed Pipfile or pyproject.toml,
4 unreachable path dependencies.`,
		Example: `  # Discover manifests at the repository root
  pyfetch discover psf/requests

  # A subdirectory at a tag, as JSON with file bodies
  pyfetch discover pallets/flask@3.0.0 --dir examples/tutorial --json --content

  # A local checkout
  pyfetch discover --from-dir ./myproject`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.fromDir != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiscover(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	opts.remote.register(cmd)
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "project directory within the repository (default: root)")
	cmd.Flags().StringVar(&opts.fromDir, "from-dir", "", "read a local directory instead of GitHub")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.content, "content", false, "include file contents in the output")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the discovered files")
	cmd.Flags().BoolVar(&opts.scanSubdirs, "scan-subdirs", false, "look for requirement files in every subdirectory, not only requirements/")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "parallel path dependency fetches (default: $PYFETCH_CONCURRENCY or 4)")
	cmd.MarkFlagsMutuallyExclusive("json", "interactive")

	return cmd
}

func (c *CLI) runDiscover(ctx context.Context, out io.Writer, args []string, opts discoverOpts) error {
	tree, label, closeFn, err := c.openSource(ctx, args, opts.fromDir, opts.remote)
	if err != nil {
		return err
	}
	defer closeFn()

	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = c.config().Concurrency
	}
	rec := repo.NewRecording(tree)
	fetcher := python.NewFetcher(rec, python.Options{
		Logger:             c.Logger,
		Concurrency:        concurrency,
		ScanSubdirectories: opts.scanSubdirs,
	})

	if opts.jsonOut {
		res, err := fetcher.Run(ctx, opts.dir)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report(opts.content))
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Discovering manifests in %s...", label))
	spinner.Start()
	res, err := fetcher.Run(ctx, opts.dir)
	if err != nil {
		spinner.StopWithError("Discovery failed")
		printDiscoveryError(err)
		return err
	}
	spinner.Stop()

	if opts.interactive {
		return browseFiles(res.Files)
	}

	primary, support := python.Primary(res.Files), python.Support(res.Files)
	printSuccess("Found %s files in %s (%s)", StyleNumber.Render(fmt.Sprint(len(res.Files))), label, res.Directory)
	for _, f := range primary {
		printManifest(f)
	}
	for _, f := range support {
		printManifest(f)
	}
	printStats(len(primary), len(support), rec.Requests())

	if opts.content {
		printNewline()
		for _, f := range res.Files {
			printContent(f)
		}
	}
	return nil
}

// openSource returns the tree named by args, or the local directory when
// fromDir is set.
func (c *CLI) openSource(ctx context.Context, args []string, fromDir string, rf remoteFlags) (repo.Tree, string, func() error, error) {
	if fromDir != "" {
		tree, err := repo.LoadDir(fromDir)
		if err != nil {
			return nil, "", nil, fmt.Errorf("load %s: %w", fromDir, err)
		}
		c.Logger.Debug("loaded local directory", "dir", fromDir, "files", tree.Len())
		return tree, fromDir, func() error { return nil }, nil
	}

	ref, err := github.ParseRepoRef(args[0])
	if err != nil {
		return nil, "", nil, err
	}
	b, err := c.newBackend(ctx, rf)
	if err != nil {
		return nil, "", nil, err
	}
	return b.tree(ref), ref.String(), b.Close, nil
}

func printDiscoveryError(err error) {
	switch {
	case errors.Is(err, errors.ErrCodeManifestNotFound):
		printDetail(python.RequiredFilesMessage)
	case errors.Is(err, errors.ErrCodePathDependenciesUnreachable):
		var unreachable *errors.PathDependenciesUnreachableError
		if stderrors.As(err, &unreachable) {
			for _, p := range unreachable.Paths {
				printDetail("unreachable: %s", p)
			}
		}
	case errors.Is(err, errors.ErrCodeRateLimited):
		printNextStep("Authenticate to raise the limit", "pyfetch auth login")
	case errors.Is(err, errors.ErrCodeUnauthorized):
		printNextStep("Refresh your credentials", "pyfetch auth login")
	}
}

// browseFiles runs the interactive file browser.
func browseFiles(files []python.ManifestFile) error {
	final, err := tea.NewProgram(NewFileListModel(files), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	if m, ok := final.(FileListModel); ok && m.Selected != nil {
		printContent(*m.Selected)
	}
	return nil
}
