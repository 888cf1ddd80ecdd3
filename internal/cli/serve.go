package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pyfetch/internal/server"
	"github.com/matzehuels/pyfetch/pkg/integrations/github"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		remote      remoteFlags
		addr        string
		timeout     time.Duration
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve discovery over HTTP",
		Long: `Start an HTTP server exposing discovery as JSON:

  GET /v1/repos/{owner}/{repo}/manifests?ref=&dir=&content=&scan_subdirs=
  GET /v1/repos/{owner}/{repo}/detect?ref=&dir=
  GET /healthz

The server authenticates with --token, $GITHUB_TOKEN or, when
PYFETCH_GITHUB_APP_ID, PYFETCH_GITHUB_INSTALLATION_ID and
PYFETCH_GITHUB_PRIVATE_KEY are set, as a GitHub App installation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()

			b, err := c.newBackend(ctx, remote)
			if err != nil {
				return err
			}
			defer b.Close()

			if concurrency <= 0 {
				concurrency = cfg.Concurrency
			}
			srv := server.New(func(_ context.Context, ref github.RepoRef) (repo.Tree, error) {
				return b.tree(ref), nil
			}, server.Options{
				Logger:      c.Logger,
				Concurrency: concurrency,
				Timeout:     timeout,
			})
			return srv.ListenAndServe(ctx, firstNonEmpty(addr, cfg.Addr))
		},
	}

	remote.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: $PYFETCH_ADDR or :8080)")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultTimeout, "per-request discovery timeout")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "parallel path dependency fetches per request")
	return cmd
}
