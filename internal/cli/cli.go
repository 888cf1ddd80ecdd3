// Package cli implements the pyfetch command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v75/github"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pyfetch/internal/config"
	"github.com/matzehuels/pyfetch/pkg/buildinfo"
	"github.com/matzehuels/pyfetch/pkg/cache"
	"github.com/matzehuels/pyfetch/pkg/integrations/github"
	"github.com/matzehuels/pyfetch/pkg/repo"
	"github.com/matzehuels/pyfetch/pkg/session"
)

// appName is the application name used for directories and display.
const appName = "pyfetch"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	// sessionDir overrides the session store location in tests.
	sessionDir string
}

// New creates a CLI writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pyfetch discovers the manifest files of Python projects on GitHub",
		Long: `pyfetch walks a GitHub repository the way pip, pipenv and poetry would and
collects every file needed to resolve a Python project's dependencies:
requirements files and their -r/-c includes, Pipfiles, pyproject.toml,
setup.py/setup.cfg, and the manifests of local path dependencies.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.discoverCommand())
	root.AddCommand(c.detectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Remote access
// =============================================================================

// remoteFlags are shared by every command that reads from GitHub.
type remoteFlags struct {
	token    string
	apiURL   string
	noCache  bool
	redisURL string
	cacheTTL time.Duration
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.token, "token", "", "GitHub token (default: $GITHUB_TOKEN or the stored login)")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "GitHub API URL for GitHub Enterprise (default: $GITHUB_API_URL)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().StringVar(&f.redisURL, "redis", "", "share the response cache through Redis (default: $PYFETCH_REDIS_URL)")
	cmd.Flags().DurationVar(&f.cacheTTL, "cache-ttl", 0, "how long cached responses stay valid (default: $PYFETCH_CACHE_TTL or 24h)")
}

// backend reads repositories through one GitHub client and response cache.
type backend struct {
	gh    *gogithub.Client
	store cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// newBackend builds the GitHub client and cache from flags, falling back to
// the loaded configuration.
func (c *CLI) newBackend(ctx context.Context, f remoteFlags) (*backend, error) {
	cfg := c.config()
	apiURL := firstNonEmpty(f.apiURL, cfg.GitHubAPIURL)
	token := c.resolveToken(ctx, f.token)

	var gh *gogithub.Client
	var err error
	if token == "" && cfg.GitHubApp.Enabled() {
		app := cfg.GitHubApp
		c.Logger.Debug("authenticating as GitHub App", "app", app.AppID, "installation", app.InstallationID)
		gh, err = github.NewAppClient(app.AppID, app.InstallationID, app.PrivateKeyPath, apiURL)
	} else {
		if token == "" {
			c.Logger.Warn("no GitHub token configured, requests are limited to 60/hour")
		}
		gh, err = github.NewClient(token, apiURL)
	}
	if err != nil {
		return nil, err
	}

	ttl := f.cacheTTL
	if ttl <= 0 {
		ttl = cfg.CacheTTL
	}
	store, err := c.newCache(ctx, f.noCache, firstNonEmpty(f.redisURL, cfg.RedisURL), ttl)
	if err != nil {
		return nil, err
	}

	keyer := cache.NewDefaultKeyer()
	if token != "" {
		// Private repository content must not leak across tokens.
		keyer = cache.NewScopedKeyer(keyer, "tok:"+cache.Hash([]byte(token))[:12]+":")
	}
	return &backend{gh: gh, store: store, keyer: keyer, ttl: ttl}, nil
}

// tree returns a cached tree for one repository snapshot.
func (b *backend) tree(ref github.RepoRef) repo.Tree {
	key := cache.RepoKey{Owner: ref.Owner, Repo: ref.Repo, Ref: ref.Ref}
	return repo.NewCached(github.NewTree(b.gh, ref), b.store, b.keyer, key, b.ttl)
}

func (b *backend) Close() error { return b.store.Close() }

// resolveToken picks the flag, then the environment, then the stored login.
func (c *CLI) resolveToken(ctx context.Context, flag string) string {
	if flag != "" {
		return flag
	}
	if tok := c.config().GitHubToken; tok != "" {
		return tok
	}
	store, err := session.NewCLIStore(c.sessionDir)
	if err != nil {
		return ""
	}
	sess, err := store.GetSession(ctx)
	if err != nil || sess == nil {
		return ""
	}
	c.Logger.Debug("using stored GitHub login", "user", sess.Login)
	return sess.AccessToken
}

func (c *CLI) config() *config.Config {
	if c.Config == nil {
		c.Config = &config.Config{CacheTTL: config.DefaultCacheTTL, Addr: config.DefaultAddr}
	}
	return c.Config
}

// newCache layers an in-memory LRU over the file cache, or over Redis when
// a URL is configured. Front entries live no longer than ttl and never
// longer than cache.DefaultFrontTTL, so backend expiry shows through.
func (c *CLI) newCache(ctx context.Context, noCache bool, redisURL string, ttl time.Duration) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	front, err := cache.NewLRUCache(cache.DefaultLRUSize)
	if err != nil {
		return nil, err
	}

	var back cache.Cache
	if redisURL != "" {
		if back, err = cache.OpenRedis(ctx, redisURL, appName+":"); err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
	} else {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Debug("no cache directory, caching in memory only", "err", err)
			return front, nil
		}
		if back, err = cache.NewFileCache(dir); err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
	}
	return cache.NewLayered(front, back, min(ttl, cache.DefaultFrontTTL)), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pyfetch/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
