package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/matzehuels/pyfetch/internal/config"
	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/python"
	"github.com/matzehuels/pyfetch/pkg/session"
)

// runCLI executes the root command with args, capturing command output and
// the print helpers.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })

	c := New(&bytes.Buffer{}, LogInfo)
	c.sessionDir = t.TempDir()
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func TestDiscoverJSON(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"requirements.txt":      "-r requirements/dev.txt\n-e ./libs/core\n",
		"requirements/dev.txt":  "pytest\n",
		"libs/core/setup.py":    "setup()",
		"libs/core/setup.cfg":   "[metadata]",
		"docs/requirements.rst": "not a manifest",
	})

	out, err := runCLI(t, "discover", "--from-dir", dir, "--json", "--content")
	require.NoError(t, err)

	var rep python.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	var paths []string
	for _, f := range rep.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"requirements.txt",
		"requirements/dev.txt",
		"libs/core/setup.py",
		"libs/core/setup.cfg",
	}, paths)
	assert.Equal(t, "pytest\n", rep.Files[1].Content)
	assert.True(t, rep.Files[2].SupportFile)
}

func TestDiscoverHumanOutput(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"app/Pipfile":         "[packages]\nflask = \"*\"\n",
		"app/.python-version": "3.12\n",
	})

	out, err := runCLI(t, "discover", "--from-dir", dir, "--dir", "app")
	require.NoError(t, err)
	assert.Contains(t, out, "app/Pipfile")
	assert.Contains(t, out, "app/.python-version")
	assert.Contains(t, out, "1 primary")
	assert.Contains(t, out, "1 support")
}

func TestDiscoverErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  int
		hint  string
	}{
		{
			name:  "no manifest",
			files: map[string]string{"README.md": "# hi"},
			want:  ExitNoManifest,
			hint:  "Repo must contain",
		},
		{
			name:  "malformed pyproject",
			files: map[string]string{"pyproject.toml": "[tool.poetry\n"},
			want:  ExitUnparseable,
		},
		{
			name:  "unreachable path dependency",
			files: map[string]string{"requirements.txt": "./missing\n"},
			want:  ExitUnreachable,
			hint:  "unreachable: missing/setup.py",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "discover", "--from-dir", writeProject(t, tt.files))
			require.Error(t, err)
			assert.Equal(t, tt.want, ExitCode(err))
			if tt.hint != "" {
				assert.Contains(t, out, tt.hint)
			}
		})
	}
}

func TestDiscoverArgs(t *testing.T) {
	_, err := runCLI(t, "discover")
	assert.Error(t, err, "a repository is required without --from-dir")

	_, err = runCLI(t, "discover", "psf/requests", "--from-dir", t.TempDir())
	assert.Error(t, err, "a repository and --from-dir are exclusive")

	_, err = runCLI(t, "discover", "not a repo", "--no-cache")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRepo), "err = %v", err)
}

func TestDetect(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"svc/setup.cfg": "[metadata]",
		"web/index.js":  "",
	})

	out, err := runCLI(t, "detect", "--from-dir", dir, "--dir", "svc")
	require.NoError(t, err)
	assert.Contains(t, out, "Python project found")

	_, err = runCLI(t, "detect", "--from-dir", dir, "--dir", "web")
	assert.Equal(t, ExitNoManifest, ExitCode(err))

	_, err = runCLI(t, "detect", "--from-dir", dir, "--dir", "../etc")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{context.Canceled, ExitInterrupted},
		{errors.NewManifestNotFound("requirements.txt"), ExitNoManifest},
		{errors.NewManifestNotParseable("Pipfile", nil), ExitUnparseable},
		{errors.NewPathDependenciesUnreachable([]string{"/a/setup.py"}), ExitUnreachable},
		{errors.New(errors.ErrCodeNetwork, "boom"), ExitError},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestResolveToken(t *testing.T) {
	ctx := context.Background()
	c := New(&bytes.Buffer{}, LogInfo)
	c.sessionDir = t.TempDir()
	c.Config = &config.Config{}

	assert.Equal(t, "", c.resolveToken(ctx, ""))

	store, err := session.NewCLIStore(c.sessionDir)
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, session.New(&oauth2.Token{AccessToken: "stored"}, "octocat")))
	assert.Equal(t, "stored", c.resolveToken(ctx, ""))

	c.Config.GitHubToken = "env"
	assert.Equal(t, "env", c.resolveToken(ctx, ""))
	assert.Equal(t, "flag", c.resolveToken(ctx, "flag"))
}

func TestAuthStatusAndLogout(t *testing.T) {
	out, err := runCLI(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	out, err = runCLI(t, "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
}

func TestAuthLoginRequiresClientID(t *testing.T) {
	t.Setenv("GITHUB_CLIENT_ID", "")
	_, err := runCLI(t, "auth", "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_CLIENT_ID")
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", appName), dir)

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = cacheDir()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestClearDir(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"ab/entry1.json": "{}",
		"ab/entry2.json": "{}",
		"entry3.json":    "{}",
	})

	n, err := clearDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	n, err = clearDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCachePath(t *testing.T) {
	out, err := runCLI(t, "cache", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), appName), "out = %q", out)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{12, "12 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
