package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/integrations/github"
	"github.com/matzehuels/pyfetch/pkg/python"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

func newTestServer(t *testing.T, files map[string]string) (*httptest.Server, *github.RepoRef) {
	t.Helper()
	var seen github.RepoRef
	trees := func(ctx context.Context, ref github.RepoRef) (repo.Tree, error) {
		seen = ref
		return repo.NewMemory(files), nil
	}
	srv := httptest.NewServer(New(trees, Options{Logger: log.New(io.Discard)}).Handler())
	t.Cleanup(srv.Close)
	return srv, &seen
}

func get(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := get(t, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestManifests(t *testing.T) {
	srv, seen := newTestServer(t, map[string]string{
		"app/requirements.txt": "-e ../lib\nflask\n",
		"lib/setup.py":         "setup()",
	})

	var rep python.Report
	resp := get(t, srv.URL+"/v1/repos/psf/requests/manifests?ref=main&dir=app&content=true", &rep)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, github.RepoRef{Owner: "psf", Repo: "requests", Ref: "main"}, *seen)

	assert.Equal(t, "app", rep.Directory)
	assert.NotEmpty(t, rep.RunID)
	require.Len(t, rep.Files, 2)
	assert.Equal(t, "app/requirements.txt", rep.Files[0].Path)
	assert.Equal(t, "requirements.txt", rep.Files[0].Name)
	assert.Equal(t, "-e ../lib\nflask\n", rep.Files[0].Content)
	assert.Equal(t, "lib/setup.py", rep.Files[1].Path)
	assert.True(t, rep.Files[1].SupportFile)
}

func TestManifestsWithoutContent(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"requirements.txt": "flask\n"})

	var rep python.Report
	get(t, srv.URL+"/v1/repos/o/r/manifests", &rep)
	require.Len(t, rep.Files, 1)
	assert.Empty(t, rep.Files[0].Content)
	assert.Equal(t, 6, rep.Files[0].Size)
	assert.Equal(t, "/", rep.Directory)
}

func TestManifestsErrors(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		path   string
		status int
		code   errors.Code
		paths  []string
	}{
		{
			name:   "no manifest",
			files:  map[string]string{"README.md": "hi"},
			path:   "/v1/repos/o/r/manifests",
			status: http.StatusNotFound,
			code:   errors.ErrCodeManifestNotFound,
		},
		{
			name:   "malformed pipfile",
			files:  map[string]string{"Pipfile": "[packages\n"},
			path:   "/v1/repos/o/r/manifests",
			status: http.StatusUnprocessableEntity,
			code:   errors.ErrCodeManifestNotParseable,
		},
		{
			name:   "unreachable path dependency",
			files:  map[string]string{"requirements.txt": "-e ./gone\n"},
			path:   "/v1/repos/o/r/manifests",
			status: http.StatusUnprocessableEntity,
			code:   errors.ErrCodePathDependenciesUnreachable,
			paths:  []string{"gone/setup.py"},
		},
		{
			name:   "invalid owner",
			path:   "/v1/repos/-bad/r/manifests",
			status: http.StatusBadRequest,
			code:   errors.ErrCodeInvalidRepo,
		},
		{
			name:   "directory escapes root",
			files:  map[string]string{"requirements.txt": "flask\n"},
			path:   "/v1/repos/o/r/manifests?dir=../x",
			status: http.StatusBadRequest,
			code:   errors.ErrCodeInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.files)

			var body errorResponse
			resp := get(t, srv.URL+tt.path, &body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, tt.paths, body.Paths)
		})
	}
}

func TestTreeFactoryError(t *testing.T) {
	trees := func(context.Context, github.RepoRef) (repo.Tree, error) {
		return nil, &errors.RateLimitedError{RetryAfter: 30}
	}
	srv := httptest.NewServer(New(trees, Options{Logger: log.New(io.Discard)}).Handler())
	defer srv.Close()

	var body errorResponse
	resp := get(t, srv.URL+"/v1/repos/o/r/manifests", &body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "30", resp.Header.Get("Retry-After"))
	assert.Equal(t, errors.ErrCodeRateLimited, body.Code)
}

func TestDetect(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"svc/pyproject.toml": "[project]\nname = \"svc\"\n",
		"docs/index.md":      "# docs",
	})

	var got detectResponse
	get(t, srv.URL+"/v1/repos/o/r/detect?dir=svc", &got)
	assert.Equal(t, detectResponse{Directory: "svc", Detected: true}, got)

	got = detectResponse{}
	get(t, srv.URL+"/v1/repos/o/r/detect?dir=docs", &got)
	assert.False(t, got.Detected)
	assert.Equal(t, python.RequiredFilesMessage, got.Message)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.NewManifestNotFound("requirements.txt"), http.StatusNotFound},
		{errors.New(errors.ErrCodeUnauthorized, "bad token"), http.StatusBadGateway},
		{errors.New(errors.ErrCodeNetwork, "boom"), http.StatusBadGateway},
		{errors.Wrap(errors.ErrCodeFileNotFound, repo.NotFound("a.txt"), "a.txt"), http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
