package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v75/github"

	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/httputil"
	"github.com/matzehuels/pyfetch/pkg/observability"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

// Default retry policy for transient GitHub failures.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Tree is a repo.Tree backed by the GitHub contents API.
type Tree struct {
	gh       *gogithub.Client
	ref      RepoRef
	attempts int
	delay    time.Duration
}

// NewTree reads the snapshot identified by ref through gh.
func NewTree(gh *gogithub.Client, ref RepoRef) *Tree {
	return &Tree{gh: gh, ref: ref, attempts: DefaultAttempts, delay: DefaultDelay}
}

// WithRetry overrides the retry policy for 5xx and network failures.
func (t *Tree) WithRetry(attempts int, delay time.Duration) *Tree {
	t.attempts, t.delay = attempts, delay
	return t
}

// Ref returns the snapshot the tree reads.
func (t *Tree) Ref() RepoRef { return t.ref }

// FetchFile implements repo.Tree. With opts.FetchSubmodules, a path missing
// from the repository is looked up inside the git submodule that contains it.
func (t *Tree) FetchFile(ctx context.Context, path string, opts repo.FetchOptions) (*repo.File, error) {
	p := repo.Clean(path)
	if outsideRepo(p) {
		return nil, repo.NotFound(p)
	}

	f, err := t.fetchFile(ctx, t.ref, p)
	if repo.IsNotFound(err) && opts.FetchSubmodules {
		return t.fetchFromSubmodule(ctx, p)
	}
	return f, err
}

// ListDirectory implements repo.Tree.
func (t *Tree) ListDirectory(ctx context.Context, path string) ([]repo.Entry, error) {
	p := repo.Clean(path)
	if outsideRepo(p) {
		return nil, repo.NotFound(p)
	}

	fc, dc, err := t.contents(ctx, t.ref, p)
	if err != nil {
		return nil, err
	}
	if fc != nil {
		return nil, repo.NotFound(p)
	}

	entries := make([]repo.Entry, 0, len(dc))
	for _, c := range dc {
		entries = append(entries, repo.Entry{
			Name: c.GetName(),
			Path: repo.Clean(c.GetPath()),
			Type: repo.EntryType(c.GetType()),
			Size: int64(c.GetSize()),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (t *Tree) fetchFile(ctx context.Context, ref RepoRef, p string) (*repo.File, error) {
	fc, _, err := t.contents(ctx, ref, p)
	if err != nil {
		return nil, err
	}
	if fc == nil || fc.GetType() == string(repo.TypeSubmodule) {
		return nil, repo.NotFound(p)
	}

	// Files over 1 MB come back without inline content.
	if fc.GetEncoding() == "none" {
		return t.download(ctx, ref, p)
	}
	content, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return &repo.File{Path: p, Content: content}, nil
}

func (t *Tree) download(ctx context.Context, ref RepoRef, p string) (*repo.File, error) {
	rc, resp, err := t.gh.Repositories.DownloadContents(ctx, ref.Owner, ref.Repo, p,
		&gogithub.RepositoryContentGetOptions{Ref: ref.Ref})
	if err := classify(p, resp, err); err != nil {
		return nil, unwrapRetryable(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "download %s", p)
	}
	return &repo.File{Path: p, Content: string(data)}, nil
}

// fetchFromSubmodule walks up from p looking for the submodule that owns it
// and reads the remainder of the path from the submodule's repository at the
// pinned commit.
func (t *Tree) fetchFromSubmodule(ctx context.Context, p string) (*repo.File, error) {
	segs := strings.Split(p, "/")
	for i := len(segs) - 1; i >= 1; i-- {
		prefix := strings.Join(segs[:i], "/")
		fc, _, err := t.contents(ctx, t.ref, prefix)
		if repo.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if fc == nil || fc.GetType() != string(repo.TypeSubmodule) {
			break
		}

		m := repoURLPattern.FindStringSubmatch(fc.GetSubmoduleGitURL())
		if m == nil {
			break
		}
		sub := RepoRef{Owner: m[1], Repo: m[2], Ref: fc.GetSHA()}
		f, err := t.fetchFile(ctx, sub, strings.Join(segs[i:], "/"))
		if repo.IsNotFound(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		f.Path = p
		return f, nil
	}
	return nil, repo.NotFound(p)
}

// contents calls the contents API with retries. Exactly one of fc and dc is
// set on success: fc for files, submodules and symlinks, dc for directories.
func (t *Tree) contents(ctx context.Context, ref RepoRef, p string) (fc *gogithub.RepositoryContent, dc []*gogithub.RepositoryContent, err error) {
	opts := &gogithub.RepositoryContentGetOptions{Ref: ref.Ref}
	host := t.gh.BaseURL.Host

	err = httputil.Retry(ctx, t.attempts, t.delay, func() error {
		start := time.Now()
		observability.HTTP().OnRequest(ctx, http.MethodGet, host, p)

		var resp *gogithub.Response
		var callErr error
		fc, dc, resp, callErr = t.gh.Repositories.GetContents(ctx, ref.Owner, ref.Repo, p, opts)
		if resp != nil {
			observability.HTTP().OnResponse(ctx, http.MethodGet, host, p, resp.StatusCode, time.Since(start))
		} else if callErr != nil {
			observability.HTTP().OnError(ctx, http.MethodGet, host, p, callErr)
		}
		return classify(p, resp, callErr)
	})
	return fc, dc, unwrapRetryable(err)
}

// classify maps a go-github failure onto the error vocabulary of this
// module. Transient failures are marked retryable.
func classify(p string, resp *gogithub.Response, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gogithub.ErrPathForbidden) {
		return repo.NotFound(p)
	}

	var rle *gogithub.RateLimitError
	if stderrors.As(err, &rle) {
		return &errors.RateLimitedError{
			RetryAfter: max(int(time.Until(rle.Rate.Reset.Time).Seconds()), 0),
			Message:    rle.Message,
		}
	}
	var are *gogithub.AbuseRateLimitError
	if stderrors.As(err, &are) {
		secs := 0
		if are.RetryAfter != nil {
			secs = int(are.RetryAfter.Seconds())
		}
		return &errors.RateLimitedError{RetryAfter: secs, Message: are.Message}
	}

	if resp == nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", p)}
	}

	switch code := resp.StatusCode; {
	case code == http.StatusNotFound:
		return repo.NotFound(p)
	case code == http.StatusUnauthorized:
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "GitHub rejected the credentials")
	case code >= 500:
		return &httputil.RetryableError{
			Err:   errors.Wrap(errors.ErrCodeNetwork, err, "GitHub returned %d for %s", code, p),
			After: retryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", p)
	}
}

func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if stderrors.As(err, &re) {
		return re.Err
	}
	return err
}

// retryAfter reads a Retry-After header in its delay-seconds form.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func outsideRepo(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../")
}

var _ repo.Tree = (*Tree)(nil)
