package python

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

var archiveSuffixes = []string{".tar.gz", ".whl", ".zip"}

func isArchive(p string) bool {
	for _, s := range archiveSuffixes {
		if strings.HasSuffix(p, s) {
			return true
		}
	}
	return false
}

// pathTarget is a path reference resolved to the file that must be fetched.
type pathTarget struct {
	ref  PathReference
	path string
}

// unreachable collects path dependencies that could not be fetched. Entries
// are keyed by target index so the reported order does not depend on
// goroutine scheduling.
type unreachable struct {
	mu    sync.Mutex
	paths map[int]string
}

func (u *unreachable) add(i int, p string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.paths == nil {
		u.paths = make(map[int]string)
	}
	u.paths[i] = p
}

func (u *unreachable) err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.paths) == 0 {
		return nil
	}

	idx := make([]int, 0, len(u.paths))
	for i := range u.paths {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	seen := make(map[string]bool, len(idx))
	var paths []string
	for _, i := range idx {
		p := u.paths[i]
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return errors.NewPathDependenciesUnreachable(paths)
}

// pathTargets resolves references against the configured directory and
// drops duplicates. Archives are fetched as-is; anything else is treated as
// a package directory holding a setup.py.
func (r *run) pathTargets(refs []PathReference) []pathTarget {
	type key struct {
		path   string
		poetry bool
	}
	seen := make(map[key]bool, len(refs))

	var targets []pathTarget
	for _, ref := range refs {
		p := repo.Join(r.dir, ref.RawPath)
		if !isArchive(p) {
			p = repo.Join(p, SetupPy)
		}
		k := key{p, ref.Poetry}
		if seen[k] {
			continue
		}
		seen[k] = true
		targets = append(targets, pathTarget{ref: ref, path: p})
	}
	return targets
}

// pathDependencyFiles fetches every target with bounded concurrency. A target
// that cannot be found is recorded and resolution continues; all of them are
// reported together once every target has been tried. Any other failure
// aborts the run.
func (r *run) pathDependencyFiles(ctx context.Context, targets []pathTarget) ([]ManifestFile, error) {
	results := make([][]ManifestFile, len(targets))
	var missing unreachable

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency())
	for i, t := range targets {
		g.Go(func() error {
			files, miss, err := r.fetchPathDependency(gctx, t)
			if err != nil {
				return err
			}
			if miss != "" {
				r.log.Warn("path dependency unreachable", "path", miss, "from", t.ref.SourceFile)
				missing.add(i, miss)
			}
			results[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := missing.err(); err != nil {
		return nil, err
	}

	var files []ManifestFile
	for _, fs := range results {
		files = append(files, fs...)
	}
	return files, nil
}

// fetchPathDependency returns the support files for one target, or the path
// to report as unreachable.
func (r *run) fetchPathDependency(ctx context.Context, t pathTarget) ([]ManifestFile, string, error) {
	if t.path == repo.Join(r.dir, SetupPy) && r.setupPy != nil {
		return nil, "", nil
	}

	f, err := r.fetch(ctx, t.path, true)
	switch {
	case err == nil:
	case repo.IsNotFound(err) && t.ref.Poetry:
		alt := pyprojectFallback(t.path)
		f, err = r.fetch(ctx, alt, true)
		if repo.IsNotFound(err) {
			return nil, alt, nil
		}
		if err != nil {
			return nil, "", err
		}
	case repo.IsNotFound(err):
		return nil, t.path, nil
	default:
		return nil, "", err
	}

	files := []ManifestFile{r.pathManifest(f)}
	if !strings.HasSuffix(t.path, ".py") {
		return files, "", nil
	}

	cfg, err := r.fetch(ctx, strings.TrimSuffix(t.path, ".py")+".cfg", true)
	switch {
	case err == nil:
		files = append(files, r.pathManifest(cfg))
	case !repo.IsNotFound(err):
		return nil, "", err
	}
	return files, "", nil
}

func pyprojectFallback(p string) string {
	if strings.HasSuffix(p, SetupPy) {
		return strings.TrimSuffix(p, SetupPy) + PyprojectToml
	}
	return strings.ReplaceAll(p, SetupPy, PyprojectToml)
}
