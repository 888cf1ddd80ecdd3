package python

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

var (
	childRequirementPattern = regexp.MustCompile(`(?m)^-r[ \t]?(.*\.(?:txt|in))`)
	constraintPattern       = regexp.MustCompile(`(?m)^-c[ \t]?(.*\.(?:txt|in))`)
)

// visited is the set of requirement file names already collected during a
// run. It is shared by root candidates, -r includes and -c constraints so a
// file reachable through several paths is kept once.
type visited struct {
	mu    sync.Mutex
	names map[string]bool
}

func newVisited() *visited {
	return &visited{names: make(map[string]bool)}
}

// add marks name and reports whether it was new.
func (v *visited) add(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.names[name] {
		return false
	}
	v.names[name] = true
	return true
}

// requirementFiles returns the requirements-shaped .txt/.in files of the
// configured directory and of its requirements/ subdirectory (or every
// subdirectory with Options.ScanSubdirectories).
func (r *run) requirementFiles(ctx context.Context) ([]ManifestFile, error) {
	files, err := r.scanEntries(ctx, r.listing)
	if err != nil {
		return nil, err
	}

	for _, e := range r.listing {
		if e.Type != repo.TypeDir {
			continue
		}
		if e.Name != RequirementsDir && !r.opts.ScanSubdirectories {
			continue
		}
		sub := repo.Join(r.dir, e.Name)
		entries, err := r.tree.ListDirectory(ctx, sub)
		if repo.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		more, err := r.scanEntries(ctx, entries)
		if err != nil {
			return nil, err
		}
		files = append(files, more...)
	}

	for _, f := range files {
		r.visited.add(f.Name)
	}
	return files, nil
}

func (r *run) scanEntries(ctx context.Context, entries []repo.Entry) ([]ManifestFile, error) {
	var files []ManifestFile
	for _, e := range entries {
		if e.Type == repo.TypeDir || e.Type == repo.TypeSubmodule {
			continue
		}
		if !strings.HasSuffix(e.Name, ".txt") && !strings.HasSuffix(e.Name, ".in") {
			continue
		}
		name := repo.Clean(e.Path)
		if e.Size > MaxCandidateSize {
			r.log.Debug("skipping oversized candidate", "file", name, "size", e.Size)
			continue
		}

		f, err := r.fetch(ctx, name, false)
		if repo.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !IsRequirementsFile(r.relative(name), f.Content) {
			r.log.Debug("skipping candidate", "file", name, "reason", "not requirements-shaped")
			continue
		}
		files = append(files, r.manifest(f, false))
	}
	return files, nil
}

type includeFrame struct {
	file  ManifestFile
	paths []string
}

// childRequirementFiles follows -r includes depth-first from each root,
// fetching every newly seen file once. Self-references and cycles stop at
// the visited set. A missing include is a hard error.
func (r *run) childRequirementFiles(ctx context.Context, roots []ManifestFile) ([]ManifestFile, error) {
	var children []ManifestFile

	for _, root := range roots {
		stack := []*includeFrame{{file: root, paths: includePaths(root, childRequirementPattern)}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if len(top.paths) == 0 {
				stack = stack[:len(stack)-1]
				continue
			}
			p := top.paths[0]
			top.paths = top.paths[1:]

			if p == top.file.Name || !r.visited.add(p) {
				continue
			}
			f, err := r.fetch(ctx, p, false)
			if err != nil {
				return nil, includeError(err, p, top.file.Name)
			}
			child := r.manifest(f, false)
			children = append(children, child)
			stack = append(stack, &includeFrame{file: child, paths: includePaths(child, childRequirementPattern)})
		}
	}
	return children, nil
}

// constraintFiles fetches every -c target referenced by files that was not
// already collected.
func (r *run) constraintFiles(ctx context.Context, files []ManifestFile) ([]ManifestFile, error) {
	var out []ManifestFile
	for _, file := range files {
		for _, p := range includePaths(file, constraintPattern) {
			if !r.visited.add(p) {
				continue
			}
			f, err := r.fetch(ctx, p, false)
			if err != nil {
				return nil, includeError(err, p, file.Name)
			}
			out = append(out, r.manifest(f, false))
		}
	}
	return out, nil
}

// includePaths returns the -r or -c targets of file resolved against the
// file's own directory.
func includePaths(file ManifestFile, pattern *regexp.Regexp) []string {
	var paths []string
	for _, m := range pattern.FindAllStringSubmatch(file.Content, -1) {
		p := strings.TrimSpace(m[1])
		if p == "" {
			continue
		}
		paths = append(paths, repo.Join(file.Dir(), p))
	}
	return paths
}

func includeError(err error, path, from string) error {
	if repo.IsNotFound(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s (included from %s)", path, from)
	}
	return err
}
