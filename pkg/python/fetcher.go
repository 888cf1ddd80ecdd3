package python

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pyfetch/pkg/errors"
	"github.com/matzehuels/pyfetch/pkg/observability"
	"github.com/matzehuels/pyfetch/pkg/repo"
)

// DefaultConcurrency bounds parallel path dependency fetches.
const DefaultConcurrency = 4

// Options configures a Fetcher.
type Options struct {
	// Logger receives progress and diagnostics. Nil discards output.
	Logger *log.Logger

	// Concurrency bounds parallel path dependency fetches.
	// Zero or negative uses DefaultConcurrency.
	Concurrency int

	// ScanSubdirectories scans every immediate subdirectory for requirement
	// files instead of only requirements/.
	ScanSubdirectories bool
}

// Fetcher discovers Python manifests in a repo.Tree. A Fetcher holds no
// per-run state and may be used concurrently.
type Fetcher struct {
	tree repo.Tree
	opts Options
}

// NewFetcher creates a Fetcher reading from tree.
func NewFetcher(tree repo.Tree, opts Options) *Fetcher {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Fetcher{tree: tree, opts: opts}
}

// Result is the outcome of one discovery run.
type Result struct {
	RunID     string
	Directory string
	Files     []ManifestFile
	Duration  time.Duration
}

// Discover returns every manifest and support file of the Python project
// rooted at dir. See [Fetcher.Run].
func (f *Fetcher) Discover(ctx context.Context, dir string) ([]ManifestFile, error) {
	res, err := f.Run(ctx, dir)
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

// Run performs one discovery run rooted at dir ("", "." and "/" denote the
// repository root) and reports it with a run ID for correlation.
func (f *Fetcher) Run(ctx context.Context, dir string) (*Result, error) {
	if err := errors.ValidateDirectory(dir); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	r := &run{
		tree:    f.tree,
		dir:     repo.Clean(dir),
		opts:    f.opts,
		log:     f.opts.Logger.With("run", id[:8]),
		visited: newVisited(),
		memo:    make(map[string]*memoEntry),
	}

	start := time.Now()
	observability.Discovery().OnDiscoverStart(ctx, r.dir)
	r.log.Debug("discovery started", "dir", displayDir(r.dir))

	files, err := r.discover(ctx)
	elapsed := time.Since(start)
	observability.Discovery().OnDiscoverComplete(ctx, r.dir, len(files), elapsed, err)
	if err != nil {
		r.log.Debug("discovery failed", "dir", displayDir(r.dir), "err", err)
		return nil, err
	}

	r.log.Info("discovery complete",
		"dir", displayDir(r.dir),
		"files", len(files),
		"duration", elapsed.Round(time.Millisecond))
	return &Result{RunID: id, Directory: displayDir(r.dir), Files: files, Duration: elapsed}, nil
}

// run carries the state of a single discovery. Each phase fills the fields
// it owns; later phases only read them.
type run struct {
	tree repo.Tree
	dir  string
	opts Options
	log  *log.Logger

	visited *visited

	memoMu sync.Mutex
	memo   map[string]*memoEntry

	listing []repo.Entry

	pipfile, pipfileLock                  *ManifestFile
	pyproject, pyprojectLock, poetryLock  *ManifestFile
	setupPy, setupCfg                     *ManifestFile
	pipConf, pythonVersion                *ManifestFile
	requirementTxt, requirementIn         []ManifestFile
	childTxt, childIn, constraints, paths []ManifestFile
}

type memoEntry struct {
	mu         sync.Mutex
	done       bool
	submodules bool
	file       *repo.File
	err        error
}

// fetch returns the file at p, asking the tree at most once per run for
// each path. Absence is memoized like content, except that a path found
// missing without the submodule hint is retried once with it. Concurrent
// callers for the same path share a single request.
func (r *run) fetch(ctx context.Context, p string, submodules bool) (*repo.File, error) {
	p = repo.Clean(p)

	r.memoMu.Lock()
	e, ok := r.memo[p]
	if !ok {
		e = &memoEntry{}
		r.memo[p] = e
	}
	r.memoMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done && !(repo.IsNotFound(e.err) && submodules && !e.submodules) {
		return e.file, e.err
	}

	e.file, e.err = r.tree.FetchFile(ctx, p, repo.FetchOptions{FetchSubmodules: submodules})
	e.done, e.submodules = true, submodules

	found := e.err == nil
	observability.Discovery().OnFetch(ctx, p, found)
	if found {
		r.log.Debug("fetched", "file", p)
	} else if repo.IsNotFound(e.err) {
		r.log.Debug("absent", "file", p)
	}
	return e.file, e.err
}

// fetchOptional fetches name in the configured directory when the listing
// contains it. Absent files yield (nil, nil).
func (r *run) fetchOptional(ctx context.Context, name string, support bool) (*ManifestFile, error) {
	if !r.listed(name) {
		return nil, nil
	}
	f, err := r.fetch(ctx, repo.Join(r.dir, name), false)
	if repo.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	mf := r.manifest(f, support)
	return &mf, nil
}

func (r *run) listed(name string) bool {
	for _, e := range r.listing {
		if e.Name == name && e.Type != repo.TypeDir {
			return true
		}
	}
	return false
}

func (r *run) manifest(f *repo.File, support bool) ManifestFile {
	return ManifestFile{
		Name:        repo.Clean(f.Path),
		Content:     f.Content,
		SupportFile: support,
	}
}

// pathManifest builds the support file for a path dependency, which is
// always requested with the submodule hint.
func (r *run) pathManifest(f *repo.File) ManifestFile {
	mf := r.manifest(f, true)
	mf.FetchSubmodules = true
	return mf
}

// relative returns name relative to the configured directory.
func (r *run) relative(name string) string {
	if r.dir == "" {
		return name
	}
	return strings.TrimPrefix(name, r.dir+"/")
}

func (r *run) concurrency() int {
	if r.opts.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return r.opts.Concurrency
}

func (r *run) discover(ctx context.Context) ([]ManifestFile, error) {
	missing := errors.NewManifestNotFound(repo.Join(r.dir, RequirementsTxt))

	listing, err := r.tree.ListDirectory(ctx, r.dir)
	if err != nil && !repo.IsNotFound(err) {
		return nil, err
	}
	r.listing = listing
	if !RequiredFilesIn(entryNames(listing)) {
		return nil, missing
	}

	if err := r.fetchRootFiles(ctx); err != nil {
		return nil, err
	}

	reqs, err := r.requirementFiles(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range reqs {
		if f.isIn() {
			r.requirementIn = append(r.requirementIn, f)
		} else {
			r.requirementTxt = append(r.requirementTxt, f)
		}
	}

	children, err := r.childRequirementFiles(ctx, reqs)
	if err != nil {
		return nil, err
	}
	for _, f := range children {
		if f.isIn() {
			r.childIn = append(r.childIn, f)
		} else {
			r.childTxt = append(r.childTxt, f)
		}
	}

	r.constraints, err = r.constraintFiles(ctx, append(append([]ManifestFile{}, reqs...), children...))
	if err != nil {
		return nil, err
	}

	refs, err := r.pathReferences()
	if err != nil {
		return nil, err
	}
	r.paths, err = r.pathDependencyFiles(ctx, r.pathTargets(refs))
	if err != nil {
		return nil, err
	}

	if !r.hasRequiredFiles() {
		return nil, missing
	}
	return Dedupe(r.collect()), nil
}

func (r *run) fetchRootFiles(ctx context.Context) error {
	optional := []struct {
		name    string
		support bool
		dst     **ManifestFile
	}{
		{Pipfile, false, &r.pipfile},
		{PipfileLock, false, &r.pipfileLock},
		{PyprojectToml, false, &r.pyproject},
		{PyprojectLock, false, &r.pyprojectLock},
		{PoetryLock, false, &r.poetryLock},
		{SetupPy, false, &r.setupPy},
		{SetupCfg, false, &r.setupCfg},
		{PipConf, true, &r.pipConf},
		{PythonVersion, true, &r.pythonVersion},
	}
	for _, o := range optional {
		mf, err := r.fetchOptional(ctx, o.name, o.support)
		if err != nil {
			return err
		}
		*o.dst = mf
	}

	if r.pythonVersion == nil && r.dir != "" {
		return r.fetchParentPythonVersion(ctx)
	}
	return nil
}

// fetchParentPythonVersion looks one directory up for a .python-version and
// files it under the configured directory.
func (r *run) fetchParentPythonVersion(ctx context.Context) error {
	parent := path.Dir(r.dir)
	f, err := r.fetch(ctx, repo.Join(parent, PythonVersion), false)
	if repo.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	mf := r.manifest(f, true)
	mf.Name = repo.Join(r.dir, PythonVersion)
	r.pythonVersion = &mf
	return nil
}

// pathReferences gathers path dependencies from requirement files, the
// Pipfile and Poetry tables. Parse failures abort before anything is
// fetched.
func (r *run) pathReferences() ([]PathReference, error) {
	var refs []PathReference
	for _, group := range [][]ManifestFile{r.requirementTxt, r.childTxt, r.requirementIn, r.childIn} {
		for _, f := range group {
			refs = append(refs, ParseRequirementPaths(f)...)
		}
	}

	if r.pipfile != nil {
		more, err := PipfilePaths(*r.pipfile)
		if err != nil {
			return nil, err
		}
		refs = append(refs, more...)
	}
	if r.pyproject != nil {
		more, err := PoetryPaths(*r.pyproject)
		if err != nil {
			return nil, err
		}
		refs = append(refs, more...)
	}
	return refs, nil
}

func (r *run) hasRequiredFiles() bool {
	return len(r.requirementTxt) > 0 || len(r.requirementIn) > 0 ||
		len(r.childTxt) > 0 || len(r.childIn) > 0 ||
		r.setupPy != nil || r.setupCfg != nil ||
		r.pipfile != nil || r.pyproject != nil
}

// collect returns every fetched file in output order: Pipenv, pyproject,
// .in files, .txt files and constraints, setup files, path dependencies and
// finally optional configuration.
func (r *run) collect() []ManifestFile {
	var out []ManifestFile
	add := func(mfs ...*ManifestFile) {
		for _, mf := range mfs {
			if mf != nil {
				out = append(out, *mf)
			}
		}
	}

	add(r.pipfile, r.pipfileLock)
	add(r.pyproject, r.pyprojectLock, r.poetryLock)
	out = append(out, r.requirementIn...)
	out = append(out, r.childIn...)
	out = append(out, r.requirementTxt...)
	out = append(out, r.childTxt...)
	out = append(out, r.constraints...)
	add(r.setupPy, r.setupCfg)
	out = append(out, r.paths...)
	add(r.pipConf, r.pythonVersion)
	return out
}

func displayDir(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}
