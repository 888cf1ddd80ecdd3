// Package python discovers the complete set of manifest files that describe
// a Python project's dependencies in a remote repository.
//
// # Overview
//
// A project may declare dependencies through any combination of:
//
//   - requirements.txt / *.in files, which include other files with -r and
//     constrain versions with -c, recursively and across directories
//   - Pipfile (+ Pipfile.lock)
//   - pyproject.toml, plain or Poetry (+ poetry.lock / pyproject.lock)
//   - setup.py / setup.cfg
//   - local path dependencies pointing at sibling packages that carry their
//     own setup.py, setup.cfg or pyproject.toml
//
// [Fetcher.Discover] walks a [repo.Tree] and returns every file needed to
// later parse dependency versions. Each logical file is fetched at most once,
// include cycles terminate, absent optional files are skipped, and every
// unreachable path dependency is reported in a single error.
//
// # Discovery Pipeline
//
//  1. List the configured directory and gate on [RequiredFilesIn].
//  2. Fetch optional root manifests (Pipfile, pyproject.toml, setup.py, ...).
//  3. Collect requirement candidates (*.txt, *.in up to 500 000 bytes) from the
//     directory and its requirements/ subdirectory, keeping only files that
//     pass [IsRequirementsFile].
//  4. Expand -r includes with an explicit worklist, then fetch -c constraints.
//  5. Extract [PathReference] values from requirement files, Pipfile and
//     Poetry tables.
//  6. Fetch each path dependency, falling back to pyproject.toml for Poetry.
//  7. Merge everything with [Dedupe] and check that a required manifest exists.
//
// # Errors
//
// Terminal failures are the typed errors of pkg/errors:
// ManifestNotFoundError, ManifestNotParseableError and
// PathDependenciesUnreachableError. A missing -r or -c include surfaces as a
// wrapped [repo.ErrNotFound].
//
// # Usage
//
//	ref, _ := github.ParseRepoRef("psf/requests@main")
//	tree := github.NewTree(client, ref)
//	f := python.NewFetcher(tree, python.Options{Logger: logger})
//	files, err := f.Discover(ctx, "/")
//	for _, mf := range python.Primary(files) {
//	    fmt.Println(mf.Name)
//	}
package python
