// Package pkg provides the libraries behind pyfetch, which collects the
// Python dependency manifests of a repository without cloning it.
//
// # Overview
//
// Given a directory in a remote repository snapshot, pyfetch finds every
// file a Python dependency resolver needs: requirement files and the files
// they include, constraint files, Pipfile and Poetry manifests, setup
// scripts, and the manifests of local path dependencies. The pkg directory
// is organized into three areas:
//
//  1. [python] - Discovery (presence check, include graph, path dependencies)
//  2. [repo] and [integrations/github] - Read access to repository snapshots
//  3. Infrastructure: [cache], [errors], [httputil], [observability],
//     [session], [buildinfo]
//
// # Architecture
//
// The typical data flow through pyfetch:
//
//	owner/repo@ref
//	      ↓
//	 [integrations/github] Tree (contents API, retries, submodules)
//	      ↓
//	 [repo] Cached / Recording decorators
//	      ↓
//	 [python] Fetcher (discover + aggregate)
//	      ↓
//	 []ManifestFile, or a JSON report
//
// # Quick Start
//
//	gh, _ := github.NewClient(os.Getenv("GITHUB_TOKEN"), "")
//	ref, _ := github.ParseRepoRef("psf/requests@main")
//	tree := github.NewTree(gh, ref)
//
//	files, err := python.NewFetcher(tree, python.Options{}).Discover(ctx, "/")
//	if errors.Is(err, errors.ErrCodeManifestNotFound) {
//	    // not a Python project
//	}
//
// Tests and offline runs use an in-memory tree instead:
//
//	tree, _ := repo.LoadDir("./my-project")
//	files, err := python.NewFetcher(tree, python.Options{}).Discover(ctx, ".")
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/httputil
//
// [python]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/python
// [repo]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/repo
// [integrations/github]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/integrations/github
// [cache]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/observability
// [session]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/session
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pyfetch/pkg/buildinfo
package pkg
