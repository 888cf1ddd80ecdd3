// Package github reads repository snapshots from the GitHub REST API.
//
// # Overview
//
// [Tree] implements repo.Tree on top of the contents endpoint
// (GET /repos/{owner}/{repo}/contents/{path}) through go-github. Discovery
// uses it to list directories and fetch manifest bodies at a fixed ref.
//
// # Usage
//
//	gh, err := github.NewClient(os.Getenv("GITHUB_TOKEN"), "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ref, err := github.ParseRepoRef("psf/requests@main")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tree := github.NewTree(gh, ref)
//	files, err := python.NewFetcher(tree, python.Options{}).Discover(ctx, "/")
//
// # Errors
//
// Responses are mapped as follows:
//
//   - 404: an error wrapping repo.ErrNotFound
//   - 401: UNAUTHORIZED
//   - rate limits: errors.RateLimitedError with the reset delay
//   - 5xx and network failures: retried with exponential backoff, then
//     NETWORK_ERROR
//
// # Submodules
//
// When a fetch asks for it (repo.FetchOptions.FetchSubmodules) and the path
// is missing, [Tree] looks for a submodule entry on the path and reads the
// file from the submodule's repository at the pinned commit.
//
// # Authentication
//
// A token is optional but recommended: unauthenticated clients are limited
// to 60 requests/hour, authenticated ones to 5000. [NewClient] takes a
// personal access token, [NewAppClient] a GitHub App installation, and
// [DeviceFlow] obtains a user token interactively.
package github
