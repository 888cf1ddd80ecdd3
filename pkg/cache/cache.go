// Package cache provides byte-level caches for remote repository content.
//
// # Overview
//
// Discovery talks to a remote tree (GitHub) one file or directory at a time.
// The same repository is usually inspected many times, so file bodies and
// directory listings are cached by the [repo.Cached] decorator through the
// [Cache] interface defined here.
//
// Implementations:
//
//   - [FileCache]: JSON entries on disk, for CLI usage (~/.cache/pyfetch/)
//   - [RedisCache]: shared cache for the HTTP server, backed by go-redis
//   - [LRUCache]: bounded in-process cache, backed by golang-lru
//   - [Layered]: an in-process front cache in front of a slower backend
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are produced by a [Keyer] so that every backend sees the same
// namespaced, collision-free strings:
//
//	k := cache.NewDefaultKeyer()
//	k.FileKey(cache.RepoKey{Owner: "psf", Repo: "requests", Ref: "main"}, "setup.py")
//
// [repo.Cached]: github.com/matzehuels/pyfetch/pkg/repo.Cached
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte slices under string keys.
//
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures. A ttl of 0 passed to Set means the entry never expires.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RepoKey identifies a repository snapshot. An empty Ref means the default
// branch, which is cached separately from any explicit ref.
type RepoKey struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Ref   string `json:"ref,omitempty"`
}

// Keyer generates cache keys for remote tree content.
type Keyer interface {
	// FileKey returns the key for a file body at path.
	FileKey(repo RepoKey, path string) string
	// ListingKey returns the key for a directory listing at path.
	ListingKey(repo RepoKey, path string) string
}

// DefaultKeyer hashes repository coordinates and paths into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FileKey implements Keyer.
func (DefaultKeyer) FileKey(repo RepoKey, path string) string {
	return hashKey("file", repo, path)
}

// ListingKey implements Keyer.
func (DefaultKeyer) ListingKey(repo RepoKey, path string) string {
	return hashKey("ls", repo, path)
}
