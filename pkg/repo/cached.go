package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/pyfetch/pkg/cache"
	"github.com/matzehuels/pyfetch/pkg/observability"
)

// Cached is a Tree decorator that stores file bodies and directory listings
// in a cache.Cache. Not-found results and errors are never cached, so a file
// added upstream becomes visible as soon as it exists.
type Cached struct {
	tree  Tree
	store cache.Cache
	keyer cache.Keyer
	repo  cache.RepoKey
	ttl   time.Duration
}

// NewCached wraps tree. repo identifies the snapshot in cache keys; keyer
// may be nil to use cache.NewDefaultKeyer.
func NewCached(tree Tree, store cache.Cache, keyer cache.Keyer, repo cache.RepoKey, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{tree: tree, store: store, keyer: keyer, repo: repo, ttl: ttl}
}

// FetchFile implements Tree.
func (c *Cached) FetchFile(ctx context.Context, path string, opts FetchOptions) (*File, error) {
	p := Clean(path)
	key := c.keyer.FileKey(c.repo, p)
	if opts.FetchSubmodules {
		key += ":sub"
	}

	if data, ok, err := c.store.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "file")
		return &File{Path: p, Content: string(data)}, nil
	}
	observability.Cache().OnCacheMiss(ctx, "file")

	f, err := c.tree.FetchFile(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, []byte(f.Content), c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "file", len(f.Content))
	}
	return f, nil
}

// ListDirectory implements Tree.
func (c *Cached) ListDirectory(ctx context.Context, path string) ([]Entry, error) {
	p := Clean(path)
	key := c.keyer.ListingKey(c.repo, p)

	if data, ok, err := c.store.Get(ctx, key); err == nil && ok {
		var entries []Entry
		if json.Unmarshal(data, &entries) == nil {
			observability.Cache().OnCacheHit(ctx, "listing")
			return entries, nil
		}
		_ = c.store.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "listing")

	entries, err := c.tree.ListDirectory(ctx, p)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(entries); err == nil {
		if c.store.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "listing", len(data))
		}
	}
	return entries, nil
}

var _ Tree = (*Cached)(nil)
