package repo

import (
	"context"
	"sort"
	"sync"
)

// Recording is a Tree decorator that counts calls per path. Discovery uses
// it to report how many remote requests a run cost; tests use it to assert
// that no logical file is fetched twice.
type Recording struct {
	tree Tree

	mu       sync.Mutex
	fetches  map[string]int
	listings map[string]int
}

// NewRecording wraps tree.
func NewRecording(tree Tree) *Recording {
	return &Recording{
		tree:     tree,
		fetches:  make(map[string]int),
		listings: make(map[string]int),
	}
}

// FetchFile implements Tree.
func (r *Recording) FetchFile(ctx context.Context, path string, opts FetchOptions) (*File, error) {
	p := Clean(path)
	r.mu.Lock()
	r.fetches[p]++
	r.mu.Unlock()
	return r.tree.FetchFile(ctx, p, opts)
}

// ListDirectory implements Tree.
func (r *Recording) ListDirectory(ctx context.Context, path string) ([]Entry, error) {
	p := Clean(path)
	r.mu.Lock()
	r.listings[p]++
	r.mu.Unlock()
	return r.tree.ListDirectory(ctx, p)
}

// Fetches returns how many times path was fetched.
func (r *Recording) Fetches(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches[Clean(path)]
}

// Listings returns how many times the directory at path was listed.
func (r *Recording) Listings(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listings[Clean(path)]
}

// Requests returns the total number of fetches and listings.
func (r *Recording) Requests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.fetches {
		n += c
	}
	for _, c := range r.listings {
		n += c
	}
	return n
}

// FetchedPaths returns every fetched path in sorted order.
func (r *Recording) FetchedPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.fetches))
	for p := range r.fetches {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var _ Tree = (*Recording)(nil)
