// Package repo defines the remote tree contract that manifest discovery
// consumes, plus in-memory, caching and recording implementations.
//
// A [Tree] is a read-only view of one repository snapshot: it fetches file
// bodies by path and lists directories. Paths are repository-relative and
// use forward slashes; "" and "." both denote the repository root.
//
// Implementations:
//
//   - [github.Tree]: the GitHub contents API (pkg/integrations/github)
//   - [Memory]: a map of path to content, for tests and local directories
//   - [Cached]: stores bodies and listings in a [cache.Cache]
//   - [Recording]: counts fetches per path
//
// Missing files and directories are reported with an error wrapping
// [ErrNotFound]; callers distinguish absence from failure with errors.Is.
//
// [github.Tree]: github.com/matzehuels/pyfetch/pkg/integrations/github.Tree
// [cache.Cache]: github.com/matzehuels/pyfetch/pkg/cache.Cache
package repo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned (wrapped) when a path does not exist in the tree.
var ErrNotFound = errors.New("not found")

// NotFoundError carries the path that could not be found.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, ErrNotFound)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound returns a NotFoundError for path.
func NotFound(path string) error {
	return &NotFoundError{Path: path}
}

// IsNotFound reports whether err signals a missing path.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// EntryType is the kind of a directory entry.
type EntryType string

// Entry types reported by the contents API.
const (
	TypeFile      EntryType = "file"
	TypeDir       EntryType = "dir"
	TypeSubmodule EntryType = "submodule"
	TypeSymlink   EntryType = "symlink"
)

// Entry is one item of a directory listing.
type Entry struct {
	Name string    `json:"name"`
	Path string    `json:"path"`
	Type EntryType `json:"type"`
	Size int64     `json:"size"`
}

// File is a fetched file body.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FetchOptions tunes a single fetch.
type FetchOptions struct {
	// FetchSubmodules asks the tree to follow the path into a git submodule
	// when it is not found in the repository itself.
	FetchSubmodules bool
}

// Tree is a read-only remote repository snapshot.
type Tree interface {
	// FetchFile returns the content of the file at path.
	FetchFile(ctx context.Context, path string, opts FetchOptions) (*File, error)
	// ListDirectory returns the immediate children of the directory at path.
	ListDirectory(ctx context.Context, path string) ([]Entry, error)
}

// Clean normalizes a repository path: redundant separators and "." segments
// are removed, leading "/" characters are dropped and the root becomes "".
// Leading ".." segments are kept; they point outside the repository and
// will simply not be found.
func Clean(p string) string {
	p = path.Clean(strings.TrimLeft(p, "/"))
	if p == "." {
		return ""
	}
	return p
}

// Join joins path elements and cleans the result with [Clean].
func Join(elem ...string) string {
	return Clean(path.Join(elem...))
}
