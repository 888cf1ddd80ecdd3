package repo

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Memory is an in-memory Tree built from a map of path to content.
// Directories are implied by file paths. It is safe for concurrent reads.
type Memory struct {
	files map[string]string
}

// NewMemory creates a tree from files. Keys are cleaned with [Clean].
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string]string, len(files))}
	for p, content := range files {
		m.files[Clean(p)] = content
	}
	return m
}

// LoadDir reads every regular file below root into a Memory tree.
// Version-control metadata directories are skipped.
func LoadDir(root string) (*Memory, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", ".hg", ".svn":
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewMemory(files), nil
}

// FetchFile implements Tree.
func (m *Memory) FetchFile(_ context.Context, path string, _ FetchOptions) (*File, error) {
	p := Clean(path)
	content, ok := m.files[p]
	if !ok {
		return nil, NotFound(p)
	}
	return &File{Path: p, Content: content}, nil
}

// ListDirectory implements Tree.
func (m *Memory) ListDirectory(_ context.Context, path string) ([]Entry, error) {
	dir := Clean(path)
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	seen := make(map[string]Entry)
	for p, content := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if isDir {
			seen[name] = Entry{Name: name, Path: prefix + name, Type: TypeDir}
			continue
		}
		seen[name] = Entry{Name: name, Path: p, Type: TypeFile, Size: int64(len(content))}
	}

	if len(seen) == 0 {
		if _, isFile := m.files[dir]; dir != "" || isFile {
			return nil, NotFound(dir)
		}
	}

	entries := make([]Entry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Len returns the number of files in the tree.
func (m *Memory) Len() int { return len(m.files) }

var _ Tree = (*Memory)(nil)
