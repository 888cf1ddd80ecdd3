package python

import (
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pyfetch/pkg/errors"
)

// PathReference is a local path dependency extracted from a manifest.
type PathReference struct {
	// RawPath is the path as written, without any "file:" prefix.
	RawPath string
	// SourceFile names the manifest the reference was found in.
	SourceFile string
	// Editable is set for "-e" requirement lines.
	Editable bool
	// Poetry is set for references from pyproject.toml. Only these may fall
	// back to a pyproject.toml when the setup.py is absent.
	Poetry bool
}

var (
	// Non-editable references start with "." and run until an extras
	// bracket, comment or quote.
	uneditablePathPattern = regexp.MustCompile(`(?m)^['"]?(?:file:)?(\.[^\[#'"\r\n]*)`)
	editablePathPattern   = regexp.MustCompile(`(?m)^-e[ \t]+['"]?(?:file:)?([^\[#'"\r\n]*)`)
)

// ParseRequirementPaths extracts local path references from a requirements
// file. URL references ("://") and, for editables, SSH remotes ("git@") are
// ignored.
func ParseRequirementPaths(file ManifestFile) []PathReference {
	var refs []PathReference

	for _, m := range uneditablePathPattern.FindAllStringSubmatch(file.Content, -1) {
		p := strings.TrimSpace(m[1])
		if p == "" || strings.Contains(p, "://") {
			continue
		}
		refs = append(refs, PathReference{RawPath: p, SourceFile: file.Name})
	}

	for _, m := range editablePathPattern.FindAllStringSubmatch(file.Content, -1) {
		p := strings.TrimSpace(m[1])
		if p == "" || strings.Contains(p, "://") || strings.Contains(p, "git@") {
			continue
		}
		refs = append(refs, PathReference{RawPath: p, SourceFile: file.Name, Editable: true})
	}

	return refs
}

type pipfileDoc struct {
	Packages    map[string]any `toml:"packages"`
	DevPackages map[string]any `toml:"dev-packages"`
}

// PipfilePaths extracts {path = "..."} entries from the packages and
// dev-packages tables of a Pipfile.
func PipfilePaths(file ManifestFile) ([]PathReference, error) {
	var doc pipfileDoc
	if _, err := toml.Decode(file.Content, &doc); err != nil {
		return nil, errors.NewManifestNotParseable(file.Name, err)
	}

	var refs []PathReference
	for _, table := range []map[string]any{doc.Packages, doc.DevPackages} {
		for _, p := range tablePaths(table) {
			refs = append(refs, PathReference{RawPath: p, SourceFile: file.Name})
		}
	}
	return refs, nil
}

type poetryDoc struct {
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// PoetryPaths extracts {path = "..."} entries from the Poetry dependency
// tables of a pyproject.toml: dependencies, dev-dependencies and every
// group.<name>.dependencies table. A pyproject.toml without a
// [tool.poetry] section yields no references.
func PoetryPaths(file ManifestFile) ([]PathReference, error) {
	var doc poetryDoc
	if _, err := toml.Decode(file.Content, &doc); err != nil {
		return nil, errors.NewManifestNotParseable(file.Name, err)
	}

	poetry := doc.Tool.Poetry
	tables := []map[string]any{poetry.Dependencies, poetry.DevDependencies}

	groups := make([]string, 0, len(poetry.Group))
	for name := range poetry.Group {
		groups = append(groups, name)
	}
	sort.Strings(groups)
	for _, name := range groups {
		tables = append(tables, poetry.Group[name].Dependencies)
	}

	var refs []PathReference
	for _, table := range tables {
		for _, p := range tablePaths(table) {
			refs = append(refs, PathReference{RawPath: p, SourceFile: file.Name, Poetry: true})
		}
	}
	return refs, nil
}

// tablePaths returns the path values of a dependency table in package-name
// order.
func tablePaths(table map[string]any) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	var paths []string
	for _, name := range names {
		spec, ok := table[name].(map[string]any)
		if !ok {
			continue
		}
		if p, ok := spec["path"].(string); ok && p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
