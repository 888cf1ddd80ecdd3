package python

import (
	"path"
	"strings"
)

// Well-known manifest names.
const (
	RequirementsTxt = "requirements.txt"
	RequirementsDir = "requirements"
	Pipfile         = "Pipfile"
	PipfileLock     = "Pipfile.lock"
	PyprojectToml   = "pyproject.toml"
	PyprojectLock   = "pyproject.lock"
	PoetryLock      = "poetry.lock"
	SetupPy         = "setup.py"
	SetupCfg        = "setup.cfg"
	PipConf         = "pip.conf"
	PythonVersion   = ".python-version"
)

// MaxCandidateSize is the largest .txt/.in file considered as a requirement
// file candidate. Larger files are skipped, not reported.
const MaxCandidateSize = 500_000

// ManifestFile is a file produced by discovery.
type ManifestFile struct {
	// Name is the repository-relative, normalized path.
	Name string `json:"name"`
	// Content is the raw file body.
	Content string `json:"content"`
	// SupportFile marks files fetched only to resolve path dependencies or
	// optional configuration.
	SupportFile bool `json:"support_file"`
	// FetchSubmodules records that the file was requested with the
	// submodule hint.
	FetchSubmodules bool `json:"fetch_submodules,omitempty"`
}

// Dir returns the directory containing the file ("" for the repository root).
func (f ManifestFile) Dir() string {
	d := path.Dir(f.Name)
	if d == "." {
		return ""
	}
	return d
}

// Base returns the file name without its directory.
func (f ManifestFile) Base() string { return path.Base(f.Name) }

func (f ManifestFile) isIn() bool { return strings.HasSuffix(f.Name, ".in") }

// Primary returns the non-support files of files, preserving order.
func Primary(files []ManifestFile) []ManifestFile {
	var out []ManifestFile
	for _, f := range files {
		if !f.SupportFile {
			out = append(out, f)
		}
	}
	return out
}

// Support returns the support files of files, preserving order.
func Support(files []ManifestFile) []ManifestFile {
	var out []ManifestFile
	for _, f := range files {
		if f.SupportFile {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the names of files, preserving order.
func Names(files []ManifestFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
