package python

import (
	"context"
	"strings"

	"github.com/matzehuels/pyfetch/pkg/repo"
)

// RequiredFilesMessage describes what a repository must contain for
// discovery to succeed.
const RequiredFilesMessage = "Repo must contain a requirements.txt, setup.py, setup.cfg, pyproject.toml, or a Pipfile."

// RequiredFilesIn reports whether a shallow directory listing contains any
// recognizable Python manifest: a .txt or .in file, a requirements
// directory, a Pipfile, pyproject.toml, setup.py or setup.cfg.
func RequiredFilesIn(names []string) bool {
	for _, name := range names {
		if strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".in") {
			return true
		}
		switch name {
		case RequirementsDir, Pipfile, PyprojectToml, SetupPy, SetupCfg:
			return true
		}
	}
	return false
}

// Detect lists dir and applies [RequiredFilesIn] to the entry names.
// A missing directory is reported as (false, nil).
func Detect(ctx context.Context, tree repo.Tree, dir string) (bool, error) {
	entries, err := tree.ListDirectory(ctx, repo.Clean(dir))
	if repo.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return RequiredFilesIn(entryNames(entries)), nil
}

func entryNames(entries []repo.Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
