package github

import (
	"regexp"
	"strings"

	"github.com/matzehuels/pyfetch/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
	// Git ref names: no spaces, control characters or "..".
	validRef = regexp.MustCompile(`^[^\s~^:?*\[\\]{1,255}$`)

	// github.com repository URLs, as typed by users or stored in
	// submodule_git_url.
	repoURLPattern = regexp.MustCompile(`^(?:(?:https?|git)://|git@)github\.com[/:]([^/]+)/([^/@#?]+?)(?:\.git)?/?$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New(errors.ErrCodeInvalidRepo, "owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New(errors.ErrCodeInvalidRepo, "invalid owner %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errors.New(errors.ErrCodeInvalidRepo, "repo is required")
	}
	if !validRepo.MatchString(repo) {
		return errors.New(errors.ErrCodeInvalidRepo, "invalid repo %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", repo)
	}
	return nil
}

// ValidateRef validates a branch, tag or commit SHA. An empty ref selects
// the default branch and is valid.
func ValidateRef(ref string) error {
	if ref == "" {
		return nil
	}
	if !validRef.MatchString(ref) || strings.Contains(ref, "..") {
		return errors.New(errors.ErrCodeInvalidRepo, "invalid ref %q", ref)
	}
	return nil
}

// RepoRef identifies a repository snapshot.
type RepoRef struct {
	Owner string
	Repo  string
	Ref   string // empty for the default branch
}

// String formats the reference as owner/repo[@ref].
func (r RepoRef) String() string {
	s := r.Owner + "/" + r.Repo
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	return s
}

// ParseRepoRef parses "owner/repo", "owner/repo@ref" or a github.com URL
// (optionally followed by "@ref") and validates every part.
func ParseRepoRef(s string) (RepoRef, error) {
	var ref RepoRef
	s = strings.TrimSpace(s)

	prefix := ""
	if strings.HasPrefix(s, "git@") {
		prefix, s = "git@", s[len("git@"):]
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s, ref.Ref = s[:i], s[i+1:]
		if ref.Ref == "" {
			return RepoRef{}, errors.New(errors.ErrCodeInvalidRepo, "empty ref after @")
		}
	}
	s = prefix + s

	if m := repoURLPattern.FindStringSubmatch(s); m != nil {
		ref.Owner, ref.Repo = m[1], m[2]
	} else {
		parts := strings.Split(s, "/")
		if len(parts) != 2 {
			return RepoRef{}, errors.New(errors.ErrCodeInvalidRepo, "invalid repo %q: use owner/repo[@ref]", s)
		}
		ref.Owner, ref.Repo = parts[0], parts[1]
	}

	if err := ValidateOwner(ref.Owner); err != nil {
		return RepoRef{}, err
	}
	if err := ValidateRepo(ref.Repo); err != nil {
		return RepoRef{}, err
	}
	if err := ValidateRef(ref.Ref); err != nil {
		return RepoRef{}, err
	}
	return ref, nil
}
