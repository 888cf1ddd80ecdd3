package python

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// PEP 508 building blocks for a single requirements.txt line.
const (
	reqName        = `[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`
	reqExtra       = `[A-Za-z0-9._-]+`
	reqExtras      = `\[\s*` + reqExtra + `(?:\s*,\s*` + reqExtra + `)*\s*\]`
	reqComparison  = `(?:===|==|>=|<=|~=|!=|<|>)`
	reqVersion     = `[A-Za-z0-9*+!._-]+`
	reqSpecifier   = reqComparison + `\s*` + reqVersion
	reqSpecifiers  = reqSpecifier + `(?:\s*,\s*` + reqSpecifier + `)*`
	reqURL         = `@\s*\S+`
	reqMarkers     = `;[^#]*`
	reqHash        = `--hash=[^\s\\]+`
	reqLinePattern = `^\s*` + reqName + `\s*(?:` + reqExtras + `)?\s*` +
		`(?:\(?\s*` + reqSpecifiers + `\s*\)?|` + reqURL + `)?\s*` +
		`(?:` + reqMarkers + `)?` +
		`(?:\s*` + reqHash + `)*\s*\\?\s*(?:#.*)?$`
)

var (
	validRequirementLine = regexp.MustCompile(reqLinePattern)

	directivePrefixes = []string{"#", "-r ", "-c ", "-e ", "--"}
)

// IsRequirementLine reports whether line is a PEP 508 style requirement,
// optionally followed by environment markers, hashes and a comment.
func IsRequirementLine(line string) bool {
	return validRequirementLine.MatchString(line)
}

// IsRequirementsFile reports whether a .txt/.in file looks like a pip
// requirements file. relName is the file name relative to the configured
// directory: any name containing "requirements" qualifies. Otherwise every
// non-blank line must be a comment, an include/constraint/editable/option
// directive, or a requirement line. Content that is not valid UTF-8 never
// qualifies.
func IsRequirementsFile(relName, content string) bool {
	if !utf8.ValidString(content) {
		return false
	}
	if strings.Contains(relName, "requirements") {
		return true
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || hasDirectivePrefix(trimmed) {
			continue
		}
		if !IsRequirementLine(trimmed) {
			return false
		}
	}
	return true
}

func hasDirectivePrefix(line string) bool {
	for _, p := range directivePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
