package python

// Dedupe merges a discovery result so that each name appears at most once.
// Primary files come first in their original order; a support file is kept
// only when no primary file and no earlier support file has the same name.
// Dedupe is idempotent.
func Dedupe(files []ManifestFile) []ManifestFile {
	seen := make(map[string]bool, len(files))
	out := make([]ManifestFile, 0, len(files))

	for _, f := range files {
		if f.SupportFile || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	for _, f := range files {
		if !f.SupportFile || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out
}
