package python

// FileReport is the serialized form of a discovered file.
type FileReport struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int    `json:"size"`
	SupportFile bool   `json:"support_file"`
	Content     string `json:"content,omitempty"`
}

// Report is the serialized form of a [Result], shared by the CLI's JSON
// output and the HTTP API.
type Report struct {
	RunID      string       `json:"run_id"`
	Directory  string       `json:"directory"`
	Files      []FileReport `json:"files"`
	DurationMS int64        `json:"duration_ms"`
}

// Report converts r. File bodies are included only when withContent is set.
func (r *Result) Report(withContent bool) Report {
	files := make([]FileReport, len(r.Files))
	for i, f := range r.Files {
		files[i] = FileReport{
			Name:        f.Base(),
			Path:        f.Name,
			Size:        len(f.Content),
			SupportFile: f.SupportFile,
		}
		if withContent {
			files[i].Content = f.Content
		}
	}
	return Report{
		RunID:      r.RunID,
		Directory:  r.Directory,
		Files:      files,
		DurationMS: r.Duration.Milliseconds(),
	}
}
