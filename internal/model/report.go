package model

import "time"

// LinkResult is the outcome of checking one unique link target.
type LinkResult struct {
	Link

	// Resolved is what was actually checked: the URL for external links,
	// or the target with trailing periods stripped for local links.
	Resolved string `json:"resolved"`

	// FoundAt is the path that exists for a local link that was found.
	FoundAt string `json:"found_at,omitempty"`

	// OK is true if the target is reachable or exists.
	OK bool `json:"ok"`

	// Skipped is true if the target matched an ignore pattern and was not checked.
	Skipped bool `json:"skipped,omitempty"`

	// StatusCode is the HTTP status of an external check, 0 if no response.
	StatusCode int `json:"status_code,omitempty"`

	// Error describes why the check failed, if it did.
	Error string `json:"error,omitempty"`
}

// Broken reports whether the target was checked and found missing or unreachable.
func (r LinkResult) Broken() bool {
	return !r.OK && !r.Skipped
}

// FileReport holds everything found while checking one PDF document.
type FileReport struct {
	// Document is the PDF path as given.
	Document string `json:"document"`

	// BaseDir is the directory local links were resolved against first.
	BaseDir string `json:"base_dir"`

	// Pages is the page count of the document.
	Pages int `json:"pages"`

	// OpenError is set when the PDF could not be opened or parsed.
	// No links are checked in that case.
	OpenError string `json:"open_error,omitempty"`

	// Malformed lists annotations whose action could not be interpreted.
	Malformed []MalformedAnnotation `json:"malformed,omitempty"`

	// Results holds one entry per unique link target, in order of first appearance.
	Results []LinkResult `json:"results"`

	// ExternalURLs lists every external target, broken or not, in order of
	// first appearance.
	ExternalURLs []string `json:"external_urls,omitempty"`

	// CheckedAt is when the check started.
	CheckedAt time.Time `json:"checked_at"`

	// Duration is how long the check took.
	Duration time.Duration `json:"duration"`
}

// NewFileReport creates an empty report for document.
func NewFileReport(document, baseDir string) *FileReport {
	return &FileReport{
		Document:  document,
		BaseDir:   baseDir,
		Results:   make([]LinkResult, 0),
		CheckedAt: time.Now(),
	}
}

// AddResult appends a result and tracks external URLs.
func (r *FileReport) AddResult(res LinkResult) {
	r.Results = append(r.Results, res)
	if res.Kind == LinkKindExternal {
		r.ExternalURLs = append(r.ExternalURLs, res.Target)
	}
}

// OK is true iff the document opened, has no malformed annotation and no
// broken link.
func (r *FileReport) OK() bool {
	return r.OpenError == "" && len(r.Malformed) == 0 && r.BrokenCount() == 0
}

// Broken returns the results of broken links.
func (r *FileReport) Broken() []LinkResult {
	broken := make([]LinkResult, 0)
	for _, res := range r.Results {
		if res.Broken() {
			broken = append(broken, res)
		}
	}
	return broken
}

// BrokenCount returns the number of broken links.
func (r *FileReport) BrokenCount() int {
	return r.count(func(res LinkResult) bool { return res.Broken() })
}

// SkippedCount returns the number of ignored links.
func (r *FileReport) SkippedCount() int {
	return r.count(func(res LinkResult) bool { return res.Skipped })
}

// ExternalCount returns the number of unique external targets.
func (r *FileReport) ExternalCount() int {
	return r.count(func(res LinkResult) bool { return res.Kind == LinkKindExternal })
}

// LocalCount returns the number of unique local targets.
func (r *FileReport) LocalCount() int {
	return r.count(func(res LinkResult) bool { return res.Kind == LinkKindLocal })
}

func (r *FileReport) count(match func(LinkResult) bool) int {
	n := 0
	for _, res := range r.Results {
		if match(res) {
			n++
		}
	}
	return n
}

// RunReport collects the file reports of one program run.
type RunReport struct {
	// Version is the pdflinkcheck version that produced the report.
	Version string `json:"version"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// Files are the reports of the checked documents, in check order.
	Files []*FileReport `json:"files"`
}

// NewRunReport creates an empty run report.
func NewRunReport(version string) *RunReport {
	return &RunReport{
		Version:   version,
		StartedAt: time.Now(),
		Files:     make([]*FileReport, 0),
	}
}

// Add appends a file report.
func (r *RunReport) Add(f *FileReport) {
	r.Files = append(r.Files, f)
}

// OK is true iff every checked document passed.
func (r *RunReport) OK() bool {
	for _, f := range r.Files {
		if !f.OK() {
			return false
		}
	}
	return true
}

// FailedCount returns the number of documents that did not pass.
func (r *RunReport) FailedCount() int {
	n := 0
	for _, f := range r.Files {
		if !f.OK() {
			n++
		}
	}
	return n
}
