package models

import "time"

// IssueType identifies what a scan found.
type IssueType string

const (
	IssueUnusedImport   IssueType = "unused_import"
	IssueDuplicateBlock IssueType = "duplicate_block"
)

// Issue is a single finding recorded by a scan.
type Issue struct {
	Type       IssueType `json:"type" toon:"type" yaml:"type"`
	File       string    `json:"file" toon:"file" yaml:"file"` // relative to the scan root, forward slashes
	Line       int       `json:"line,omitempty" toon:"line,omitempty" yaml:"line,omitempty"`
	Token      string    `json:"token,omitempty" toon:"token,omitempty" yaml:"token,omitempty"`
	Module     string    `json:"module,omitempty" toon:"module,omitempty" yaml:"module,omitempty"`
	Suggestion string    `json:"suggestion,omitempty" toon:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	// DuplicateOf names the first file seen with identical content.
	DuplicateOf string `json:"duplicate_of,omitempty" toon:"duplicate_of,omitempty" yaml:"duplicate_of,omitempty"`
}

// Stats holds aggregate counters for a scan.
type Stats struct {
	FilesScanned    int `json:"files_scanned" toon:"files_scanned" yaml:"files_scanned"`
	DeadFiles       int `json:"dead_files" toon:"dead_files" yaml:"dead_files"`
	UnusedImports   int `json:"unused_imports" toon:"unused_imports" yaml:"unused_imports"`
	DuplicateBlocks int `json:"duplicate_blocks" toon:"duplicate_blocks" yaml:"duplicate_blocks"`
	StaleConfigs    int `json:"stale_configs" toon:"stale_configs" yaml:"stale_configs"`
	LOCRemoved      int `json:"loc_removed" toon:"loc_removed" yaml:"loc_removed"`
}

// Add accumulates the counters of issue into s.
func (s *Stats) Add(issue Issue) {
	switch issue.Type {
	case IssueUnusedImport:
		s.UnusedImports++
	case IssueDuplicateBlock:
		s.DuplicateBlocks++
	}
}

// PatchSummary records one artifact produced by a patch run.
type PatchSummary struct {
	File         string    `json:"file" toon:"file" yaml:"file"`
	Diff         string    `json:"diff" toon:"diff" yaml:"diff"`
	Edits        int       `json:"edits" toon:"edits" yaml:"edits"`
	Applied      bool      `json:"applied" toon:"applied" yaml:"applied"`
	LinesRemoved int       `json:"lines_removed" toon:"lines_removed" yaml:"lines_removed"`
	LinesChanged int       `json:"lines_changed" toon:"lines_changed" yaml:"lines_changed"`
	CreatedAt    time.Time `json:"created_at" toon:"created_at" yaml:"created_at"`
}

// ScanResult is the persisted outcome of a scan, read back by patch and
// report runs.
type ScanResult struct {
	Repo      string            `json:"repo" toon:"repo" yaml:"repo"`
	Root      string            `json:"root" toon:"root" yaml:"root"`
	ScannedAt time.Time         `json:"scanned_at" toon:"scanned_at" yaml:"scanned_at"`
	Lang      string            `json:"lang,omitempty" toon:"lang,omitempty" yaml:"lang,omitempty"`
	Stats     Stats             `json:"stats" toon:"stats" yaml:"stats"`
	Issues    []Issue           `json:"issues" toon:"issues" yaml:"issues"`
	Files     map[string]string `json:"files,omitempty" toon:"files,omitempty" yaml:"files,omitempty"` // rel path -> content hash
	Patches   []PatchSummary    `json:"patches" toon:"patches" yaml:"patches"`
}

// NewScanResult creates a result with initialized collections.
func NewScanResult(root string) *ScanResult {
	return &ScanResult{
		Root:    root,
		Issues:  []Issue{},
		Files:   make(map[string]string),
		Patches: []PatchSummary{},
	}
}

// AddIssue appends issue and updates the counters.
func (r *ScanResult) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
	r.Stats.Add(issue)
}

// UnusedByFile groups unused-import tokens by file. Both the file order and
// the token order within a file follow first appearance in Issues; repeated
// tokens are collapsed.
func (r *ScanResult) UnusedByFile() ([]string, map[string][]string) {
	var files []string
	tokens := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for _, is := range r.Issues {
		if is.Type != IssueUnusedImport || is.File == "" || is.Token == "" {
			continue
		}
		if seen[is.File] == nil {
			seen[is.File] = make(map[string]bool)
			files = append(files, is.File)
		}
		if seen[is.File][is.Token] {
			continue
		}
		seen[is.File][is.Token] = true
		tokens[is.File] = append(tokens[is.File], is.Token)
	}
	return files, tokens
}

// IssuesOfType returns the issues of type t in recorded order.
func (r *ScanResult) IssuesOfType(t IssueType) []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Type == t {
			out = append(out, is)
		}
	}
	return out
}
