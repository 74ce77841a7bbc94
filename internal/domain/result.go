package domain

import (
	"path/filepath"
	"time"
)

// ScanResult is the outcome for one element in one run, either fresh or
// reconstructed from the cache.
type ScanResult struct {
	Ref        ElementRef
	Key        ContentKey
	Status     CheckoutStatus
	Diagnostic string
	Licenses   []string
	// OutputPath is the raw scanner payload on disk, empty if there is none.
	OutputPath string
	FromCache  bool
}

// FailedResult synthesizes the result for an element that could not be scanned.
func FailedResult(e Element, f *StageFailure) ScanResult {
	return ScanResult{
		Ref:        e.Ref,
		Key:        e.Key,
		Status:     f.Status,
		Diagnostic: f.Diagnostic,
		Licenses:   []string{},
	}
}

// OutputFilename is the basename the payload gets inside the output directory.
func (r ScanResult) OutputFilename() string {
	if r.OutputPath == "" {
		return ""
	}
	return filepath.Base(r.OutputPath)
}

// Report is the ordered outcome of a run: one result per catalog element.
type Report struct {
	RunID      string
	Project    string
	Revision   ProjectRevision
	Generated  time.Time
	Results    []ScanResult
	Violations map[ElementRef][]string
}

// Failures counts the elements that could not be scanned.
func (r *Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Status.Failed() {
			n++
		}
	}
	return n
}

// ProjectRevision describes the VCS state of the BuildStream project, if any.
type ProjectRevision struct {
	Commit string `json:"commit,omitempty"`
	Dirty  bool   `json:"dirty,omitempty"`
}

// DependencyRecord is one entry of the structured summary.
type DependencyRecord struct {
	Name       ElementRef     `json:"dependency-name"`
	FullKey    ContentKey     `json:"full-key"`
	Status     CheckoutStatus `json:"checkout-status"`
	Licenses   []string       `json:"detected-licenses"`
	OutputFile string         `json:"output-filename"`
	Diagnostic string         `json:"diagnostic,omitempty"`
}

// Summary is the document written to license_check_summary.json. It holds no
// timestamps so that re-running on unchanged sources gives identical bytes.
type Summary struct {
	DependencyList    []DependencyRecord      `json:"dependency-list"`
	LicenseViolations map[ElementRef][]string `json:"license-violations,omitempty"`
}

// Summarize converts the report into its structured form, in report order.
func (r *Report) Summarize() Summary {
	records := make([]DependencyRecord, 0, len(r.Results))
	for _, res := range r.Results {
		licenses := res.Licenses
		if licenses == nil {
			licenses = []string{}
		}
		records = append(records, DependencyRecord{
			Name:       res.Ref,
			FullKey:    res.Key,
			Status:     res.Status,
			Licenses:   licenses,
			OutputFile: res.OutputFilename(),
			Diagnostic: res.Diagnostic,
		})
	}
	var violations map[ElementRef][]string
	if len(r.Violations) > 0 {
		violations = r.Violations
	}
	return Summary{DependencyList: records, LicenseViolations: violations}
}
