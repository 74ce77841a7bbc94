package domain

import (
	"context"
	"errors"
)

// ErrNoSources is returned by BuildGraph.Checkout when the element has nothing
// to check out (stack and filter elements, for example).
var ErrNoSources = errors.New("element has no sources")

// BuildGraph is the build-graph manager (BuildStream) as seen by the pipeline.
type BuildGraph interface {
	// Show lists roots and their dependencies under kind, in the manager's
	// display order, with their current full keys and states.
	Show(ctx context.Context, roots []ElementRef, kind DependencyKind) ([]Element, error)
	// Track updates the pinned source references of refs.
	Track(ctx context.Context, refs []ElementRef) error
	// Fetch downloads sources for refs, continuing past individual failures.
	Fetch(ctx context.Context, refs []ElementRef) error
	// Checkout materializes the sources of ref under dir and returns the
	// directory holding the source tree.
	Checkout(ctx context.Context, ref ElementRef, dir string) (string, error)
}

// ScanOutcome is the normalized result of running the license tool once.
type ScanOutcome struct {
	Status     CheckoutStatus
	Diagnostic string
	Licenses   []string
	Raw        []byte
	Files      int
}

// LicenseScanner runs the license detection tool against a staged tree.
// Tool crashes are reported through the outcome status, not the error; the
// error is reserved for cancellation.
type LicenseScanner interface {
	Scan(ctx context.Context, dir string) (ScanOutcome, error)
}

// ScanCache is the durable store of scan outcomes keyed by (element, full key).
type ScanCache interface {
	// Lookup returns (nil, nil) when no entry exists for exactly ref and key.
	Lookup(ref ElementRef, key ContentKey) (*CacheEntry, error)
	// Store persists entry together with its raw payload. It reports false
	// when an entry for the key already existed; the existing one is kept.
	Store(entry CacheEntry, raw []byte) (bool, error)
	// Location is the deterministic path of the entry for ref and key.
	Location(ref ElementRef, key ContentKey) string
	// PayloadPath is the absolute path of the entry's raw payload.
	PayloadPath(entry *CacheEntry) string
}

// ReportWriter serializes a finished report into the output directory.
type ReportWriter interface {
	Write(report *Report, outputDir string) error
}

// RunHistory records one line per completed run in the work directory.
type RunHistory interface {
	Save(workDir string, entry RunEntry) error
	Load(workDir string) ([]RunEntry, error)
}

// GitInfo reads the revision of the BuildStream project checkout.
type GitInfo interface {
	Revision(projectPath string) (ProjectRevision, error)
}

// ConfigLoader loads the tool configuration file.
type ConfigLoader interface {
	Load(path string) (ToolConfig, error)
}
