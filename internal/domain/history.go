package domain

// RunEntry is one completed run as recorded in the work directory.
type RunEntry struct {
	Timestamp  string         `json:"timestamp"`
	RunID      string         `json:"run_id"`
	Roots      []ElementRef   `json:"roots"`
	Deps       DependencyKind `json:"deps"`
	Elements   int            `json:"elements"`
	CacheHits  int            `json:"cache_hits"`
	Scanned    int            `json:"scanned"`
	Failed     int            `json:"failed"`
	Violations int            `json:"violations"`
	CommitHash string         `json:"commit_hash,omitempty"`
}

// RunStats counts what the PER_ELEMENT phase did.
type RunStats struct {
	CacheHits int
	Scanned   int
	Failed    int
}
