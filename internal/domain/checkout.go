package domain

import "fmt"

// CheckoutStatus is the per-element outcome recorded in the report.
type CheckoutStatus string

const (
	StatusCheckoutSucceeded CheckoutStatus = "checkout succeeded"
	StatusNoSources         CheckoutStatus = "no sources"
	StatusCheckoutFailed    CheckoutStatus = "checkout failed"
	StatusFetchFailed       CheckoutStatus = "fetch failed"
	StatusNotTracked        CheckoutStatus = "sources not tracked"
	StatusTrackFailed       CheckoutStatus = "track failed"
	StatusScanFailed        CheckoutStatus = "scan failed"
)

// Failed reports whether the element could not be scanned. "no sources" is a
// legitimate outcome for stack and filter elements, not a failure.
func (s CheckoutStatus) Failed() bool {
	switch s {
	case StatusCheckoutSucceeded, StatusNoSources:
		return false
	default:
		return true
	}
}

// Cacheable reports whether the outcome is fully determined by the content key.
// Track, fetch, checkout and scan failures depend on the network or the host and are
// retried on the next run.
func (s CheckoutStatus) Cacheable() bool {
	return !s.Failed()
}

// StageFailure is the typed, non-fatal outcome of staging or scanning one
// element. The pipeline records it in the report and moves on.
type StageFailure struct {
	Status     CheckoutStatus
	Diagnostic string
}

func (f *StageFailure) Error() string {
	if f.Diagnostic == "" {
		return string(f.Status)
	}
	return fmt.Sprintf("%s: %s", f.Status, f.Diagnostic)
}

// NewStageFailure builds a StageFailure with a formatted diagnostic.
func NewStageFailure(status CheckoutStatus, format string, args ...any) *StageFailure {
	return &StageFailure{Status: status, Diagnostic: fmt.Sprintf(format, args...)}
}
