package application

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

const scratchPrefix = "tmp-checkout--"

// Staged is a checked-out source tree. Release removes it.
type Staged struct {
	Dir       string
	NoSources bool
	scratch   string
}

// Release deletes the scratch directory.
func (s *Staged) Release() error {
	if s == nil || s.scratch == "" {
		return nil
	}
	return os.RemoveAll(s.scratch)
}

// SourceStager tracks, fetches and checks out element sources. Failures
// concerning a single element are returned as *domain.StageFailure values.
type SourceStager struct {
	graph   domain.BuildGraph
	workDir string
	log     logger.Logger
}

func NewSourceStager(graph domain.BuildGraph, workDir string, log logger.Logger) *SourceStager {
	return &SourceStager{graph: graph, workDir: workDir, log: logger.Named(log, "stager")}
}

// Track asks the manager to update pinned references and returns the
// diagnostic of every element whose tracking failed. A failed batch is
// retried one element at a time to find the culprits. Only cancellation is
// returned as an error.
func (s *SourceStager) Track(ctx context.Context, refs []domain.ElementRef) (map[domain.ElementRef]string, error) {
	err := s.graph.Track(ctx, refs)
	if err == nil {
		return nil, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	failed := make(map[domain.ElementRef]string)
	if len(refs) == 1 {
		failed[refs[0]] = err.Error()
	} else {
		s.log.Warn().Err(err).Int("elements", len(refs)).Msg("tracking failed, retrying per element")
		for _, ref := range refs {
			if err := s.graph.Track(ctx, []domain.ElementRef{ref}); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				failed[ref] = err.Error()
			}
		}
	}
	for ref, diag := range failed {
		s.log.Warn().Str("element", string(ref)).Str("diagnostic", diag).Msg("tracking failed")
	}
	return failed, nil
}

// Fetch downloads sources. Per-element failures surface through the element
// state of the next resolution.
func (s *SourceStager) Fetch(ctx context.Context, refs []domain.ElementRef) error {
	if err := s.graph.Fetch(ctx, refs); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn().Err(err).Int("elements", len(refs)).Msg("fetch reported failures, continuing")
	}
	return nil
}

// Stage checks the element out into a fresh scratch directory under the work
// directory. The returned error is a *domain.StageFailure or a context error.
func (s *SourceStager) Stage(ctx context.Context, e domain.Element) (*Staged, error) {
	switch e.State {
	case domain.StateNoReference:
		return nil, domain.NewStageFailure(domain.StatusNotTracked, "no source reference; track the element or run with --track")
	case domain.StateFetchNeeded:
		return nil, domain.NewStageFailure(domain.StatusFetchFailed, "sources still missing after fetch")
	}

	scratch, err := os.MkdirTemp(s.workDir, scratchPrefix+e.Ref.FlatName()+"-")
	if err != nil {
		return nil, domain.NewStageFailure(domain.StatusCheckoutFailed, "creating scratch directory: %v", err)
	}
	staged := &Staged{scratch: scratch}

	dir, err := s.graph.Checkout(ctx, e.Ref, scratch)
	switch {
	case err == nil:
		staged.Dir = dir
		return staged, nil
	case errors.Is(err, domain.ErrNoSources):
		staged.NoSources = true
		return staged, nil
	}

	_ = staged.Release()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	// The scratch name is random; keep it out of the report.
	diag := strings.ReplaceAll(err.Error(), scratch, "<checkout>")
	return nil, domain.NewStageFailure(domain.StatusCheckoutFailed, "%s", diag)
}
