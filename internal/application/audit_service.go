package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

// AuditRequest describes one run.
type AuditRequest struct {
	Roots      []domain.ElementRef
	Kind       domain.DependencyKind
	Track      bool
	WorkDir    string
	OutputDir  string
	ProjectDir string
	Project    string
	Workers    int
	Strict     bool
}

// AuditResult is what a finished run produced.
type AuditResult struct {
	Report *domain.Report
	Stats  domain.RunStats
	Phases []Phase
}

// AuditService runs the license audit pipeline:
// resolve → track → fetch and re-resolve → per element reuse or stage+scan → aggregate.
type AuditService struct {
	catalog *ElementCatalog
	stager  *SourceStager
	scanner domain.LicenseScanner
	cache   domain.ScanCache
	writer  domain.ReportWriter
	policy  *domain.LicensePolicy
	history domain.RunHistory
	git     domain.GitInfo
	log     logger.Logger

	now   func() time.Time
	newID func() string
}

func NewAuditService(
	catalog *ElementCatalog,
	stager *SourceStager,
	scanner domain.LicenseScanner,
	cache domain.ScanCache,
	writer domain.ReportWriter,
	policy *domain.LicensePolicy,
	history domain.RunHistory,
	git domain.GitInfo,
	log logger.Logger,
) *AuditService {
	return &AuditService{
		catalog: catalog,
		stager:  stager,
		scanner: scanner,
		cache:   cache,
		writer:  writer,
		policy:  policy,
		history: history,
		git:     git,
		log:     logger.Named(log, "audit"),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

type outcome uint8

const (
	outcomeHit outcome = iota
	outcomeScanned
	outcomeFailed
)

// Run executes the pipeline. Per-element failures end up in the report; only
// resolution, output and cancellation errors abort the run, and an aborted
// run writes no report.
func (s *AuditService) Run(ctx context.Context, req AuditRequest) (*AuditResult, error) {
	var fsm phaseMachine
	start := s.now()

	// RESOLVE
	if err := fsm.enter(PhaseResolve); err != nil {
		return nil, err
	}
	s.log.Info().Strs("roots", refStrings(req.Roots)).Str("deps", string(req.Kind)).Msg("resolving elements")
	catalog, err := s.catalog.Resolve(ctx, req.Roots, req.Kind)
	if err != nil {
		return nil, err
	}

	// TRACK
	var trackFailed map[domain.ElementRef]string
	if req.Track {
		if err := fsm.enter(PhaseTrack); err != nil {
			return nil, err
		}
		s.log.Info().Int("elements", len(catalog)).Msg("tracking sources")
		if trackFailed, err = s.stager.Track(ctx, domain.Refs(catalog)); err != nil {
			return nil, err
		}
	}

	// FETCH + RERESOLVE
	if err := fsm.enter(PhaseFetch); err != nil {
		return nil, err
	}
	if need := s.fetchList(catalog, req.Track); len(need) > 0 {
		s.log.Info().Int("elements", len(need)).Msg("fetching sources")
		if err := s.stager.Fetch(ctx, need); err != nil {
			return nil, err
		}
	} else {
		s.log.Info().Msg("every element is cached, skipping fetch")
	}
	catalog, err = s.catalog.Resolve(ctx, req.Roots, req.Kind)
	if err != nil {
		return nil, err
	}

	// PER_ELEMENT
	if err := fsm.enter(PhasePerElement); err != nil {
		return nil, err
	}
	s.log.Info().Int("elements", len(catalog)).Int("workers", workerCount(req.Workers)).Msg("scanning elements")
	results, stats, err := s.processAll(ctx, catalog, trackFailed, req)
	if err != nil {
		return nil, err
	}

	// AGGREGATE
	if err := fsm.enter(PhaseAggregate); err != nil {
		return nil, err
	}
	report, err := Aggregate(catalog, results, s.policy)
	if err != nil {
		return nil, domain.OutputError("aggregate", err)
	}
	report.RunID = s.newID()
	report.Project = req.Project
	report.Generated = start.UTC()
	report.Revision = s.revision(req.ProjectDir)

	if err := s.writer.Write(report, req.OutputDir); err != nil {
		return nil, err
	}
	s.recordHistory(req, report, stats)
	_ = fsm.enter(PhaseDone)

	s.log.Info().
		Int("cache_hits", stats.CacheHits).
		Int("scanned", stats.Scanned).
		Int("failed", stats.Failed).
		Int("violations", len(report.Violations)).
		Dur("took", s.now().Sub(start)).
		Msg("report written")

	res := &AuditResult{Report: report, Stats: stats, Phases: fsm.visited}
	if req.Strict && (stats.Failed > 0 || len(report.Violations) > 0) {
		return res, domain.PolicyErrorf("%d elements could not be scanned, %d elements carry denied licenses", stats.Failed, len(report.Violations))
	}
	return res, nil
}

// fetchList picks the elements to fetch. Without tracking the keys from
// RESOLVE are current and cached elements need no sources. Tracking may
// change any key, so then everything is fetched.
func (s *AuditService) fetchList(catalog []domain.Element, tracked bool) []domain.ElementRef {
	if tracked {
		return domain.Refs(catalog)
	}
	var need []domain.ElementRef
	for _, e := range catalog {
		if entry := s.lookup(e); entry == nil {
			need = append(need, e.Ref)
		}
	}
	return need
}

// processAll runs the per-element step on a bounded pool. Results are stored
// by catalog index, so order does not depend on scheduling. Elements whose
// tracking failed are reported as such without touching cache or sources.
func (s *AuditService) processAll(ctx context.Context, catalog []domain.Element, trackFailed map[domain.ElementRef]string, req AuditRequest) ([]domain.ScanResult, domain.RunStats, error) {
	results := make([]domain.ScanResult, len(catalog))
	outcomes := make([]outcome, len(catalog))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(req.Workers))
	for i, e := range catalog {
		if diag, ok := trackFailed[e.Ref]; ok {
			results[i] = domain.FailedResult(e, &domain.StageFailure{Status: domain.StatusTrackFailed, Diagnostic: diag})
			outcomes[i] = outcomeFailed
			continue
		}
		g.Go(func() error {
			res, out, err := s.processElement(gctx, e, req.OutputDir)
			if err != nil {
				return err
			}
			results[i], outcomes[i] = res, out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.RunStats{}, err
	}

	var stats domain.RunStats
	for _, o := range outcomes {
		switch o {
		case outcomeHit:
			stats.CacheHits++
		case outcomeScanned:
			stats.Scanned++
		case outcomeFailed:
			stats.Failed++
		}
	}
	return results, stats, nil
}

// processElement reuses a cache entry or stages, scans and stores. The error
// is only ever a cancellation.
func (s *AuditService) processElement(ctx context.Context, e domain.Element, outputDir string) (domain.ScanResult, outcome, error) {
	log := s.log.With().Str("element", string(e.Ref)).Str("full_key", string(e.Key)).Logger()

	if entry := s.lookup(e); entry != nil {
		log.Debug().Msg("cache hit")
		return entry.Result(s.cache.PayloadPath(entry)), outcomeHit, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.ScanResult{}, 0, err
	}

	log.Debug().Msg("cache miss, staging")
	staged, err := s.stager.Stage(ctx, e)
	if err != nil {
		var f *domain.StageFailure
		if errors.As(err, &f) {
			log.Warn().Str("status", string(f.Status)).Str("diagnostic", f.Diagnostic).Msg("element not scanned")
			return domain.FailedResult(e, f), outcomeFailed, nil
		}
		return domain.ScanResult{}, 0, err
	}
	defer func() {
		if err := staged.Release(); err != nil {
			log.Warn().Err(err).Msg("removing checkout")
		}
	}()

	var scan domain.ScanOutcome
	if staged.NoSources {
		scan = domain.ScanOutcome{Status: domain.StatusNoSources, Licenses: []string{}}
	} else {
		scan, err = s.scanner.Scan(ctx, staged.Dir)
		if err != nil {
			return domain.ScanResult{}, 0, err
		}
	}
	if scan.Status.Failed() {
		f := &domain.StageFailure{Status: scan.Status, Diagnostic: scan.Diagnostic}
		log.Warn().Str("status", string(f.Status)).Str("diagnostic", f.Diagnostic).Msg("element not scanned")
		return domain.FailedResult(e, f), outcomeFailed, nil
	}

	res := domain.ScanResult{
		Ref:      e.Ref,
		Key:      e.Key,
		Status:   scan.Status,
		Licenses: scan.Licenses,
	}
	res.OutputPath, err = s.persist(e, scan, outputDir, log)
	if err != nil {
		return domain.ScanResult{}, 0, err
	}
	log.Debug().Int("files", scan.Files).Int("licenses", len(res.Licenses)).Msg("scanned")
	return res, outcomeScanned, nil
}

// persist stores a fresh outcome and returns where its payload lives. When
// the cache cannot take it, the payload goes straight to the output
// directory so the report still references it.
func (s *AuditService) persist(e domain.Element, scan domain.ScanOutcome, outputDir string, log logger.Logger) (string, error) {
	if e.Key.Cacheable() {
		entry := domain.CacheEntry{
			Ref:        e.Ref,
			Key:        e.Key,
			Status:     scan.Status,
			Diagnostic: scan.Diagnostic,
			Licenses:   scan.Licenses,
		}
		created, err := s.cache.Store(entry, scan.Raw)
		if err == nil {
			if stored := s.lookup(e); stored != nil {
				log.Debug().Bool("created", created).Msg("stored in cache")
				return s.cache.PayloadPath(stored), nil
			}
		}
		log.Warn().Err(err).Msg("could not cache result, using fresh output")
	}
	if scan.Raw == nil {
		return "", nil
	}
	path := filepath.Join(outputDir, e.Ref.FlatName()+"--"+string(e.Key)+".licensecheck_output.txt")
	if err := os.WriteFile(path, scan.Raw, 0o644); err != nil {
		return "", domain.OutputError("payload", fmt.Errorf("writing %s: %w", filepath.Base(path), err))
	}
	return path, nil
}

func (s *AuditService) lookup(e domain.Element) *domain.CacheEntry {
	entry, err := s.cache.Lookup(e.Ref, e.Key)
	if err != nil {
		s.log.Warn().Err(err).Str("element", string(e.Ref)).Msg("cache lookup failed, treating as miss")
		return nil
	}
	return entry
}

func (s *AuditService) revision(projectDir string) domain.ProjectRevision {
	if s.git == nil || projectDir == "" {
		return domain.ProjectRevision{}
	}
	rev, err := s.git.Revision(projectDir)
	if err != nil {
		s.log.Debug().Err(err).Msg("no project revision")
	}
	return rev
}

func (s *AuditService) recordHistory(req AuditRequest, r *domain.Report, stats domain.RunStats) {
	if s.history == nil {
		return
	}
	entry := domain.RunEntry{
		Timestamp:  r.Generated.Format(time.RFC3339),
		RunID:      r.RunID,
		Roots:      req.Roots,
		Deps:       req.Kind,
		Elements:   len(r.Results),
		CacheHits:  stats.CacheHits,
		Scanned:    stats.Scanned,
		Failed:     stats.Failed,
		Violations: len(r.Violations),
		CommitHash: r.Revision.Commit,
	}
	if err := s.history.Save(req.WorkDir, entry); err != nil {
		s.log.Warn().Err(err).Msg("saving run history")
	}
}

func workerCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func refStrings(refs []domain.ElementRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = string(r)
	}
	return out
}
