package application_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/cache"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/history"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/report"
	"github.com/bst-license-checker/bst-license-checker/internal/application"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

const ownerFile = "OWNER"

// fakeGraph is an in-memory build graph. Show ignores roots unless asked for
// DepsNone, in which case it filters rows down to the roots.
type fakeGraph struct {
	mu         sync.Mutex
	rows       []domain.Element
	afterTrack []domain.Element
	showErr    error
	trackErr   error
	trackFail  map[domain.ElementRef]bool
	failing    map[domain.ElementRef]bool
	noSources  map[domain.ElementRef]bool

	shows     int
	tracked   [][]domain.ElementRef
	fetched   [][]domain.ElementRef
	checkouts []domain.ElementRef
}

func (g *fakeGraph) Show(_ context.Context, roots []domain.ElementRef, kind domain.DependencyKind) ([]domain.Element, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shows++
	if g.showErr != nil {
		return nil, g.showErr
	}
	if kind != domain.DepsNone {
		return append([]domain.Element(nil), g.rows...), nil
	}
	var out []domain.Element
	for _, e := range g.rows {
		for _, r := range roots {
			if e.Ref == r {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (g *fakeGraph) Track(_ context.Context, refs []domain.ElementRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracked = append(g.tracked, refs)
	if g.trackErr != nil {
		return g.trackErr
	}
	for _, r := range refs {
		if g.trackFail[r] {
			return fmt.Errorf("bst source track exited with status 255: %s: no tag matches the tracking branch", r)
		}
	}
	if g.afterTrack != nil {
		g.rows = g.afterTrack
	}
	return nil
}

func (g *fakeGraph) Fetch(_ context.Context, refs []domain.ElementRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetched = append(g.fetched, refs)
	return nil
}

func (g *fakeGraph) Checkout(ctx context.Context, ref domain.ElementRef, dir string) (string, error) {
	g.mu.Lock()
	g.checkouts = append(g.checkouts, ref)
	failing, empty := g.failing[ref], g.noSources[ref]
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if failing {
		return "", fmt.Errorf("bst source exited with status 255: cannot stage %s into %s", ref, dir)
	}
	if empty {
		return "", domain.ErrNoSources
	}
	tree := filepath.Join(dir, ref.FlatName())
	if err := os.MkdirAll(tree, 0o755); err != nil {
		return "", err
	}
	return tree, os.WriteFile(filepath.Join(tree, ownerFile), []byte(ref), 0o644)
}

func (g *fakeGraph) checkoutCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.checkouts)
}

// fakeScanner reports licenses per element, identified by the owner file the
// fake checkout writes.
type fakeScanner struct {
	mu       sync.Mutex
	licenses map[domain.ElementRef][]string
	crash    map[domain.ElementRef]bool
	scans    int
	block    chan struct{}
}

func (s *fakeScanner) Scan(ctx context.Context, dir string) (domain.ScanOutcome, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return domain.ScanOutcome{}, ctx.Err()
		}
	}
	owner, err := os.ReadFile(filepath.Join(dir, ownerFile))
	if err != nil {
		return domain.ScanOutcome{Status: domain.StatusScanFailed, Diagnostic: "source tree is not readable"}, nil
	}
	ref := domain.ElementRef(owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
	if s.crash[ref] {
		return domain.ScanOutcome{Status: domain.StatusScanFailed, Diagnostic: "licensecheck crashed: signal: killed"}, nil
	}
	var raw strings.Builder
	for _, l := range s.licenses[ref] {
		fmt.Fprintf(&raw, "./%s.c\t%s\t\n", ref.FlatName(), l)
	}
	licenses := append([]string{}, s.licenses[ref]...)
	return domain.ScanOutcome{Status: domain.StatusCheckoutSucceeded, Licenses: licenses, Raw: []byte(raw.String()), Files: 1}, nil
}

func (s *fakeScanner) scanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans
}

type harness struct {
	graph   *fakeGraph
	scanner *fakeScanner
	work    string
	ignore  domain.IgnoreSet
	deny    []string
	cache   domain.ScanCache
}

func newHarness(t *testing.T, rows ...domain.Element) *harness {
	t.Helper()
	return &harness{
		graph:   &fakeGraph{rows: rows, failing: map[domain.ElementRef]bool{}, noSources: map[domain.ElementRef]bool{}},
		scanner: &fakeScanner{licenses: map[domain.ElementRef][]string{}, crash: map[domain.ElementRef]bool{}},
		work:    t.TempDir(),
	}
}

func (h *harness) store() *cache.Store { return cache.New(h.work, logger.Nop()) }

func (h *harness) scanCache() domain.ScanCache {
	if h.cache != nil {
		return h.cache
	}
	return h.store()
}

// fullCache reads from the real store but refuses every write.
type fullCache struct {
	store  *cache.Store
	stores int
}

func (c *fullCache) Lookup(ref domain.ElementRef, key domain.ContentKey) (*domain.CacheEntry, error) {
	return c.store.Lookup(ref, key)
}

func (c *fullCache) Store(domain.CacheEntry, []byte) (bool, error) {
	c.stores++
	return false, errors.New("write cache entry: no space left on device")
}

func (c *fullCache) Location(ref domain.ElementRef, key domain.ContentKey) string {
	return c.store.Location(ref, key)
}

func (c *fullCache) PayloadPath(entry *domain.CacheEntry) string { return c.store.PayloadPath(entry) }

func (h *harness) service(t *testing.T) *application.AuditService {
	t.Helper()
	policy, err := domain.NewLicensePolicy(h.deny)
	require.NoError(t, err)
	log := logger.Nop()
	return application.NewAuditService(
		application.NewElementCatalog(h.graph, h.ignore, log),
		application.NewSourceStager(h.graph, h.work, log),
		h.scanner,
		h.scanCache(),
		report.New(report.Options{}, log),
		policy,
		history.New(),
		nil,
		log,
	)
}

// run executes one audit into a fresh output directory.
func (h *harness) run(t *testing.T, ctx context.Context, req application.AuditRequest) (*application.AuditResult, string, error) {
	t.Helper()
	out := t.TempDir()
	req.WorkDir, req.OutputDir = h.work, out
	if req.Kind == "" {
		req.Kind = domain.DepsRun
	}
	res, err := h.service(t).Run(ctx, req)
	return res, out, err
}

func readSummary(t *testing.T, out string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(out, report.SummaryJSON))
	require.NoError(t, err)
	return string(data)
}

func scratchDirs(t *testing.T, work string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(work, "tmp-checkout--*"))
	require.NoError(t, err)
	return matches
}

var errShow = errors.New("Could not find element: nope.bst")
