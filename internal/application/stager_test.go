package application_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bst-license-checker/bst-license-checker/internal/application"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

func newStager(t *testing.T) (*application.SourceStager, *fakeGraph, string) {
	t.Helper()
	g := &fakeGraph{failing: map[domain.ElementRef]bool{}, noSources: map[domain.ElementRef]bool{}}
	work := t.TempDir()
	return application.NewSourceStager(g, work, logger.Nop()), g, work
}

func TestSourceStager_Stage(t *testing.T) {
	s, _, work := newStager(t)

	staged, err := s.Stage(context.Background(), el("components/zlib.bst", "k"))
	require.NoError(t, err)
	assert.False(t, staged.NoSources)
	assert.FileExists(t, filepath.Join(staged.Dir, ownerFile))
	assert.Contains(t, filepath.Base(filepath.Dir(staged.Dir)), "tmp-checkout--components-zlib.bst-")

	require.NoError(t, staged.Release())
	assert.NoDirExists(t, staged.Dir)
	assert.Empty(t, scratchDirs(t, work))
}

func TestSourceStager_ParallelStagesDoNotShareDirectories(t *testing.T) {
	s, _, _ := newStager(t)
	a, err := s.Stage(context.Background(), el("a.bst", "k"))
	require.NoError(t, err)
	defer a.Release()
	b, err := s.Stage(context.Background(), el("a.bst", "k"))
	require.NoError(t, err)
	defer b.Release()

	assert.NotEqual(t, a.Dir, b.Dir)
}

func TestSourceStager_StateFailures(t *testing.T) {
	s, g, _ := newStager(t)

	tests := []struct {
		state domain.ElementState
		want  domain.CheckoutStatus
	}{
		{domain.StateNoReference, domain.StatusNotTracked},
		{domain.StateFetchNeeded, domain.StatusFetchFailed},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			_, err := s.Stage(context.Background(), domain.Element{Ref: "a.bst", Key: "k", State: tt.state})
			var f *domain.StageFailure
			require.ErrorAs(t, err, &f)
			assert.Equal(t, tt.want, f.Status)
		})
	}
	assert.Empty(t, g.checkouts, "no checkout attempted")
}

func TestSourceStager_CheckoutFailureIsSanitized(t *testing.T) {
	s, g, work := newStager(t)
	g.failing["a.bst"] = true

	_, err := s.Stage(context.Background(), el("a.bst", "k"))
	var f *domain.StageFailure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, domain.StatusCheckoutFailed, f.Status)
	assert.Contains(t, f.Diagnostic, "<checkout>")
	assert.NotContains(t, f.Diagnostic, work)
	assert.Empty(t, scratchDirs(t, work))
}

func TestSourceStager_NoSources(t *testing.T) {
	s, g, _ := newStager(t)
	g.noSources["stack.bst"] = true

	staged, err := s.Stage(context.Background(), el("stack.bst", "k"))
	require.NoError(t, err)
	assert.True(t, staged.NoSources)
	assert.Empty(t, staged.Dir)
	require.NoError(t, staged.Release())
}

func TestSourceStager_CancelledCheckout(t *testing.T) {
	s, _, work := newStager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Stage(ctx, el("a.bst", "k"))
	assert.ErrorIs(t, err, context.Canceled)
	entries, _ := os.ReadDir(work)
	assert.Empty(t, entries)
}

func TestSourceStager_TrackAndFetchFailuresAreNotFatal(t *testing.T) {
	s, g, _ := newStager(t)
	g.trackErr = errShow

	failed, err := s.Track(context.Background(), []domain.ElementRef{"a.bst"})
	require.NoError(t, err)
	assert.Equal(t, map[domain.ElementRef]string{"a.bst": errShow.Error()}, failed)
	assert.NoError(t, s.Fetch(context.Background(), []domain.ElementRef{"a.bst"}))
	assert.Len(t, g.tracked, 1)
	assert.Len(t, g.fetched, 1)
}

func TestSourceStager_TrackRetriesFailedBatchPerElement(t *testing.T) {
	s, g, _ := newStager(t)
	g.trackFail = map[domain.ElementRef]bool{"b.bst": true}

	failed, err := s.Track(context.Background(), []domain.ElementRef{"a.bst", "b.bst", "c.bst"})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Contains(t, failed["b.bst"], "no tag matches")
	assert.Equal(t, [][]domain.ElementRef{
		{"a.bst", "b.bst", "c.bst"},
		{"a.bst"},
		{"b.bst"},
		{"c.bst"},
	}, g.tracked)
}

func TestSourceStager_TrackSucceeds(t *testing.T) {
	s, g, _ := newStager(t)

	failed, err := s.Track(context.Background(), []domain.ElementRef{"a.bst", "b.bst"})
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Len(t, g.tracked, 1)
}
