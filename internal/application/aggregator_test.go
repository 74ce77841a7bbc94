package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bst-license-checker/bst-license-checker/internal/application"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

func TestAggregate(t *testing.T) {
	catalog := []domain.Element{el("a.bst", "ka"), el("b.bst", "kb")}
	ok := []domain.ScanResult{
		{Ref: "a.bst", Key: "ka", Status: domain.StatusCheckoutSucceeded, Licenses: []string{"MIT License"}},
		{Ref: "b.bst", Key: "kb", Status: domain.StatusCheckoutSucceeded, Licenses: []string{"GPL (v2 or later)"}},
	}
	policy, err := domain.NewLicensePolicy([]string{"gpl*"})
	require.NoError(t, err)

	t.Run("in order", func(t *testing.T) {
		r, err := application.Aggregate(catalog, ok, policy)
		require.NoError(t, err)
		assert.Equal(t, ok, r.Results)
		assert.Equal(t, map[domain.ElementRef][]string{"b.bst": {"GPL (v2 or later)"}}, r.Violations)
	})

	t.Run("no policy", func(t *testing.T) {
		r, err := application.Aggregate(catalog, ok, nil)
		require.NoError(t, err)
		assert.Nil(t, r.Violations)
	})

	t.Run("missing result", func(t *testing.T) {
		_, err := application.Aggregate(catalog, ok[:1], policy)
		assert.Error(t, err)
	})

	t.Run("out of order", func(t *testing.T) {
		_, err := application.Aggregate(catalog, []domain.ScanResult{ok[1], ok[0]}, policy)
		assert.ErrorContains(t, err, "result 0 is for b.bst")
	})

	t.Run("duplicate", func(t *testing.T) {
		dup := []domain.Element{el("a.bst", "ka"), el("a.bst", "ka")}
		_, err := application.Aggregate(dup, []domain.ScanResult{ok[0], ok[0]}, policy)
		assert.ErrorContains(t, err, "duplicate")
	})
}
