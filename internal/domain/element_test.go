package domain_test

import (
	"testing"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentKey_Cacheable(t *testing.T) {
	tests := []struct {
		key  domain.ContentKey
		want bool
	}{
		{"3f2a9c", true},
		{"", false},
		{"????????", false},
		{"--------", false},
		{"  ", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Cacheable())
		})
	}
}

func TestParseDependencyKind(t *testing.T) {
	k, err := domain.ParseDependencyKind("RUN")
	require.NoError(t, err)
	assert.Equal(t, domain.DepsRun, k)

	k, err = domain.ParseDependencyKind(" none ")
	require.NoError(t, err)
	assert.Equal(t, domain.DepsNone, k)

	_, err = domain.ParseDependencyKind("build")
	assert.Error(t, err)
}

func TestElementRef_FlatName(t *testing.T) {
	assert.Equal(t, "components-zlib.bst", domain.ElementRef("components/zlib.bst").FlatName())
	assert.Equal(t, "app.bst", domain.ElementRef("app.bst").FlatName())
}

func TestRefs_KeepsOrder(t *testing.T) {
	refs := domain.Refs([]domain.Element{{Ref: "b.bst"}, {Ref: "a.bst"}})
	assert.Equal(t, []domain.ElementRef{"b.bst", "a.bst"}, refs)
}

func TestCheckoutStatus_Failed(t *testing.T) {
	assert.False(t, domain.StatusCheckoutSucceeded.Failed())
	assert.False(t, domain.StatusNoSources.Failed())
	assert.True(t, domain.StatusCheckoutFailed.Failed())
	assert.True(t, domain.StatusFetchFailed.Failed())
	assert.True(t, domain.StatusNotTracked.Failed())
	assert.True(t, domain.StatusTrackFailed.Failed())
	assert.True(t, domain.StatusScanFailed.Failed())

	assert.True(t, domain.StatusNoSources.Cacheable())
	assert.False(t, domain.StatusScanFailed.Cacheable())
	assert.False(t, domain.StatusTrackFailed.Cacheable())
}

func TestStageFailure_Error(t *testing.T) {
	f := domain.NewStageFailure(domain.StatusCheckoutFailed, "exit status %d", 255)
	assert.Equal(t, "checkout failed: exit status 255", f.Error())
	assert.Equal(t, "fetch failed", (&domain.StageFailure{Status: domain.StatusFetchFailed}).Error())
}
