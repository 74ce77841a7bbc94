package domain_test

import (
	"testing"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicensePolicy_Denied(t *testing.T) {
	p, err := domain.NewLicensePolicy([]string{"GPL*", "*affero*", "  "})
	require.NoError(t, err)

	assert.Equal(t, []string{"GPL*", "*affero*"}, p.Patterns())
	assert.True(t, p.Denied("GPL (v2 or later)"))
	assert.True(t, p.Denied("gpl"))
	assert.True(t, p.Denied("GNU Affero General Public License"))
	assert.False(t, p.Denied("MIT License"))
	assert.False(t, p.Denied("LGPL"))
}

func TestLicensePolicy_Violations(t *testing.T) {
	p, err := domain.NewLicensePolicy([]string{"GPL*"})
	require.NoError(t, err)

	results := []domain.ScanResult{
		{Ref: "a.bst", Licenses: []string{"MIT License"}},
		{Ref: "b.bst", Licenses: []string{"GPL (v3)", "BSD (3 clause)", "GPL (v2)"}},
	}
	got := p.Violations(results)
	assert.Equal(t, map[domain.ElementRef][]string{"b.bst": {"GPL (v3)", "GPL (v2)"}}, got)

	assert.Nil(t, p.Violations(results[:1]))
}

func TestLicensePolicy_EmptyDeniesNothing(t *testing.T) {
	p, err := domain.NewLicensePolicy(nil)
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Nil(t, p.Violations([]domain.ScanResult{{Ref: "a.bst", Licenses: []string{"GPL"}}}))

	var nilPolicy *domain.LicensePolicy
	assert.False(t, nilPolicy.Denied("GPL"))
}

func TestLicensePolicy_BadPattern(t *testing.T) {
	_, err := domain.NewLicensePolicy([]string{"GPL["})
	assert.Error(t, err)
}
