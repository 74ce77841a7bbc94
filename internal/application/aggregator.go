package application

import (
	"fmt"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// Aggregate orders results into a report and checks that every catalog
// element has exactly one result in catalog order.
func Aggregate(catalog []domain.Element, results []domain.ScanResult, policy *domain.LicensePolicy) (*domain.Report, error) {
	if len(results) != len(catalog) {
		return nil, fmt.Errorf("aggregate: %d results for %d elements", len(results), len(catalog))
	}
	seen := make(map[domain.ElementRef]bool, len(results))
	for i, res := range results {
		if res.Ref != catalog[i].Ref {
			return nil, fmt.Errorf("aggregate: result %d is for %s, want %s", i, res.Ref, catalog[i].Ref)
		}
		if seen[res.Ref] {
			return nil, fmt.Errorf("aggregate: duplicate result for %s", res.Ref)
		}
		seen[res.Ref] = true
	}
	return &domain.Report{
		Results:    results,
		Violations: policy.Violations(results),
	}, nil
}
