package domain

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// LicensePolicy flags detected licenses that match any deny pattern.
// Patterns are globs matched case-insensitively against the license name as
// the scanner reports it, e.g. "GPL*" or "*Affero*".
type LicensePolicy struct {
	patterns []string
	globs    []glob.Glob
}

// NewLicensePolicy compiles deny patterns. An empty list denies nothing.
func NewLicensePolicy(patterns []string) (*LicensePolicy, error) {
	p := &LicensePolicy{}
	for _, raw := range patterns {
		pat := strings.TrimSpace(raw)
		if pat == "" {
			continue
		}
		g, err := glob.Compile(strings.ToLower(pat))
		if err != nil {
			return nil, fmt.Errorf("deny pattern %q: %w", pat, err)
		}
		p.patterns = append(p.patterns, pat)
		p.globs = append(p.globs, g)
	}
	return p, nil
}

// Empty reports whether the policy has no patterns.
func (p *LicensePolicy) Empty() bool {
	return p == nil || len(p.globs) == 0
}

// Patterns returns the compiled patterns as written.
func (p *LicensePolicy) Patterns() []string {
	if p == nil {
		return nil
	}
	return p.patterns
}

// Denied reports whether a single license name matches a deny pattern.
func (p *LicensePolicy) Denied(license string) bool {
	if p.Empty() {
		return false
	}
	l := strings.ToLower(license)
	for _, g := range p.globs {
		if g.Match(l) {
			return true
		}
	}
	return false
}

// Violations returns, per element, the denied licenses in detection order.
// Elements without violations are absent; nil when nothing matched.
func (p *LicensePolicy) Violations(results []ScanResult) map[ElementRef][]string {
	if p.Empty() {
		return nil
	}
	var out map[ElementRef][]string
	for _, r := range results {
		for _, l := range r.Licenses {
			if !p.Denied(l) {
				continue
			}
			if out == nil {
				out = make(map[ElementRef][]string)
			}
			out[r.Ref] = append(out[r.Ref], l)
		}
	}
	return out
}
