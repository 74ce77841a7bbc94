package domain

import "bitbucket.org/creachadair/stringset"

// IgnoreSet holds the elements excluded from a run. The zero value is empty.
type IgnoreSet struct {
	refs stringset.Set
}

// NewIgnoreSet builds a set from element identifiers.
func NewIgnoreSet(refs ...ElementRef) IgnoreSet {
	s := stringset.New()
	for _, r := range refs {
		s.Add(string(r))
	}
	return IgnoreSet{refs: s}
}

// Contains reports whether ref is ignored.
func (s IgnoreSet) Contains(ref ElementRef) bool {
	return s.refs.Contains(string(ref))
}

// Len returns the number of ignored identifiers.
func (s IgnoreSet) Len() int { return s.refs.Len() }

// Elements returns the ignored identifiers in sorted order.
func (s IgnoreSet) Elements() []ElementRef {
	names := s.refs.Elements()
	refs := make([]ElementRef, len(names))
	for i, n := range names {
		refs[i] = ElementRef(n)
	}
	return refs
}

// Apply removes ignored elements from the catalog, keeping order.
func (s IgnoreSet) Apply(catalog []Element) []Element {
	if s.Len() == 0 {
		return catalog
	}
	kept := make([]Element, 0, len(catalog))
	for _, e := range catalog {
		if !s.Contains(e.Ref) {
			kept = append(kept, e)
		}
	}
	return kept
}
