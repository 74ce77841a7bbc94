package domain

import (
	"fmt"
	"strings"
)

// ElementRef identifies a build element, e.g. "components/zlib.bst".
type ElementRef string

// ContentKey is the full key the build-graph manager reports for an element.
// It changes whenever the element's sources, configuration or dependencies change.
type ContentKey string

// Cacheable reports whether the key identifies real content. BuildStream prints
// a placeholder of '?' or '-' characters when it cannot compute a key yet
// (for example before the element has been tracked).
func (k ContentKey) Cacheable() bool {
	s := strings.Trim(string(k), "?-")
	return strings.TrimSpace(s) != ""
}

// DependencyKind selects how much of the dependency closure is resolved.
type DependencyKind string

const (
	DepsNone DependencyKind = "none"
	DepsRun  DependencyKind = "run"
	DepsAll  DependencyKind = "all"
)

// ValidDependencyKinds enumerates the accepted --deps values.
var ValidDependencyKinds = []DependencyKind{DepsNone, DepsRun, DepsAll}

// ParseDependencyKind accepts "none", "run" or "all" (case-insensitive).
func ParseDependencyKind(s string) (DependencyKind, error) {
	k := DependencyKind(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidDependencyKinds {
		if k == valid {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dependency kind %q (valid: none, run, all)", s)
}

// ElementState is the state column of `bst show`.
type ElementState string

const (
	StateNoReference ElementState = "no reference"
	StateFetchNeeded ElementState = "fetch needed"
	StateBuildable   ElementState = "buildable"
	StateCached      ElementState = "cached"
	StateWaiting     ElementState = "waiting"
)

// Element is one row of the resolved catalog.
type Element struct {
	Ref   ElementRef
	Key   ContentKey
	State ElementState
}

// Refs returns the element identifiers in order.
func Refs(elements []Element) []ElementRef {
	refs := make([]ElementRef, len(elements))
	for i, e := range elements {
		refs[i] = e.Ref
	}
	return refs
}

// FlatName turns an element path into a single filename component.
func (r ElementRef) FlatName() string {
	return strings.ReplaceAll(string(r), "/", "-")
}
