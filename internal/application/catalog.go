package application

import (
	"context"
	"fmt"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

// ElementCatalog resolves root elements into the ordered list of elements a
// run processes.
type ElementCatalog struct {
	graph  domain.BuildGraph
	ignore domain.IgnoreSet
	log    logger.Logger
}

func NewElementCatalog(graph domain.BuildGraph, ignore domain.IgnoreSet, log logger.Logger) *ElementCatalog {
	return &ElementCatalog{graph: graph, ignore: ignore, log: logger.Named(log, "catalog")}
}

// Resolve queries the dependency closure of roots under kind, keeps the
// manager's order, drops repeated rows and removes ignored elements. Ignored
// elements are still traversed, so their dependencies stay in the catalog.
// Any query failure fails the whole resolution.
func (c *ElementCatalog) Resolve(ctx context.Context, roots []domain.ElementRef, kind domain.DependencyKind) ([]domain.Element, error) {
	rows, err := c.graph.Show(ctx, roots, kind)
	if err != nil {
		return nil, domain.ResolutionError("bst show", err)
	}
	if len(rows) == 0 {
		return nil, domain.ResolutionError("bst show", fmt.Errorf("no elements resolved for %v", roots))
	}

	seen := make(map[domain.ElementRef]bool, len(rows))
	unique := make([]domain.Element, 0, len(rows))
	for _, e := range rows {
		if seen[e.Ref] {
			continue
		}
		seen[e.Ref] = true
		unique = append(unique, e)
	}

	catalog := c.ignore.Apply(unique)
	c.log.Debug().
		Int("resolved", len(unique)).
		Int("ignored", len(unique)-len(catalog)).
		Str("deps", string(kind)).
		Msg("catalog resolved")
	return catalog, nil
}

// ContentKeyOf returns the current full key of one element.
func (c *ElementCatalog) ContentKeyOf(ctx context.Context, ref domain.ElementRef) (domain.ContentKey, error) {
	rows, err := c.graph.Show(ctx, []domain.ElementRef{ref}, domain.DepsNone)
	if err != nil {
		return "", domain.ResolutionError("bst show", err)
	}
	for _, e := range rows {
		if e.Ref == ref {
			return e.Key, nil
		}
	}
	return "", domain.ResolutionError("bst show", fmt.Errorf("element %s not reported", ref))
}
