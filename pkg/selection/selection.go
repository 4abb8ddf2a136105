// Package selection decides, for one export run, which entities are in
// scope and what their canonical exported names are.
//
// Annotations are scoped by closure over declared meta-annotation roots (or
// an explicit name list), then renamed to totality. Other entity kinds
// (neurons, volumes) are extracted by tri-partition: the descendant closure
// from declared roots restricted to annotations plus the target kind,
// intersected with the ancestors of the kind-typed entities inside that
// closure. The intersection keeps unrelated annotation branches from
// pulling in unrelated entities.
package selection

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/flybrains/neuropub/pkg/graph"
	"github.com/flybrains/neuropub/pkg/rename"
)

// Annotations selects the annotation names to export and their rename
// mapping.
//
// The scope is determined by names:
//   - ScopeAll: every annotation node in the graph.
//   - ScopeNone: the unbounded descendant closure of metaRoots, plus every
//     name already keyed in seed.
//   - ScopeNames: exactly those names.
//
// Names that do not correspond to any graph node are not an error; they
// become childless entries (users may rename entities that turn out to
// have no children). The returned child map is keyed by canonical name;
// each value lists the canonical names of in-scope direct successors in
// sorted order. An empty scope yields an empty map, not an error.
//
// Every key and value of the child map is guaranteed to be a key of the
// returned rename map.
func Annotations(g *graph.Graph, metaRoots []string, names Scope, seed rename.Map) (map[string][]string, rename.Map) {
	ann := g.AnnotationOnly()

	var scope mapset.Set[string]
	switch {
	case names.IsAll():
		scope = mapset.NewThreadUnsafeSet(ann.NodeIDs()...)
	case names.IsNone():
		scope = ann.Descendants(metaRoots, graph.TraverseOptions{MaxDepth: graph.Unbounded})
		for orig := range seed {
			scope.Add(orig)
		}
	default:
		scope = mapset.NewThreadUnsafeSet(names.Names()...)
	}

	inScope := scope.ToSlice()
	slices.Sort(inScope)
	renames := rename.Fill(seed, inScope)

	children := make(map[string][]string, len(inScope))
	for _, orig := range inScope {
		var kids []string
		for _, s := range ann.Successors(orig) {
			if scope.Contains(s) {
				kids = append(kids, renames.Canonical(s))
			}
		}
		slices.Sort(kids)
		children[renames.Canonical(orig)] = kids
	}
	return children, renames
}

// Typed extracts the subgraph of entities of the given kind that are in
// scope under the declared root annotations: reachable from roots through
// annotation/kind-typed nodes, and able to reach at least one kind-typed
// entity. Returns the induced subgraph over the intersection; entities of
// the target kind within it are the in-scope set (see [TypedIDs]).
//
// An empty root set means no filtering was requested and yields an empty
// graph, not an error.
func Typed(g *graph.Graph, roots []string, kind graph.Kind) *graph.Graph {
	reach := g.Descendants(roots, graph.TraverseOptions{
		MaxDepth: graph.Unbounded,
		Predicate: func(n graph.Node) bool {
			return n.Kind == graph.KindAnnotation || n.Kind == kind
		},
	})

	sub := g.Induced(reach)
	leaves := TypedIDs(sub, kind)
	keep := reach.Intersect(sub.Ancestors(leaves))
	return sub.Induced(keep)
}

// TypedIDs returns the sorted IDs of all nodes of the given kind.
func TypedIDs(g *graph.Graph, kind graph.Kind) []string {
	var ids []string
	for _, n := range g.Nodes() {
		if n.Kind == kind {
			ids = append(ids, n.ID)
		}
	}
	slices.Sort(ids)
	return ids
}
