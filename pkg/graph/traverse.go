package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Unbounded disables the depth limit in [TraverseOptions].
const Unbounded = -1

// TraverseOptions configures a Descendants traversal.
type TraverseOptions struct {
	// MaxDepth bounds the closure to nodes at most MaxDepth hops from a
	// root. Unbounded (or any negative value) removes the limit. A depth of
	// 0 returns only the roots themselves.
	MaxDepth int

	// Predicate filters nodes during expansion. A node that fails the
	// predicate is excluded from the result and never expanded through.
	// Roots are subject to the predicate too. Nil accepts every node.
	Predicate func(Node) bool
}

// Descendants computes the closure of nodes reachable from roots over
// outgoing edges. Roots that exist and pass the predicate are always
// included. IDs that do not name a graph node contribute nothing: callers
// work with name sets, not required membership.
//
// The visited set is marked on pop, not on push, so a node reachable along
// several paths of different lengths is recorded at its shallowest depth
// and cycles terminate. Runs in O(V+E) over the visited region. An empty
// root set yields an empty result.
func (g *Graph) Descendants(roots []string, opts TraverseOptions) mapset.Set[string] {
	out := mapset.NewThreadUnsafeSet[string]()
	if opts.MaxDepth < 0 {
		opts.MaxDepth = Unbounded
	}

	type item struct {
		id    string
		depth int
	}
	queue := make([]item, 0, len(roots))
	for _, r := range roots {
		if g.HasNode(r) {
			queue = append(queue, item{id: r})
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if out.Contains(cur.id) {
			continue
		}
		n := g.nodes[cur.id]
		if opts.Predicate != nil && !opts.Predicate(n) {
			continue
		}
		out.Add(cur.id)
		if opts.MaxDepth != Unbounded && cur.depth >= opts.MaxDepth {
			continue
		}
		for _, s := range g.outgoing[cur.id] {
			if !out.Contains(s) {
				queue = append(queue, item{id: s, depth: cur.depth + 1})
			}
		}
	}
	return out
}

// Ancestors computes the closure of nodes that can reach any of the given
// leaves over incoming edges, at unbounded depth and without a predicate.
// The leaves themselves are included. Unknown IDs contribute nothing.
func (g *Graph) Ancestors(leaves []string) mapset.Set[string] {
	out := mapset.NewThreadUnsafeSet[string]()
	stack := make([]string, 0, len(leaves))
	for _, l := range leaves {
		if g.HasNode(l) {
			stack = append(stack, l)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out.Contains(id) {
			continue
		}
		out.Add(id)
		for _, p := range g.incoming[id] {
			if !out.Contains(p) {
				stack = append(stack, p)
			}
		}
	}
	return out
}

// Induced returns the subgraph restricted to the given node set: only the
// named nodes, and only edges with both endpoints in the set.
func (g *Graph) Induced(ids mapset.Set[string]) *Graph {
	out := New()
	for _, id := range ids.ToSlice() {
		if n, ok := g.nodes[id]; ok {
			_ = out.AddNode(n)
		}
	}
	for _, e := range g.edges {
		if out.HasNode(e.From) && out.HasNode(e.To) {
			_ = out.AddEdge(e)
		}
	}
	return out
}
