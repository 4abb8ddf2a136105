package skeleton

import "slices"

// SiblingOrder selects the tie-break policy for visiting a node's children
// during the depth-first ordering walk.
type SiblingOrder int

const (
	// SiblingSorted visits children in ascending node ID order.
	SiblingSorted SiblingOrder = iota
	// SiblingInsertion visits children in the order they were declared.
	SiblingInsertion
)

// TopoOrder returns a permutation of nodes in which every node appears
// after its parent, produced by a depth-first walk from roots. The walk
// visits children according to order, so the result is deterministic for a
// given input.
//
// Reachability is verified in full before returning: if any node is not
// reachable from the given roots (including nodes on a cycle), TopoOrder
// returns a *DisconnectedTreeError naming the lowest offending node ID and
// no partial order. Runs in O(N) plus the sibling sort.
func TopoOrder(nodes []Node, roots []int64, order SiblingOrder) ([]Node, error) {
	byID := make(map[int64]Node, len(nodes))
	children := make(map[int64][]int64, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		children[n.ParentID] = append(children[n.ParentID], n.ID)
	}

	// Stack-based DFS. Pushing a child list reversed restores its intended
	// order on pop.
	push := func(stack []int64, ids []int64) []int64 {
		ids = slices.Clone(ids)
		if order == SiblingSorted {
			slices.Sort(ids)
		}
		slices.Reverse(ids)
		return append(stack, ids...)
	}

	out := make([]Node, 0, len(nodes))
	visited := make(map[int64]bool, len(nodes))
	stack := push(nil, roots)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		n, ok := byID[id]
		if !ok {
			continue
		}
		visited[id] = true
		out = append(out, n)
		stack = push(stack, children[id])
	}

	if len(out) != len(nodes) {
		var lowest int64
		found := false
		for _, n := range nodes {
			if !visited[n.ID] && (!found || n.ID < lowest) {
				lowest = n.ID
				found = true
			}
		}
		return nil, &DisconnectedTreeError{NodeID: lowest}
	}
	return out, nil
}
