// Package skeleton models a neuron's spatial tree and its deterministic,
// topologically valid serialization order.
//
// A skeleton is a forest of treenodes: each node has an integer ID, a 3D
// position, a radius, and a parent reference. Serialization requires every
// parent to appear before its children, so downstream readers can rebuild
// the tree in a single pass.
package skeleton

import "fmt"

const (
	// NoParent is the ParentID sentinel marking a root node.
	NoParent int64 = -1

	// UnmeasuredRadius is the Radius sentinel for nodes whose radius has not
	// been measured.
	UnmeasuredRadius float64 = -1
)

// Node is a single treenode in a skeleton.
type Node struct {
	ID       int64
	ParentID int64 // NoParent for roots
	X, Y, Z  float64
	Radius   float64 // UnmeasuredRadius if not measured
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool { return n.ParentID == NoParent }

// Roots returns the IDs of all nodes without a parent, in input order.
func Roots(nodes []Node) []int64 {
	var roots []int64
	for _, n := range nodes {
		if n.IsRoot() {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// DisconnectedTreeError is returned by [TopoOrder] when a node cannot be
// reached from the declared roots. Silently dropping such nodes would
// corrupt the exported table, so ordering fails fast instead.
type DisconnectedTreeError struct {
	NodeID int64 // lowest unreachable node ID
}

// Error implements the error interface.
func (e *DisconnectedTreeError) Error() string {
	return fmt.Sprintf("skeleton node %d is not reachable from the declared roots", e.NodeID)
}
