package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs are unique across the whole graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Kind discriminates the entity types a node can carry. The kind is fixed
// at creation and determines which export section an entity belongs to.
type Kind int

const (
	// KindAnnotation represents a text label. Annotations can annotate other
	// annotations, so cycles among them are possible.
	KindAnnotation Kind = iota
	// KindNeuron represents a reconstructed neuron (skeleton).
	KindNeuron
	// KindVolume represents a volumetric region of interest (mesh).
	KindVolume
)

// String returns the serialized name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNeuron:
		return "neuron"
	case KindVolume:
		return "volume"
	default:
		return "annotation"
	}
}

// KindFromString parses a serialized kind name. Unknown strings map to
// KindAnnotation, matching the server's default node type.
func KindFromString(s string) Kind {
	switch s {
	case "neuron":
		return KindNeuron
	case "volume":
		return KindVolume
	default:
		return KindAnnotation
	}
}

// Node is a vertex in the annotation graph: an opaque string identifier
// (the entity's name on the server) plus a fixed type tag.
type Node struct {
	ID   string // Unique identifier (entity name)
	Kind Kind   // Entity type, fixed at creation
}

// Edge is a directed connection meaning "From annotates/contains To".
// Meta is true when both endpoints are annotations (a meta-annotation).
type Edge struct {
	From string
	To   string
	Meta bool
}

// Graph is a general typed directed graph. Unlike a DAG, cycles are
// permitted: annotations may annotate each other mutually, and traversal
// uses visited sets to terminate.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	nodes    map[string]Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> successor IDs
	incoming map[string][]string // nodeID -> predecessor IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the ID is empty, or ErrDuplicateNodeID if a
// node with the same ID already exists.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.nodes[n.ID] = n
	return nil
}

// AddEdge adds a directed edge between two existing nodes. The Meta flag is
// derived from the endpoint kinds, regardless of what the caller set.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing.
func (g *Graph) AddEdge(e Edge) error {
	src, ok := g.nodes[e.From]
	if !ok {
		return ErrUnknownSourceNode
	}
	dst, ok := g.nodes[e.To]
	if !ok {
		return ErrUnknownTargetNode
	}
	e.Meta = src.Kind == KindAnnotation && dst.Kind == KindAnnotation
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID and true, or a zero node and
// false if not found.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in the graph. The order is not guaranteed.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// NodeIDs returns the IDs of all nodes in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the IDs of nodes this node has edges to.
// The returned slice should not be modified.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the IDs of nodes that have edges to this node.
// The returned slice should not be modified.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// AnnotationOnly returns a copy of the graph with every neuron- and
// volume-typed node stripped, along with all incident edges. Annotations
// never need other entity kinds to determine their own closure.
func (g *Graph) AnnotationOnly() *Graph {
	out := New()
	for _, n := range g.nodes {
		if n.Kind == KindAnnotation {
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
