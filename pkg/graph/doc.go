// Package graph provides the typed directed graph underlying entity
// selection: annotation, neuron, and volume nodes connected by
// "annotates/contains" edges, with reachability primitives (descendant and
// ancestor closures, induced subgraphs) that tolerate cycles.
//
// The graph is built once per export run from server data, read-only
// afterward, and discarded at process exit. Only its serialized projection
// persists.
package graph
