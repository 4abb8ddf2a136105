package reader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/flybrains/neuropub/pkg/graph"
)

// AnnotationReader exposes the exported annotation graph.
type AnnotationReader struct {
	children map[string][]string
}

func openAnnotations(dir string) (*AnnotationReader, error) {
	path := filepath.Join(dir, "annotation_graph.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var children map[string][]string
	if err := json.Unmarshal(data, &children); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &AnnotationReader{children: children}, nil
}

// Names returns every exported annotation, sorted.
func (r *AnnotationReader) Names() []string {
	names := make([]string, 0, len(r.children))
	for name := range r.children {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Children returns the annotations directly annotated by name. The second
// return is false when the annotation was not exported.
func (r *AnnotationReader) Children(name string) ([]string, bool) {
	kids, ok := r.children[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(kids), true
}

// Graph rebuilds the annotation graph with meta edges. Children that were
// not exported as keys still appear as nodes.
func (r *AnnotationReader) Graph() (*graph.Graph, error) {
	g := graph.New()
	add := func(name string) error {
		if g.HasNode(name) {
			return nil
		}
		return g.AddNode(graph.Node{ID: name, Kind: graph.KindAnnotation})
	}
	for _, name := range r.Names() {
		if err := add(name); err != nil {
			return nil, err
		}
	}
	for _, name := range r.Names() {
		for _, child := range r.children[name] {
			if err := add(child); err != nil {
				return nil, err
			}
			if err := g.AddEdge(graph.Edge{From: name, To: child}); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
