package catmaid

import (
	"context"

	"github.com/flybrains/neuropub/pkg/graph"
)

// annotationGraphResponse is the wire shape of the annotation graph
// endpoint: every annotation and annotated entity as a typed node, and an
// edge for every "annotates" relation.
type annotationGraphResponse struct {
	Nodes []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"nodes"`
	Edges []struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"edges"`
}

// AnnotationGraph fetches the project's full annotation graph. Each call
// decodes a fresh graph from the cached response bytes, so the returned
// graph is owned by the caller.
func (c *Client) AnnotationGraph(ctx context.Context) (*graph.Graph, error) {
	var resp annotationGraphResponse
	if err := c.getJSON(ctx, c.url("annotations/graph", nil), &resp); err != nil {
		return nil, err
	}

	g := graph.New()
	for _, n := range resp.Nodes {
		if err := g.AddNode(graph.Node{ID: n.Name, Kind: graph.KindFromString(n.Type)}); err != nil {
			return nil, err
		}
	}
	for _, e := range resp.Edges {
		if err := g.AddEdge(graph.Edge{From: e.From, To: e.To}); err != nil {
			return nil, err
		}
	}
	return g, nil
}
