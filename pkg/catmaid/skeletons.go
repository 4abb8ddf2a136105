package catmaid

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/flybrains/neuropub/pkg/skeleton"
)

// AllSkeletonIDs returns every skeleton ID in the project.
func (c *Client) AllSkeletonIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, c.url("skeletons/", nil), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SkeletonIDsByName returns the IDs of skeletons whose neuron has one of
// the given names. Unknown names match nothing.
func (c *Client) SkeletonIDsByName(ctx context.Context, names []string) ([]int64, error) {
	return c.skeletonIDsBy(ctx, "neurons/by-name", "name", names)
}

// SkeletonIDsByAnnotation returns the IDs of skeletons whose neuron carries
// one of the given annotations. Unknown annotations match nothing.
func (c *Client) SkeletonIDsByAnnotation(ctx context.Context, annotations []string) ([]int64, error) {
	return c.skeletonIDsBy(ctx, "neurons/by-annotation", "name", annotations)
}

func (c *Client) skeletonIDsBy(ctx context.Context, path, param string, values []string) ([]int64, error) {
	var out []int64
	for _, v := range values {
		var resp struct {
			SkeletonIDs []int64 `json:"skeleton_ids"`
		}
		q := url.Values{param: {v}}
		if err := c.getJSON(ctx, c.url(path, q), &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.SkeletonIDs...)
	}
	return out, nil
}

// Skeleton fetches one skeleton with its treenodes, connectors, tags, and
// neuron metadata. Results are memoized for the lifetime of the client;
// every call returns an owned deep copy.
func (c *Client) Skeleton(ctx context.Context, id int64) (*Skeleton, error) {
	if s, ok := c.skeletons.Get(id); ok {
		return s.Clone(), nil
	}

	s, err := c.fetchSkeleton(ctx, id)
	if err != nil {
		return nil, err
	}
	c.skeletons.Add(id, s)
	return s.Clone(), nil
}

// fetchSkeleton retrieves and decodes the compact skeleton representation:
// a three-element array of treenode rows, connector rows, and the tag map.
//
//	[0] nodes:      [id, parent_id, user_id, x, y, z, radius, confidence]
//	[1] connectors: [node_id, connector_id, relation, x, y, z]
//	[2] tags:       {tag: [node_id, ...]}
//
// A null parent_id marks the root and a negative radius means unmeasured;
// both are kept as -1 sentinels.
func (c *Client) fetchSkeleton(ctx context.Context, id int64) (*Skeleton, error) {
	detail, err := c.get(ctx, c.url("skeletons/"+strconv.FormatInt(id, 10)+"/compact-detail", nil))
	if err != nil {
		return nil, err
	}

	s := &Skeleton{ID: id, Tags: make(map[string][]int64)}

	parsed := gjson.ParseBytes(detail)
	for i, row := range parsed.Get("0").Array() {
		cols := row.Array()
		if len(cols) < 7 {
			return nil, fmt.Errorf("skeleton %d: treenode row %d has %d columns, want 7", id, i, len(cols))
		}
		n := skeleton.Node{
			ID:       cols[0].Int(),
			ParentID: skeleton.NoParent,
			X:        cols[3].Float(),
			Y:        cols[4].Float(),
			Z:        cols[5].Float(),
			Radius:   skeleton.UnmeasuredRadius,
		}
		if cols[1].Exists() && cols[1].Type != gjson.Null {
			n.ParentID = cols[1].Int()
		}
		if r := cols[6].Float(); r >= 0 {
			n.Radius = r
		}
		s.Nodes = append(s.Nodes, n)
	}
	for i, row := range parsed.Get("1").Array() {
		cols := row.Array()
		if len(cols) < 6 {
			return nil, fmt.Errorf("skeleton %d: connector row %d has %d columns, want 6", id, i, len(cols))
		}
		s.Connectors = append(s.Connectors, Connector{
			NodeID:      cols[0].Int(),
			ConnectorID: cols[1].Int(),
			IsInput:     cols[2].Int() == 1,
			X:           cols[3].Float(),
			Y:           cols[4].Float(),
			Z:           cols[5].Float(),
		})
	}
	parsed.Get("2").ForEach(func(tag, ids gjson.Result) bool {
		for _, nid := range ids.Array() {
			s.Tags[tag.String()] = append(s.Tags[tag.String()], nid.Int())
		}
		return true
	})

	var meta struct {
		Name        string   `json:"name"`
		Annotations []string `json:"annotations"`
	}
	if err := c.getJSON(ctx, c.url("skeletons/"+strconv.FormatInt(id, 10)+"/neuron", nil), &meta); err != nil {
		return nil, err
	}
	s.Name = meta.Name
	s.Annotations = meta.Annotations

	return s, nil
}
