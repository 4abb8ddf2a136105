package catmaid

import (
	"context"
	"net/url"
)

// Landmarks lists every landmark in the project with its locations.
func (c *Client) Landmarks(ctx context.Context) ([]Landmark, error) {
	var resp []struct {
		ID        int64      `json:"id"`
		Name      string     `json:"name"`
		Locations []Location `json:"locations"`
	}
	q := url.Values{"with_locations": {"true"}}
	if err := c.getJSON(ctx, c.url("landmarks/", q), &resp); err != nil {
		return nil, err
	}

	out := make([]Landmark, len(resp))
	for i, l := range resp {
		out[i] = Landmark{ID: l.ID, Name: l.Name, Locations: l.Locations}
	}
	return out, nil
}

// LandmarkGroups lists every landmark group with its member landmarks and
// locations.
func (c *Client) LandmarkGroups(ctx context.Context) ([]LandmarkGroup, error) {
	var resp []struct {
		ID        int64      `json:"id"`
		Name      string     `json:"name"`
		Members   []int64    `json:"members"`
		Locations []Location `json:"locations"`
	}
	q := url.Values{"with_locations": {"true"}, "with_members": {"true"}}
	if err := c.getJSON(ctx, c.url("landmarks/groups/", q), &resp); err != nil {
		return nil, err
	}

	out := make([]LandmarkGroup, len(resp))
	for i, g := range resp {
		out[i] = LandmarkGroup{ID: g.ID, Name: g.Name, Members: g.Members, Locations: g.Locations}
	}
	return out, nil
}
