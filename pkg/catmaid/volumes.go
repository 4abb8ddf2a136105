package catmaid

import (
	"context"
	"strconv"
)

// Volumes lists every volume in the project, without meshes.
func (c *Client) Volumes(ctx context.Context) ([]VolumeInfo, error) {
	var infos []VolumeInfo
	if err := c.getJSON(ctx, c.url("volumes/", nil), &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// volumeResponse is the wire shape of a single volume with its mesh.
type volumeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Mesh struct {
		Vertices [][3]float64 `json:"vertices"`
		Faces    [][3]int     `json:"faces"`
	} `json:"mesh"`
}

// Volume fetches one volume including its triangle mesh.
func (c *Client) Volume(ctx context.Context, id int64) (*Volume, error) {
	var resp volumeResponse
	if err := c.getJSON(ctx, c.url("volumes/"+strconv.FormatInt(id, 10)+"/", nil), &resp); err != nil {
		return nil, err
	}
	return &Volume{
		ID:       resp.ID,
		Name:     resp.Name,
		Vertices: resp.Mesh.Vertices,
		Faces:    resp.Mesh.Faces,
	}, nil
}
