package reader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/flybrains/neuropub/pkg/catmaid"
)

// VolumeReader exposes the volumes section. names.tsv maps published
// volume names to their STL files.
type VolumeReader struct {
	dir   string
	files map[string]string // volume name -> filename
}

func openVolumes(dir string) (*VolumeReader, error) {
	rows, err := readTSV(filepath.Join(dir, "names.tsv"), []string{"filename", "volume_name"})
	if err != nil {
		return nil, err
	}
	files := make(map[string]string, len(rows))
	for _, row := range rows {
		files[row[1]] = row[0]
	}
	return &VolumeReader{dir: dir, files: files}, nil
}

// Names returns every exported volume name, sorted.
func (r *VolumeReader) Names() []string {
	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get parses the mesh for one published volume name.
func (r *VolumeReader) Get(name string) (*catmaid.Volume, error) {
	file, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("no volume named %q", name)
	}
	vertices, faces, err := readSTL(filepath.Join(r.dir, file))
	if err != nil {
		return nil, err
	}
	return &catmaid.Volume{Name: name, Vertices: vertices, Faces: faces}, nil
}

// readSTL parses an ASCII STL file. Identical vertices are merged so faces
// index a shared vertex list.
func readSTL(path string) ([][3]float64, [][3]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var (
		vertices [][3]float64
		faces    [][3]int
		face     []int
		index    = make(map[[3]float64]int)
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		if len(fields) != 4 {
			return nil, nil, fmt.Errorf("%s: malformed vertex line %q", path, sc.Text())
		}
		var v [3]float64
		for i := range 3 {
			v[i], err = strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: bad coordinate %q", path, fields[i+1])
			}
		}
		idx, ok := index[v]
		if !ok {
			idx = len(vertices)
			vertices = append(vertices, v)
			index[v] = idx
		}
		face = append(face, idx)
		if len(face) == 3 {
			faces = append(faces, [3]int{face[0], face[1], face[2]})
			face = face[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(face) != 0 {
		return nil, nil, fmt.Errorf("%s: trailing vertices outside a facet", path)
	}
	return vertices, faces, nil
}
