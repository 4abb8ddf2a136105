package export

import (
	"bufio"
	"fmt"
	"math"
	"os"
)

// writeSTL writes a triangle mesh as ASCII STL. Facet normals are computed
// from the vertex winding order; degenerate faces get a zero normal.
func writeSTL(path, name string, vertices [][3]float64, faces [][3]int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "solid %s\n", name)
	for _, face := range faces {
		for _, idx := range face {
			if idx < 0 || idx >= len(vertices) {
				return fmt.Errorf("face references vertex %d of %d", idx, len(vertices))
			}
		}
		a, b, c := vertices[face[0]], vertices[face[1]], vertices[face[2]]
		n := faceNormal(a, b, c)
		fmt.Fprintf(w, "  facet normal %s %s %s\n", stlFloat(n[0]), stlFloat(n[1]), stlFloat(n[2]))
		fmt.Fprintf(w, "    outer loop\n")
		for _, v := range [][3]float64{a, b, c} {
			fmt.Fprintf(w, "      vertex %s %s %s\n", stlFloat(v[0]), stlFloat(v[1]), stlFloat(v[2]))
		}
		fmt.Fprintf(w, "    endloop\n")
		fmt.Fprintf(w, "  endfacet\n")
	}
	fmt.Fprintf(w, "endsolid %s\n", name)
	return w.Flush()
}

func faceNormal(a, b, c [3]float64) [3]float64 {
	u := [3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := [3]float64{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	n := [3]float64{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
	norm := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if norm == 0 {
		return [3]float64{}
	}
	return [3]float64{n[0] / norm, n[1] / norm, n[2] / norm}
}

func stlFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
