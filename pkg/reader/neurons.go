package reader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/flybrains/neuropub/pkg/catmaid"
	"github.com/flybrains/neuropub/pkg/skeleton"
)

// Neuron is one exported neuron loaded back from disk. Nodes keep the file
// order, which is the exporter's deterministic topological order.
type Neuron struct {
	ID          int64
	Name        string
	Annotations []string
	SomaID      int64 // skeleton.NoParent when no soma is labeled
	Nodes       []skeleton.Node
	Connectors  []catmaid.Connector
	Tags        map[string][]int64
}

// NeuronReader exposes the neurons section. Neuron files are parsed on
// demand; name and annotation indexes are built from the metadata files on
// first lookup.
type NeuronReader struct {
	dir    string
	ids    []int64
	byName map[string]int64
	byAnn  map[string][]int64
}

func openNeurons(dir string) (*NeuronReader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(ent.Name(), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return &NeuronReader{dir: dir, ids: ids}, nil
}

// IDs returns every exported skeleton ID, sorted.
func (r *NeuronReader) IDs() []int64 { return slices.Clone(r.ids) }

// Get loads one neuron by skeleton ID.
func (r *NeuronReader) Get(id int64) (*Neuron, error) {
	dir := filepath.Join(r.dir, strconv.FormatInt(id, 10))

	var meta struct {
		Annotations []string `json:"annotations"`
		ID          int64    `json:"id"`
		Name        string   `json:"name"`
		SomaID      *int64   `json:"soma_id"`
	}
	if err := readJSON(filepath.Join(dir, "metadata.json"), &meta); err != nil {
		return nil, err
	}

	n := &Neuron{
		ID:          meta.ID,
		Name:        meta.Name,
		Annotations: meta.Annotations,
		SomaID:      skeleton.NoParent,
	}
	if meta.SomaID != nil {
		n.SomaID = *meta.SomaID
	}

	if err := readJSON(filepath.Join(dir, "tags.json"), &n.Tags); err != nil {
		return nil, err
	}

	var err error
	if n.Nodes, err = readNodesTSV(filepath.Join(dir, "nodes.tsv")); err != nil {
		return nil, err
	}
	if n.Connectors, err = readConnectorsTSV(filepath.Join(dir, "connectors.tsv")); err != nil {
		return nil, err
	}
	return n, nil
}

// GetByName loads the neuron with the given published name.
func (r *NeuronReader) GetByName(name string) (*Neuron, error) {
	if err := r.buildIndexes(); err != nil {
		return nil, err
	}
	id, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("no neuron named %q", name)
	}
	return r.Get(id)
}

// GetByAnnotation loads every neuron carrying the given published
// annotation, in ID order.
func (r *NeuronReader) GetByAnnotation(annotation string) ([]*Neuron, error) {
	if err := r.buildIndexes(); err != nil {
		return nil, err
	}
	var out []*Neuron
	for _, id := range r.byAnn[annotation] {
		n, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// All loads every neuron in ID order.
func (r *NeuronReader) All() ([]*Neuron, error) {
	out := make([]*Neuron, 0, len(r.ids))
	for _, id := range r.ids {
		n, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *NeuronReader) buildIndexes() error {
	if r.byName != nil {
		return nil
	}
	byName := make(map[string]int64)
	byAnn := make(map[string][]int64)
	for _, id := range r.ids {
		var meta struct {
			Annotations []string `json:"annotations"`
			Name        string   `json:"name"`
		}
		path := filepath.Join(r.dir, strconv.FormatInt(id, 10), "metadata.json")
		if err := readJSON(path, &meta); err != nil {
			return err
		}
		byName[meta.Name] = id
		for _, a := range meta.Annotations {
			byAnn[a] = append(byAnn[a], id)
		}
	}
	r.byName = byName
	r.byAnn = byAnn
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func readNodesTSV(path string) ([]skeleton.Node, error) {
	rows, err := readTSV(path, []string{"node_id", "parent_id", "x", "y", "z", "radius"})
	if err != nil {
		return nil, err
	}
	nodes := make([]skeleton.Node, 0, len(rows))
	for _, row := range rows {
		var n skeleton.Node
		if n.ID, err = strconv.ParseInt(row[0], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: bad node_id %q", path, row[0])
		}
		if n.ParentID, err = strconv.ParseInt(row[1], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: bad parent_id %q", path, row[1])
		}
		if n.X, err = strconv.ParseFloat(row[2], 64); err != nil {
			return nil, fmt.Errorf("%s: bad x %q", path, row[2])
		}
		if n.Y, err = strconv.ParseFloat(row[3], 64); err != nil {
			return nil, fmt.Errorf("%s: bad y %q", path, row[3])
		}
		if n.Z, err = strconv.ParseFloat(row[4], 64); err != nil {
			return nil, fmt.Errorf("%s: bad z %q", path, row[4])
		}
		if n.Radius, err = strconv.ParseFloat(row[5], 64); err != nil {
			return nil, fmt.Errorf("%s: bad radius %q", path, row[5])
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func readConnectorsTSV(path string) ([]catmaid.Connector, error) {
	rows, err := readTSV(path, []string{"node_id", "connector_id", "is_input", "x", "y", "z"})
	if err != nil {
		return nil, err
	}
	conns := make([]catmaid.Connector, 0, len(rows))
	for _, row := range rows {
		var c catmaid.Connector
		if c.NodeID, err = strconv.ParseInt(row[0], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: bad node_id %q", path, row[0])
		}
		if c.ConnectorID, err = strconv.ParseInt(row[1], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: bad connector_id %q", path, row[1])
		}
		c.IsInput = row[2] == "1"
		if c.X, err = strconv.ParseFloat(row[3], 64); err != nil {
			return nil, fmt.Errorf("%s: bad x %q", path, row[3])
		}
		if c.Y, err = strconv.ParseFloat(row[4], 64); err != nil {
			return nil, fmt.Errorf("%s: bad y %q", path, row[4])
		}
		if c.Z, err = strconv.ParseFloat(row[5], 64); err != nil {
			return nil, fmt.Errorf("%s: bad z %q", path, row[5])
		}
		conns = append(conns, c)
	}
	return conns, nil
}

// readTSV reads a tab separated file, checks the header, and returns the
// data rows.
func readTSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !sc.Scan() {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	got := strings.Split(sc.Text(), "\t")
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("%s: unexpected header %v", path, got)
	}

	var rows [][]string
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return nil, fmt.Errorf("%s: row has %d fields, want %d", path, len(fields), len(header))
		}
		rows = append(rows, fields)
	}
	return rows, sc.Err()
}
