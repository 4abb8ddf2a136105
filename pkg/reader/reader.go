// Package reader loads a dataset directory produced by the exporter back
// into memory. Each section reader parses lazily on first use so opening a
// dataset is cheap even when only one section is needed.
package reader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/flybrains/neuropub/pkg/export"
	"github.com/flybrains/neuropub/pkg/graph"
)

// DataReader is the entry point for one dataset directory.
type DataReader struct {
	dir  string
	meta *export.MetadataFile
}

// Open validates that dir is a dataset root and reads its metadata.
// Datasets written before provenance tracking carry no metadata.toml;
// those open with empty metadata.
func Open(dir string) (*DataReader, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	meta := &export.MetadataFile{}
	metaPath := filepath.Join(dir, "metadata.toml")
	if _, err := os.Stat(metaPath); err == nil {
		if _, err := toml.DecodeFile(metaPath, meta); err != nil {
			return nil, fmt.Errorf("parse %s: %w", metaPath, err)
		}
	}
	return &DataReader{dir: dir, meta: meta}, nil
}

// Dir returns the dataset root path.
func (r *DataReader) Dir() string { return r.dir }

// Metadata returns the provenance record from metadata.toml.
func (r *DataReader) Metadata() export.MetadataFile { return *r.meta }

// Annotations opens the annotations section. The error is os.ErrNotExist
// when the dataset was exported without annotations.
func (r *DataReader) Annotations() (*AnnotationReader, error) {
	return openAnnotations(filepath.Join(r.dir, "annotations"))
}

// Neurons opens the neurons section.
func (r *DataReader) Neurons() (*NeuronReader, error) {
	return openNeurons(filepath.Join(r.dir, "neurons"))
}

// Volumes opens the volumes section.
func (r *DataReader) Volumes() (*VolumeReader, error) {
	return openVolumes(filepath.Join(r.dir, "volumes"))
}

// Landmarks opens the landmarks section.
func (r *DataReader) Landmarks() (*LandmarkReader, error) {
	return openLandmarks(filepath.Join(r.dir, "landmarks"))
}

// AnnotationGraph rebuilds the full typed graph: the annotation graph plus
// one neuron node per exported neuron, linked from each of its
// annotations. Neuron nodes are keyed by published name.
func (r *DataReader) AnnotationGraph() (*graph.Graph, error) {
	anns, err := r.Annotations()
	if err != nil {
		return nil, err
	}
	g, err := anns.Graph()
	if err != nil {
		return nil, err
	}

	neurons, err := r.Neurons()
	if err != nil {
		if os.IsNotExist(err) {
			return g, nil
		}
		return nil, err
	}
	all, err := neurons.All()
	if err != nil {
		return nil, err
	}
	for _, n := range all {
		if err := g.AddNode(graph.Node{ID: n.Name, Kind: graph.KindNeuron}); err != nil {
			return nil, err
		}
		for _, a := range n.Annotations {
			if !g.HasNode(a) {
				continue
			}
			if err := g.AddEdge(graph.Edge{From: a, To: n.Name}); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
