package export

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/flybrains/neuropub/pkg/buildinfo"
	"github.com/flybrains/neuropub/pkg/config"
)

// MetadataFile is the shape of metadata.toml at the dataset root. It
// records provenance so a dataset can be traced back to the tool version,
// configuration, and server that produced it.
type MetadataFile struct {
	Tool       string       `toml:"tool"`
	Version    string       `toml:"version"`
	RunID      string       `toml:"run_id"`
	Timestamp  string       `toml:"timestamp"`
	ConfigHash string       `toml:"config_hash"`
	ServerURL  string       `toml:"server_url"`
	ProjectID  int          `toml:"project_id"`
	Units      string       `toml:"units"`
	Citation   citationMeta `toml:"citation"`
}

type citationMeta struct {
	DOI      string `toml:"doi"`
	URL      string `toml:"url"`
	BibLaTeX string `toml:"biblatex"`
}

func writeMetadata(outDir string, cfg *config.Config, sum *Summary) error {
	meta := MetadataFile{
		Tool:       "neuropub",
		Version:    buildinfo.Version,
		RunID:      sum.RunID,
		Timestamp:  sum.Timestamp.Format(time.RFC3339),
		ConfigHash: sum.ConfigHash,
		ServerURL:  cfg.Project.ServerURL,
		ProjectID:  cfg.Project.ProjectID,
		Units:      cfg.Project.Units,
		Citation: citationMeta{
			DOI:      cfg.Citation.DOI,
			URL:      cfg.Citation.URL,
			BibLaTeX: cfg.Citation.BibLaTeX,
		},
	}

	f, err := os.Create(filepath.Join(outDir, "metadata.toml"))
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(meta)
}
