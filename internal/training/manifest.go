package training

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the dataset description consumed by the external trainer.
type Manifest struct {
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	Test  string         `yaml:"test,omitempty"`
	NC    int            `yaml:"nc"`
	Names map[int]string `yaml:"names"`
}

// datasetDirs is the directory tree the trainer expects under the dataset root.
var datasetDirs = []string{
	"images/train",
	"images/val",
	"images/test",
	"labels/train",
	"labels/val",
	"labels/test",
}

// NewManifest builds a manifest for the given dataset root and class names,
// keyed by class id.
func NewManifest(datasetRoot string, names map[int]string) *Manifest {
	return &Manifest{
		Path:  datasetRoot,
		Train: "images/train",
		Val:   "images/val",
		Test:  "images/test",
		NC:    len(names),
		Names: names,
	}
}

// Write materializes the dataset directory tree and the manifest file.
// Existing directories and files are left alone except the manifest itself,
// which is rewritten.
func (m *Manifest) Write(manifestPath string) error {
	for _, dir := range datasetDirs {
		if err := os.MkdirAll(filepath.Join(m.Path, dir), 0o755); err != nil {
			return fmt.Errorf("create dataset dir %s: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal dataset manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("write dataset manifest: %w", err)
	}

	return nil
}
