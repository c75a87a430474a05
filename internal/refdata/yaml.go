package refdata

import (
	"context"
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// YAMLProvider loads a snapshot from a YAML file on disk.
type YAMLProvider struct {
	path string
}

// NewYAML creates a provider reading the given snapshot file.
func NewYAML(path string) *YAMLProvider {
	return &YAMLProvider{path: path}
}

// Load reads and validates the snapshot file.
func (p *YAMLProvider) Load(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: read snapshot %s", p.path)
	}
	return parseYAML(raw)
}

// Default returns the snapshot embedded in the binary. It carries a small but
// complete set of series so the engine works out of the box.
func Default() (*Snapshot, error) {
	return parseYAML(defaultsYAML)
}

func parseYAML(raw []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(raw, &snap); err != nil {
		return nil, eris.Wrap(err, "refdata: parse snapshot yaml")
	}
	out := snap.normalized()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
