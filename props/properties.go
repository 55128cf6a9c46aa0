// Package props reads the seed file that supplies first-boot modal options.
package props

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"admin-welcome-modal/internal/modal"
)

// Seed mirrors the YAML layout of configs/modal.yaml.
type Seed struct {
	Modal modal.Partial `yaml:"modal"`
}

// LoadSeed decodes the seed at path. A missing file is not an error: ok is
// false and the caller falls back to built-in defaults.
func LoadSeed(path string) (p modal.Partial, ok bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return modal.Partial{}, false, nil
	}
	if err != nil {
		return modal.Partial{}, false, fmt.Errorf("open seed %s: %w", path, err)
	}
	defer f.Close()

	var seed Seed
	if err := yaml.NewDecoder(f).Decode(&seed); err != nil {
		return modal.Partial{}, false, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return seed.Modal, true, nil
}
