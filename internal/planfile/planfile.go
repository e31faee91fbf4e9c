// Package planfile reads and writes scramble plans as YAML.
//
//	dimension: 3
//	seed: 42
//	moves:
//	  - "#4 X+90"
//	  - "#10 Y-90"
package planfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// ErrInvalid is returned for plan files that parse but cannot be used.
var ErrInvalid = errors.New("planfile: invalid plan")

// File is the on-disk form of a plan.
type File struct {
	Dimension int      `yaml:"dimension"`
	Seed      uint64   `yaml:"seed,omitempty"`
	Notes     string   `yaml:"notes,omitempty"`
	Moves     []string `yaml:"moves"`
}

// New builds a File from a plan.
func New(dimension int, plan history.Plan) File {
	f := File{Dimension: dimension, Moves: make([]string, len(plan))}
	for i, m := range plan {
		f.Moves[i] = m.Notation()
	}
	return f
}

// Plan parses the moves and checks every cubie id exists in a lattice of
// the file's dimension.
func (f File) Plan() (history.Plan, error) {
	if f.Dimension < 2 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalid, f.Dimension)
	}
	count := lattice.ShellCount(f.Dimension)

	plan := make(history.Plan, 0, len(f.Moves))
	for i, s := range f.Moves {
		m, err := history.ParseMoveRecord(s)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i, err)
		}
		if m.CubieID >= count {
			return nil, fmt.Errorf("%w: move %d names cubie %d, lattice has %d", ErrInvalid, i, m.CubieID, count)
		}
		plan = append(plan, m)
	}
	return plan, nil
}

// Parse decodes YAML.
func Parse(b []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("plan file: %w", err)
	}
	for i := range f.Moves {
		f.Moves[i] = strings.TrimSpace(f.Moves[i])
	}
	if _, err := f.Plan(); err != nil {
		return f, fmt.Errorf("plan file: %w", err)
	}
	return f, nil
}

// Load reads and validates the plan file at path.
func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(b)
}

// Marshal encodes f as YAML.
func Marshal(f File) ([]byte, error) {
	return yaml.Marshal(f)
}

// Save writes f to path.
func Save(path string, f File) error {
	b, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}
