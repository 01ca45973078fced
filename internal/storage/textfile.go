package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/nbodysim/internal/scenario"
	"github.com/san-kum/nbodysim/internal/sim"
)

// TextFile rewrites a single file with the latest snapshot, one line per
// body in parsecs, km/s and solar masses. The file can be fed back as an
// input body table.
type TextFile struct {
	path string
}

func NewTextFile(path string) *TextFile {
	return &TextFile{path: path}
}

func (t *TextFile) Path() string { return t.path }

func (t *TextFile) WriteSnapshot(_ context.Context, s sim.Snapshot) error {
	f, err := os.Create(t.path)
	if err != nil {
		return err
	}
	if err := scenario.WriteBodies(f, s.Bodies); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	return f.Close()
}
