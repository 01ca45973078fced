package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/nbodysim/internal/sim"
)

type ExportData struct {
	Run       *RunMetadata   `json:"run"`
	Snapshots []sim.Snapshot `json:"snapshots"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, snapshots []sim.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Snapshots: snapshots})
}
