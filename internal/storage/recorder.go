package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
	"go.uber.org/zap"
)

var csvHeader = [...]string{"step", "time", "body", "alive", "x", "y", "z", "vx", "vy", "vz", "mass"}

// Recorder is a sim.Sink that appends every snapshot to a run's CSV file.
type Recorder struct {
	id     string
	dir    string
	file   *os.File
	digest *xxhash.Digest
	w      *csv.Writer
	logger *zap.Logger

	snapshots int
}

// Create starts a new run and returns its recorder.
func (s *Store) Create() (*Recorder, error) {
	id := uuid.NewString()
	dir := s.runDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(dir, snapshotsFile))
	if err != nil {
		return nil, err
	}

	digest := xxhash.New()
	w := csv.NewWriter(io.MultiWriter(f, digest))
	if err := w.Write(csvHeader[:]); err != nil {
		f.Close()
		return nil, err
	}

	s.logger.Debug("run created", zap.String("id", id), zap.String("dir", dir))
	return &Recorder{id: id, dir: dir, file: f, digest: digest, w: w, logger: s.logger}, nil
}

func (r *Recorder) ID() string { return r.id }

func (r *Recorder) WriteSnapshot(_ context.Context, s sim.Snapshot) error {
	step := strconv.FormatInt(s.Step, 10)
	t := formatFloat(s.Time)

	for i, b := range s.Bodies {
		row := []string{
			step, t, strconv.Itoa(i), strconv.FormatBool(b.Alive()),
			formatFloat(b.Position[0]), formatFloat(b.Position[1]), formatFloat(b.Position[2]),
			formatFloat(b.Velocity[0]), formatFloat(b.Velocity[1]), formatFloat(b.Velocity[2]),
			formatFloat(b.Mass),
		}
		if err := r.w.Write(row); err != nil {
			return fmt.Errorf("record step %d: %w", s.Step, err)
		}
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("record step %d: %w", s.Step, err)
	}
	r.snapshots++
	return nil
}

// Close finishes the CSV and writes metadata.json. ID, timestamp and
// checksum are filled in by the recorder.
func (r *Recorder) Close(meta RunMetadata) (*RunMetadata, error) {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.file.Close()
		return nil, err
	}
	if err := r.file.Close(); err != nil {
		return nil, err
	}

	meta.ID = r.id
	meta.Timestamp = time.Now()
	meta.Checksum = strconv.FormatUint(r.digest.Sum64(), 16)
	if meta.Snapshots == 0 {
		meta.Snapshots = r.snapshots
	}

	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}

	r.logger.Info("run saved", zap.String("id", r.id), zap.Int("snapshots", r.snapshots), zap.String("checksum", meta.Checksum))
	return &meta, nil
}

// LoadSnapshots reads a run's snapshots back in step order.
func (s *Store) LoadSnapshots(runID string) ([]sim.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.runDir(runID), snapshotsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []sim.Snapshot{}, nil
	}

	var snaps []sim.Snapshot
	for line, rec := range records[1:] {
		var v [len(csvHeader)]float64
		for k, field := range rec {
			if k == 3 {
				continue
			}
			if v[k], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("run %s line %d: %w", runID, line+2, err)
			}
		}
		alive, err := strconv.ParseBool(rec[3])
		if err != nil {
			return nil, fmt.Errorf("run %s line %d: %w", runID, line+2, err)
		}

		step := int64(v[0])
		if len(snaps) == 0 || snaps[len(snaps)-1].Step != step {
			snaps = append(snaps, sim.Snapshot{Step: step, Time: v[1]})
		}
		cur := &snaps[len(snaps)-1]
		cur.Bodies = append(cur.Bodies, physics.Restore(
			mgl64.Vec3{v[4], v[5], v[6]},
			mgl64.Vec3{v[7], v[8], v[9]},
			v[10], alive,
		))
	}
	return snaps, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return "", err
	}
	return strconv.FormatUint(d.Sum64(), 16), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
