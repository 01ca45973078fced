package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	metadataFile  = "metadata.json"
	snapshotsFile = "snapshots.csv"
)

var ErrChecksumMismatch = errors.New("storage: snapshot checksum mismatch")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
	logger  *zap.Logger
}

func New(baseDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{baseDir: baseDir, logger: logger}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Seed      int64     `json:"seed"`
	Bodies    int       `json:"bodies"`

	G                float64 `json:"gravitational_constant"`
	TimeStep         float64 `json:"time_step"`
	Duration         float64 `json:"duration"`
	SnapshotInterval float64 `json:"snapshot_interval"`

	Steps         int64              `json:"steps"`
	Snapshots     int                `json:"snapshots"`
	Collisions    int                `json:"collisions"`
	SimulatedTime float64            `json:"simulated_time"`
	WallTime      float64            `json:"wall_time_seconds"`
	Metrics       map[string]float64 `json:"metrics"`

	// Checksum is the xxhash64 of snapshots.csv in hex.
	Checksum string `json:"checksum"`
}

func (s *Store) runDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// Verify recomputes the snapshot checksum of a run.
func (s *Store) Verify(runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	sum, err := fileChecksum(filepath.Join(s.runDir(runID), snapshotsFile))
	if err != nil {
		return err
	}
	if sum != meta.Checksum {
		return fmt.Errorf("%w: run %s has %s, recorded %s", ErrChecksumMismatch, runID, sum, meta.Checksum)
	}
	return nil
}
