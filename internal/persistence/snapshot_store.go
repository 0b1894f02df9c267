package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"seawaywatch/internal/domain/models"
	"seawaywatch/pkg/logger"
)

// SnapshotStore is the single process-wide writer for data/bridges.json.
// Readers may open the file mid-write; the atomic rename guarantees they
// see either the pre- or post-write bytes, never a torn one.
type SnapshotStore struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

// NewSnapshotStore creates a store rooted at path.
func NewSnapshotStore(path string, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{path: path, log: log}
}

// Load reads the snapshot file. A missing or unparsable file is treated as
// an empty snapshot and logged, per spec.md §4.2 recovery semantics.
func (s *SnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if s.log != nil {
				s.log.Info("snapshot file missing, starting empty", logger.String("path", s.path))
			}
			return &models.Snapshot{Bridges: map[string]models.Bridge{}}, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		if s.log != nil {
			s.log.Warn("snapshot file unparsable, starting empty", logger.String("path", s.path), logger.Error(err))
		}
		return &models.Snapshot{Bridges: map[string]models.Bridge{}}, nil
	}
	if snap.Bridges == nil {
		snap.Bridges = map[string]models.Bridge{}
	}
	return &snap, nil
}

// Save atomically rewrites the snapshot file, serialized by a single
// process-wide mutex (spec.md §5 concurrency table).
func (s *SnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := AtomicWriteFile(s.path, b, 0o644); err != nil {
		if s.log != nil {
			s.log.Error("snapshot write failed", logger.Error(err))
		}
		return err
	}
	return nil
}
