package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"seawaywatch/internal/domain/models"
	"seawaywatch/pkg/logger"
)

// HistoryStore is the per-bridge append-only history file store
// (data/history/{bridge_id}.json). Each bridge has exactly one writer
// path, so no cross-file locking is needed, only a per-bridge mutex to
// serialize the scraper's appends against the statistics engine's trims.
type HistoryStore struct {
	dir string
	log *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewHistoryStore creates a store rooted at dir.
func NewHistoryStore(dir string, log *logger.Logger) *HistoryStore {
	return &HistoryStore{dir: dir, log: log, locks: make(map[string]*sync.Mutex)}
}

func (h *HistoryStore) lockFor(bridgeID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.locks[bridgeID]
	if !ok {
		l = &sync.Mutex{}
		h.locks[bridgeID] = l
	}
	return l
}

func (h *HistoryStore) pathFor(bridgeID string) string {
	return filepath.Join(h.dir, bridgeID+".json")
}

// Load reads a bridge's history, newest-first. A missing file is treated
// as empty history.
func (h *HistoryStore) Load(ctx context.Context, bridgeID string) ([]models.HistoryEntry, error) {
	b, err := os.ReadFile(h.pathFor(bridgeID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history %s: %w", bridgeID, err)
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		if h.log != nil {
			h.log.Warn("history file unparsable, starting empty", logger.String("bridge_id", bridgeID), logger.Error(err))
		}
		return nil, nil
	}
	return entries, nil
}

// Prepend inserts entry at index 0, truncates to MaxHistoryEntries, and
// rewrites the file atomically (spec.md §4.2). Returns the resulting
// sequence.
func (h *HistoryStore) Prepend(ctx context.Context, bridgeID string, entry models.HistoryEntry) ([]models.HistoryEntry, error) {
	l := h.lockFor(bridgeID)
	l.Lock()
	defer l.Unlock()

	existing, err := h.Load(ctx, bridgeID)
	if err != nil {
		return nil, err
	}
	entries := append([]models.HistoryEntry{entry}, existing...)
	if len(entries) > models.MaxHistoryEntries {
		entries = entries[:models.MaxHistoryEntries]
	}
	if err := h.writeLocked(bridgeID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save rewrites the full entry list, used by the statistics engine after
// trimming (idempotent with Prepend's invariant of <=300 entries).
func (h *HistoryStore) Save(ctx context.Context, bridgeID string, entries []models.HistoryEntry) error {
	l := h.lockFor(bridgeID)
	l.Lock()
	defer l.Unlock()
	return h.writeLocked(bridgeID, entries)
}

func (h *HistoryStore) writeLocked(bridgeID string, entries []models.HistoryEntry) error {
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history %s: %w", bridgeID, err)
	}
	if err := AtomicWriteFile(h.pathFor(bridgeID), b, 0o644); err != nil {
		if h.log != nil {
			h.log.Error("history write failed", logger.String("bridge_id", bridgeID), logger.Error(err))
		}
		return err
	}
	return nil
}
