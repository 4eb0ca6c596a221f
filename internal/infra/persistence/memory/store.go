// Package memory implements an in-memory snapshot store for tests and
// ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ecocore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.SnapshotStore = (*Store)(nil)

// Store keeps generation snapshots in process memory.
type Store struct {
	mu        sync.RWMutex
	snapshots []domain.GenerationSnapshot
}

// NewStore constructs an empty in-memory snapshot store.
func NewStore() *Store {
	return &Store{}
}

// SaveSnapshot appends a snapshot. Run IDs must be unique.
func (s *Store) SaveSnapshot(_ context.Context, snapshot domain.GenerationSnapshot) error {
	if snapshot.RunID == "" {
		return fmt.Errorf("snapshot requires a run ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.snapshots {
		if existing.RunID == snapshot.RunID {
			return fmt.Errorf("snapshot %q already exists", snapshot.RunID)
		}
	}
	s.snapshots = append(s.snapshots, cloneSnapshot(snapshot))
	return nil
}

// LatestSnapshot returns the snapshot with the highest generation.
func (s *Store) LatestSnapshot(_ context.Context) (domain.GenerationSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.snapshots) == 0 {
		return domain.GenerationSnapshot{}, false, nil
	}
	latest := s.snapshots[0]
	for _, snap := range s.snapshots[1:] {
		if snap.Generation > latest.Generation {
			latest = snap
		}
	}
	return cloneSnapshot(latest), true, nil
}

// ListSnapshots returns all snapshots ordered by generation.
func (s *Store) ListSnapshots(_ context.Context) ([]domain.GenerationSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GenerationSnapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, cloneSnapshot(snap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

func cloneSnapshot(snap domain.GenerationSnapshot) domain.GenerationSnapshot {
	cp := snap
	cp.Patches = make([]domain.PatchState, len(snap.Patches))
	for i, p := range snap.Patches {
		pc := p
		pc.Populations = make(map[string]int64, len(p.Populations))
		for k, v := range p.Populations {
			pc.Populations[k] = v
		}
		cp.Patches[i] = pc
	}
	return cp
}
