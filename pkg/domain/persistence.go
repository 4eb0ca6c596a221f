package domain

import "context"

// SnapshotStore is a minimal abstraction over durable backends for
// generation snapshots. It mirrors the subset of store capabilities used by
// higher layers.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot GenerationSnapshot) error
	LatestSnapshot(ctx context.Context) (GenerationSnapshot, bool, error)
	ListSnapshots(ctx context.Context) ([]GenerationSnapshot, error)
	Close() error
}
