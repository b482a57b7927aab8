package production

import "context"

// SnapshotSource loads catalog contents from a file, database or remote peer
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
}

// CatalogRepository persists catalog contents
type CatalogRepository interface {
	SnapshotSource

	// ReplaceSnapshot atomically replaces every stored resource and recipe
	ReplaceSnapshot(ctx context.Context, snapshot Snapshot) error
}
