package helpers

import (
	"context"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// StaticSnapshotSource serves a fixed snapshot or error
type StaticSnapshotSource struct {
	Snapshot production.Snapshot
	Err      error
}

func (s *StaticSnapshotSource) LoadSnapshot(ctx context.Context) (production.Snapshot, error) {
	return s.Snapshot, s.Err
}

// MockCatalogRepository keeps the last replaced snapshot in memory
type MockCatalogRepository struct {
	StaticSnapshotSource
	Replacements int
}

func (r *MockCatalogRepository) ReplaceSnapshot(ctx context.Context, snapshot production.Snapshot) error {
	if r.Err != nil {
		return r.Err
	}
	r.Snapshot = snapshot
	r.Replacements++
	return nil
}
