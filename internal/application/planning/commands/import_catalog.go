package commands

import (
	"context"
	"fmt"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// ImportCatalogCommand replaces the live catalog with the contents of a source
type ImportCatalogCommand struct {
	Source production.SnapshotSource
}

// ImportCatalogResponse represents the result of an import
type ImportCatalogResponse struct {
	Resources int
	Recipes   int
	Version   uint64
}

// ImportCatalogHandler handles the ImportCatalog command
type ImportCatalogHandler struct {
	catalog     *production.RecipeCatalog
	catalogRepo production.CatalogRepository // optional
}

// NewImportCatalogHandler creates a new ImportCatalogHandler.
// catalogRepo may be nil when the catalog is not persisted.
func NewImportCatalogHandler(catalog *production.RecipeCatalog, catalogRepo production.CatalogRepository) *ImportCatalogHandler {
	return &ImportCatalogHandler{
		catalog:     catalog,
		catalogRepo: catalogRepo,
	}
}

// Handle executes the ImportCatalog command. The catalog is validated before
// anything is persisted; an invalid source leaves both untouched.
func (h *ImportCatalogHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ImportCatalogCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportCatalogCommand")
	}
	if cmd.Source == nil {
		return nil, fmt.Errorf("source is required")
	}

	snapshot, err := cmd.Source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := production.ValidateSnapshot(snapshot); err != nil {
		return nil, err
	}

	if h.catalogRepo != nil {
		if err := h.catalogRepo.ReplaceSnapshot(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("failed to persist catalog: %w", err)
		}
	}
	if err := h.catalog.Rebuild(snapshot); err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Catalog imported", map[string]interface{}{
		"resources":       len(snapshot.Resources),
		"recipes":         len(snapshot.Recipes),
		"catalog_version": h.catalog.Version(),
	})

	return &ImportCatalogResponse{
		Resources: len(snapshot.Resources),
		Recipes:   len(snapshot.Recipes),
		Version:   h.catalog.Version(),
	}, nil
}
