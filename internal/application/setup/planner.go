package setup

import (
	"context"
	"fmt"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/config"
)

// SolverOptionsFromConfig translates planner settings into linear solver options
func SolverOptionsFromConfig(cfg config.PlannerConfig) (services.SolverOptions, error) {
	options := services.SolverOptions{
		MaxIterations: cfg.MaxIterations,
		Epsilon:       cfg.Epsilon,
	}

	switch cfg.Cost.Strategy {
	case "uniform":
		options.Cost = services.UniformCost{}
	case "", "waste":
		var penalties map[production.ResourceKey]float64
		if cfg.Cost.Penalties != nil {
			penalties = make(map[production.ResourceKey]float64, len(cfg.Cost.Penalties))
			for ref, weight := range cfg.Cost.Penalties {
				key, err := production.ParseResourceKey(ref)
				if err != nil {
					return services.SolverOptions{}, fmt.Errorf("invalid cost penalty %q: %w", ref, err)
				}
				penalties[key] = weight
			}
		}
		options.Cost = services.NewWasteBiasedCost(penalties)
	default:
		return services.SolverOptions{}, fmt.Errorf("unknown cost strategy %q", cfg.Cost.Strategy)
	}
	return options, nil
}

// LoadCatalog reads a snapshot from source and builds the catalog from it
func LoadCatalog(ctx context.Context, source production.SnapshotSource) (*production.RecipeCatalog, error) {
	snapshot, err := source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	catalog, err := production.NewRecipeCatalog(snapshot)
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Catalog loaded", map[string]interface{}{
		"resources": len(snapshot.Resources),
		"recipes":   len(snapshot.Recipes),
		"version":   catalog.Version(),
	})
	return catalog, nil
}

// NewPlanningEngineFromConfig loads the catalog and builds an engine with the configured solver options
func NewPlanningEngineFromConfig(
	ctx context.Context,
	cfg config.PlannerConfig,
	source production.SnapshotSource,
) (*services.PlanningEngine, error) {
	options, err := SolverOptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := LoadCatalog(ctx, source)
	if err != nil {
		return nil, err
	}
	return services.NewPlanningEngine(catalog, services.WithSolverOptions(options)), nil
}
