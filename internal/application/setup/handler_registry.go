package setup

import (
	"reflect"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	planningCommands "github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	planningQueries "github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	engine      *services.PlanningEngine
	planRepo    planning.PlanSnapshotRepository
	catalogRepo production.CatalogRepository
	clock       shared.Clock
}

// NewHandlerRegistry creates a new handler registry.
// planRepo and catalogRepo may be nil when no database is configured.
func NewHandlerRegistry(
	engine *services.PlanningEngine,
	planRepo planning.PlanSnapshotRepository,
	catalogRepo production.CatalogRepository,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		engine:      engine,
		planRepo:    planRepo,
		catalogRepo: catalogRepo,
		clock:       clock,
	}
}

// RegisterPlanningHandlers registers the solve and catalog handlers
//
// This method registers:
//   - SolvePlanCommand → SolvePlanHandler
//   - ImportCatalogCommand → ImportCatalogHandler
//   - ListSubGraphsQuery → ListSubGraphsHandler
func (r *HandlerRegistry) RegisterPlanningHandlers(m common.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&planningCommands.SolvePlanCommand{}),
		planningCommands.NewSolvePlanHandler(r.engine),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&planningCommands.ImportCatalogCommand{}),
		planningCommands.NewImportCatalogHandler(r.engine.Catalog(), r.catalogRepo),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&planningQueries.ListSubGraphsQuery{}),
		planningQueries.NewListSubGraphsHandler(r.engine),
	)
}

// RegisterPlanStorageHandlers registers the saved plan handlers
//
// This method registers:
//   - SavePlanCommand, NormalizePlanCommand, DeletePlanCommand
//   - SolveSavedPlanCommand
//   - LoadPlanQuery, ListPlansQuery
func (r *HandlerRegistry) RegisterPlanStorageHandlers(m common.Mediator) error {
	handlers := []struct {
		request interface{}
		handler common.RequestHandler
	}{
		{&planningCommands.SavePlanCommand{}, planningCommands.NewSavePlanHandler(r.planRepo, r.clock)},
		{&planningCommands.NormalizePlanCommand{}, planningCommands.NewNormalizePlanHandler(r.planRepo, r.clock)},
		{&planningCommands.DeletePlanCommand{}, planningCommands.NewDeletePlanHandler(r.planRepo)},
		{&planningCommands.SolveSavedPlanCommand{}, planningCommands.NewSolveSavedPlanHandler(r.planRepo, r.engine)},
		{&planningQueries.LoadPlanQuery{}, planningQueries.NewLoadPlanHandler(r.planRepo)},
		{&planningQueries.ListPlansQuery{}, planningQueries.NewListPlansHandler(r.planRepo)},
	}
	for _, h := range handlers {
		if err := m.Register(reflect.TypeOf(h.request), h.handler); err != nil {
			return err
		}
	}
	return nil
}

// CreateConfiguredMediator creates a mediator with logging and every handler
// whose dependencies are available. Extra middleware runs after logging.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...common.Middleware) (common.Mediator, error) {
	m := common.NewMediator()
	m.Use(common.LoggingMiddleware())
	for _, mw := range middlewares {
		m.Use(mw)
	}

	if err := r.RegisterPlanningHandlers(m); err != nil {
		return nil, err
	}

	// Register plan storage handlers if a repository is available
	if r.planRepo != nil {
		if err := r.RegisterPlanStorageHandlers(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
