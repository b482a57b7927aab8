package steps

import (
	"context"
	"fmt"
	"sync"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/setup"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

// plannerWorld is the state shared by the planning and plan snapshot steps
// within one scenario
type plannerWorld struct {
	mu sync.Mutex

	builder  *helpers.CatalogBuilder
	ignore   []string
	disabled []string
	plans    *helpers.MockPlanRepository
	logger   *helpers.CapturingLogger

	engine   *services.PlanningEngine
	mediator common.Mediator

	solveResp *commands.SolvePlanResponse
	solveErr  error
}

var world = &plannerWorld{}

func (w *plannerWorld) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.builder = helpers.NewCatalogBuilder()
	w.ignore = nil
	w.disabled = nil
	w.plans = helpers.NewMockPlanRepository()
	w.logger = helpers.NewCapturingLogger()
	w.engine = nil
	w.mediator = nil
	w.solveResp = nil
	w.solveErr = nil
}

func (w *plannerWorld) context() context.Context {
	return common.WithLogger(context.Background(), w.logger)
}

// ensureMediator builds the catalog, engine and mediator on first use.
// Catalog steps must run before anything that solves.
func (w *plannerWorld) ensureMediator() (common.Mediator, error) {
	if w.mediator != nil {
		return w.mediator, nil
	}

	catalog, err := production.NewRecipeCatalog(w.builder.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("catalog is invalid: %w", err)
	}
	w.engine = services.NewPlanningEngine(catalog)

	m, err := setup.NewHandlerRegistry(w.engine, w.plans, nil, nil).CreateConfiguredMediator()
	if err != nil {
		return nil, err
	}
	w.mediator = m
	return m, nil
}

func (w *plannerWorld) send(request common.Request) (common.Response, error) {
	m, err := w.ensureMediator()
	if err != nil {
		return nil, err
	}
	return m.Send(w.context(), request)
}

func (w *plannerWorld) recordSolve(resp common.Response, err error) {
	w.solveResp = nil
	w.solveErr = err
	if err == nil {
		w.solveResp = resp.(*commands.SolvePlanResponse)
	}
}

func (w *plannerWorld) requireSolved() (*commands.SolvePlanResponse, error) {
	if w.solveErr != nil {
		return nil, fmt.Errorf("expected solve to succeed, got error: %w", w.solveErr)
	}
	if w.solveResp == nil || w.solveResp.Result == nil {
		return nil, fmt.Errorf("no solve result")
	}
	return w.solveResp, nil
}
