package commands

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// SolvePlanCommand requests recipe rates for a set of target outputs
type SolvePlanCommand struct {
	Targets  map[string]float64 // resource reference ("gear", "element:water") -> per minute
	Ignore   []string           // resources supplied from outside the plan
	Disabled []string           // recipe ids excluded by progression
}

// SolvePlanResponse carries the merged plan and its report
type SolvePlanResponse struct {
	Result *planning.Accumulator
	Report *services.PlanReport
}

// SolvePlanHandler handles the SolvePlan command
type SolvePlanHandler struct {
	engine   *services.PlanningEngine
	reporter *services.PlanReporter
}

// NewSolvePlanHandler creates a new SolvePlanHandler
func NewSolvePlanHandler(engine *services.PlanningEngine) *SolvePlanHandler {
	return &SolvePlanHandler{
		engine:   engine,
		reporter: services.NewPlanReporter(engine.Catalog()),
	}
}

// Handle executes the SolvePlan command
func (h *SolvePlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SolvePlanCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SolvePlanCommand")
	}
	response, err := h.solve(ctx, cmd.Targets, cmd.Ignore, cmd.Disabled, nil)
	if err != nil {
		return nil, err
	}
	return response, nil
}

// solve plans the targets. A non-nil tier replaces the catalog's tier in the
// report only; the shared catalog is never modified.
func (h *SolvePlanHandler) solve(ctx context.Context, targets map[string]float64, ignore, disabled []string, tier *production.TierParams) (*SolvePlanResponse, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one target is required")
	}

	catalog := h.engine.Catalog()
	req := services.PlanRequest{
		Targets:  make(map[production.ResourceKey]float64, len(targets)),
		Ignore:   resolveIgnored(ctx, catalog, ignore),
		Disabled: disabledSet(ctx, catalog, disabled),
	}

	refs := make([]string, 0, len(targets))
	for ref := range targets {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		key := resolveTarget(ctx, catalog, ref)
		amount := targets[ref]
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
			return nil, &production.ErrInvalidAmount{Resource: key, Amount: amount}
		}
		req.Targets[key] += amount
	}

	result, err := h.engine.Solve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to solve plan: %w", err)
	}

	var report *services.PlanReport
	if tier != nil {
		report = h.reporter.BuildWithTier(result, *tier)
	} else {
		report = h.reporter.Build(result)
	}
	return &SolvePlanResponse{
		Result: result,
		Report: report,
	}, nil
}

// resolveTarget maps a reference to a catalog key. Unknown references keep a
// best-effort key so the engine reports them as unresolved.
func resolveTarget(ctx context.Context, catalog *production.RecipeCatalog, ref string) production.ResourceKey {
	key, err := catalog.ResolveResource(ref)
	if err == nil {
		return key
	}
	common.LoggerFromContext(ctx).Log(common.LevelWarn, "Unknown target resource", map[string]interface{}{
		"resource": ref,
	})
	return fallbackKey(ref)
}

func fallbackKey(ref string) production.ResourceKey {
	if kind, id, ok := strings.Cut(ref, ":"); ok {
		if k, err := production.ParseResourceKind(kind); err == nil {
			return production.ResourceKey{Kind: k, ID: id}
		}
	}
	return production.ItemKey(ref)
}

func resolveIgnored(ctx context.Context, catalog *production.RecipeCatalog, refs []string) map[production.ResourceKey]bool {
	out := make(map[production.ResourceKey]bool, len(refs))
	for _, ref := range refs {
		key, err := catalog.ResolveResource(ref)
		if err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Ignoring unknown resource", map[string]interface{}{
				"resource": ref,
			})
			continue
		}
		out[key] = true
	}
	return out
}

func disabledSet(ctx context.Context, catalog *production.RecipeCatalog, ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := catalog.Recipe(id); !ok {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Disabled recipe is not in the catalog", map[string]interface{}{
				"recipe_id": id,
			})
		}
		out[id] = true
	}
	return out
}
