package steps

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

const rateTolerance = 1e-6

// planningContext drives solves and decomposition queries through the mediator
type planningContext struct {
	groups *queries.ListSubGraphsResponse
	err    error
}

func (ctx *planningContext) reset() {
	world.reset()
	ctx.groups = nil
	ctx.err = nil
}

// Catalog steps

func (ctx *planningContext) aRecipeProducingFrom(id string, outAmount float64, output string, inAmount float64, input string) error {
	world.builder.Recipe(id, map[string]float64{output: outAmount}, map[string]float64{input: inAmount})
	return nil
}

// theFollowingRecipes reads one ingredient per row; rows sharing a recipe id
// are merged into a single recipe
func (ctx *planningContext) theFollowingRecipes(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("recipe table needs a header and at least one row")
	}

	var order []string
	outputs := make(map[string]map[string]float64)
	inputs := make(map[string]map[string]float64)
	for _, row := range table.Rows[1:] {
		id := getCellValue(table, row, "recipe")
		if id == "" {
			return fmt.Errorf("recipe table row is missing a recipe id")
		}
		if _, ok := outputs[id]; !ok {
			order = append(order, id)
			outputs[id] = make(map[string]float64)
			inputs[id] = make(map[string]float64)
		}
		if err := addTableAmount(outputs[id], table, row, "output", "output amount"); err != nil {
			return fmt.Errorf("recipe %s: %w", id, err)
		}
		if err := addTableAmount(inputs[id], table, row, "input", "input amount"); err != nil {
			return fmt.Errorf("recipe %s: %w", id, err)
		}
	}

	for _, id := range order {
		world.builder.Recipe(id, outputs[id], inputs[id])
	}
	return nil
}

func (ctx *planningContext) isAnExternalInput(resource string) error {
	world.ignore = append(world.ignore, resource)
	return nil
}

func (ctx *planningContext) recipeIsDisabled(id string) error {
	world.disabled = append(world.disabled, id)
	return nil
}

// Solve steps

func (ctx *planningContext) iSolveForPerMinute(amount float64, resource string) error {
	resp, err := world.send(&commands.SolvePlanCommand{
		Targets:  map[string]float64{resource: amount},
		Ignore:   world.ignore,
		Disabled: world.disabled,
	})
	world.recordSolve(resp, err)
	return nil
}

func (ctx *planningContext) theSolveShouldSucceed() error {
	_, err := world.requireSolved()
	return err
}

func (ctx *planningContext) theSolveShouldFailWith(substr string) error {
	if world.solveErr == nil {
		return fmt.Errorf("expected solve to fail with %q, but it succeeded", substr)
	}
	if !strings.Contains(world.solveErr.Error(), substr) {
		return fmt.Errorf("expected error containing %q, got %q", substr, world.solveErr.Error())
	}
	return nil
}

func (ctx *planningContext) recipeShouldRunAt(id string, expected float64) error {
	resp, err := world.requireSolved()
	if err != nil {
		return err
	}
	actual := resp.Result.RecipeRates[id]
	if math.Abs(actual-expected) > rateTolerance {
		return fmt.Errorf("recipe %s: expected rate %g, got %g", id, expected, actual)
	}
	return nil
}

func (ctx *planningContext) recipeShouldNotRun(id string) error {
	resp, err := world.requireSolved()
	if err != nil {
		return err
	}
	if rate := resp.Result.RecipeRates[id]; rate > rateTolerance {
		return fmt.Errorf("recipe %s should not run, got rate %g", id, rate)
	}
	return nil
}

func (ctx *planningContext) everyRecipeRateShouldBeNonNegative() error {
	resp, err := world.requireSolved()
	if err != nil {
		return err
	}
	for id, rate := range resp.Result.RecipeRates {
		if rate < -rateTolerance || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return fmt.Errorf("recipe %s has invalid rate %g", id, rate)
		}
	}
	return nil
}

func (ctx *planningContext) thePlanShouldProduceAtLeast(expected float64, resource string) error {
	resp, err := world.requireSolved()
	if err != nil {
		return err
	}
	key := helpers.Key(resource)
	net := 0.0
	for id, rate := range resp.Result.RecipeRates {
		recipe, ok := world.engine.Catalog().Recipe(id)
		if !ok {
			return fmt.Errorf("solve returned unknown recipe %s", id)
		}
		net += rate * recipe.NetAmount(key)
	}
	if net < expected-rateTolerance {
		return fmt.Errorf("expected at least %g %s per minute, plan nets %g", expected, resource, net)
	}
	return nil
}

func (ctx *planningContext) shouldHaveNoUnresolvedDemand(resource string) error {
	resp, err := world.requireSolved()
	if err != nil {
		return err
	}
	if amount := resp.Result.Unresolved[helpers.Key(resource)]; amount > rateTolerance {
		return fmt.Errorf("expected no unresolved %s, got %g", resource, amount)
	}
	return nil
}

func (ctx *planningContext) shouldHaveUnresolvedPerMinute(resource string, expected float64) error {
	resp, err := world.requireSolved()
	if err != nil {
		return err
	}
	actual, ok := resp.Result.Unresolved[helpers.Key(resource)]
	if !ok {
		return fmt.Errorf("expected %s to be unresolved", resource)
	}
	if math.IsNaN(actual) || math.Abs(actual-expected) > rateTolerance {
		return fmt.Errorf("expected %g unresolved %s, got %g", expected, resource, actual)
	}
	return nil
}

// Helper Functions

// getCellValue returns the cell under columnName, using the first table row as the header
func getCellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName && i < len(row.Cells) {
			return strings.TrimSpace(row.Cells[i].Value)
		}
	}
	return ""
}

func addTableAmount(into map[string]float64, table *godog.Table, row *messages.PickleTableRow, resourceColumn, amountColumn string) error {
	resource := getCellValue(table, row, resourceColumn)
	if resource == "" {
		return nil
	}
	amount, err := strconv.ParseFloat(getCellValue(table, row, amountColumn), 64)
	if err != nil {
		return fmt.Errorf("invalid %s for %s: %w", amountColumn, resource, err)
	}
	into[resource] += amount
	return nil
}

// Decomposition steps

func (ctx *planningContext) iListTheRecipeGroups() error {
	resp, err := world.send(&queries.ListSubGraphsQuery{})
	if err != nil {
		ctx.err = err
		return err
	}
	ctx.groups = resp.(*queries.ListSubGraphsResponse)
	return nil
}

func (ctx *planningContext) groupOf(id string) (*queries.SubGraphDTO, error) {
	if ctx.groups == nil {
		return nil, fmt.Errorf("recipe groups were not listed")
	}
	for i := range ctx.groups.SubGraphs {
		for _, recipeID := range ctx.groups.SubGraphs[i].RecipeIDs {
			if recipeID == id {
				return &ctx.groups.SubGraphs[i], nil
			}
		}
	}
	return nil, fmt.Errorf("recipe %s is in no group", id)
}

func (ctx *planningContext) recipesShouldShareOneComplexGroup(list string) error {
	ids := strings.Split(list, ",")
	first, err := ctx.groupOf(strings.TrimSpace(ids[0]))
	if err != nil {
		return err
	}
	if !first.Complex {
		return fmt.Errorf("group %d holding %s is not complex", first.ID, ids[0])
	}
	for _, id := range ids[1:] {
		group, err := ctx.groupOf(strings.TrimSpace(id))
		if err != nil {
			return err
		}
		if group.ID != first.ID {
			return fmt.Errorf("recipe %s is in group %d, expected group %d", id, group.ID, first.ID)
		}
	}
	return nil
}

func (ctx *planningContext) recipeShouldBeInASimpleGroup(id string) error {
	group, err := ctx.groupOf(id)
	if err != nil {
		return err
	}
	if group.Complex {
		return fmt.Errorf("recipe %s is in complex group %d", id, group.ID)
	}
	return nil
}

func (ctx *planningContext) everyRecipeShouldAppearInExactlyOneGroup() error {
	if ctx.groups == nil {
		return fmt.Errorf("recipe groups were not listed")
	}
	seen := make(map[string]int)
	for _, group := range ctx.groups.SubGraphs {
		for _, id := range group.RecipeIDs {
			seen[id]++
		}
	}

	var expected []string
	for _, recipe := range world.engine.Catalog().Recipes() {
		expected = append(expected, recipe.ID())
	}
	sort.Strings(expected)

	for _, id := range expected {
		if seen[id] != 1 {
			return fmt.Errorf("recipe %s appears in %d groups", id, seen[id])
		}
		delete(seen, id)
	}
	if len(seen) > 0 {
		return fmt.Errorf("groups reference unknown recipes: %v", seen)
	}
	return nil
}

// Register steps

func InitializePlanningScenario(sc *godog.ScenarioContext) {
	planningCtx := &planningContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		planningCtx.reset()
		return ctx, nil
	})

	sc.Step(`^a recipe "([^"]*)" producing (\d+(?:\.\d+)?) "([^"]*)" from (\d+(?:\.\d+)?) "([^"]*)"$`, planningCtx.aRecipeProducingFrom)
	sc.Step(`^the following recipes:$`, planningCtx.theFollowingRecipes)
	sc.Step(`^"([^"]*)" is an external input$`, planningCtx.isAnExternalInput)
	sc.Step(`^recipe "([^"]*)" is disabled$`, planningCtx.recipeIsDisabled)

	sc.Step(`^I solve for (-?\d+(?:\.\d+)?) "([^"]*)" per minute$`, planningCtx.iSolveForPerMinute)
	sc.Step(`^the solve should succeed$`, planningCtx.theSolveShouldSucceed)
	sc.Step(`^the solve should fail with "([^"]*)"$`, planningCtx.theSolveShouldFailWith)
	sc.Step(`^recipe "([^"]*)" should run at (\d+(?:\.\d+)?) crafts per minute$`, planningCtx.recipeShouldRunAt)
	sc.Step(`^recipe "([^"]*)" should not run$`, planningCtx.recipeShouldNotRun)
	sc.Step(`^every recipe rate should be non-negative$`, planningCtx.everyRecipeRateShouldBeNonNegative)
	sc.Step(`^the plan should produce at least (\d+(?:\.\d+)?) "([^"]*)" per minute$`, planningCtx.thePlanShouldProduceAtLeast)
	sc.Step(`^"([^"]*)" should have no unresolved demand$`, planningCtx.shouldHaveNoUnresolvedDemand)
	sc.Step(`^"([^"]*)" should have (\d+(?:\.\d+)?) unresolved per minute$`, planningCtx.shouldHaveUnresolvedPerMinute)

	sc.Step(`^I list the recipe groups$`, planningCtx.iListTheRecipeGroups)
	sc.Step(`^recipes "([^"]*)" should share one complex group$`, planningCtx.recipesShouldShareOneComplexGroup)
	sc.Step(`^recipe "([^"]*)" should be in a simple group$`, planningCtx.recipeShouldBeInASimpleGroup)
	sc.Step(`^every recipe should appear in exactly one group$`, planningCtx.everyRecipeShouldAppearInExactlyOneGroup)
}
