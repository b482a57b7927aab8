package steps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
)

// planSnapshotContext saves, repairs and solves stored plans
type planSnapshotContext struct{}

func (ctx *planSnapshotContext) aSavedPlanTargetingWithInput(id string, amount float64, output, input string) error {
	_, err := world.send(&commands.SavePlanCommand{
		ID:            id,
		Name:          id,
		Inputs:        []string{input},
		Outputs:       []string{output},
		OutputAmounts: []float64{amount},
	})
	return err
}

func (ctx *planSnapshotContext) aStoredPlanWithOutputsAndAmounts(id, outputs, amounts string) error {
	plan := &planning.PlanSnapshot{ID: id, Name: id}
	for _, o := range strings.Split(outputs, ",") {
		plan.Outputs = append(plan.Outputs, strings.TrimSpace(o))
	}
	for _, a := range strings.Split(amounts, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return err
		}
		plan.OutputAmounts = append(plan.OutputAmounts, v)
	}
	world.plans.AddPlan(plan)
	return nil
}

func (ctx *planSnapshotContext) iSolveTheSavedPlan(id string) error {
	resp, err := world.send(&commands.SolveSavedPlanCommand{PlanID: id, Disabled: world.disabled})
	world.recordSolve(resp, err)
	return nil
}

func (ctx *planSnapshotContext) iNormalizeThePlan(id string) error {
	resp, err := world.send(&commands.NormalizePlanCommand{PlanID: id})
	if err != nil {
		return err
	}
	if !resp.(*commands.NormalizePlanResponse).Changed {
		return fmt.Errorf("plan %s was already consistent", id)
	}
	return nil
}

func (ctx *planSnapshotContext) theSavedPlanSolveShouldFailWithAShapeMismatch() error {
	var mismatch *planning.ErrPlanShapeMismatch
	if !errors.As(world.solveErr, &mismatch) {
		return fmt.Errorf("expected shape mismatch, got %v", world.solveErr)
	}
	if !world.logger.HasEntry(common.LevelWarn, "normalize") {
		return fmt.Errorf("expected a warning asking to normalize the plan")
	}
	return nil
}

func (ctx *planSnapshotContext) theSavedPlanSolveShouldFailWithPlanNotFound() error {
	var notFound *planning.ErrPlanNotFound
	if !errors.As(world.solveErr, &notFound) {
		return fmt.Errorf("expected plan not found, got %v", world.solveErr)
	}
	return nil
}

// Register steps

func InitializePlanSnapshotScenario(sc *godog.ScenarioContext) {
	snapshotCtx := &planSnapshotContext{}

	sc.Step(`^a saved plan "([^"]*)" targeting (\d+(?:\.\d+)?) "([^"]*)" with input "([^"]*)"$`, snapshotCtx.aSavedPlanTargetingWithInput)
	sc.Step(`^a stored plan "([^"]*)" with outputs "([^"]*)" and amounts "([^"]*)"$`, snapshotCtx.aStoredPlanWithOutputsAndAmounts)
	sc.Step(`^I solve the saved plan "([^"]*)"$`, snapshotCtx.iSolveTheSavedPlan)
	sc.Step(`^I normalize the plan "([^"]*)"$`, snapshotCtx.iNormalizeThePlan)
	sc.Step(`^the saved plan solve should fail with a shape mismatch$`, snapshotCtx.theSavedPlanSolveShouldFailWithAShapeMismatch)
	sc.Step(`^the saved plan solve should fail with plan not found$`, snapshotCtx.theSavedPlanSolveShouldFailWithPlanNotFound)
}
