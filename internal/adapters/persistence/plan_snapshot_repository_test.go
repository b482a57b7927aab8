package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/persistence"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

func samplePlan(id string, savedAt time.Time) *planning.PlanSnapshot {
	return &planning.PlanSnapshot{
		ID:             id,
		Name:           "Gear line",
		Inputs:         []string{"iron", "element:water"},
		Outputs:        []string{"gear", "plate"},
		OutputAmounts:  []float64{12, 2.5},
		TierSelections: map[string]string{"assembler": "2"},
		UpdatedAt:      savedAt,
	}
}

func TestPlanSnapshotRepository_SaveAndFind(t *testing.T) {
	// Arrange
	repo := persistence.NewGormPlanSnapshotRepository(helpers.NewTestDB(t))
	savedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	plan := samplePlan("plan-gear", savedAt)

	// Act
	err := repo.Save(context.Background(), plan)
	require.NoError(t, err)
	found, err := repo.FindByID(context.Background(), "plan-gear")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Gear line", found.Name)
	assert.Equal(t, plan.Inputs, found.Inputs)
	assert.Equal(t, plan.Outputs, found.Outputs)
	assert.Equal(t, plan.OutputAmounts, found.OutputAmounts)
	assert.Equal(t, "2", found.TierSelections["assembler"])
	assert.True(t, savedAt.Equal(found.UpdatedAt))
	assert.False(t, found.ShapeMismatch())
}

func TestPlanSnapshotRepository_SaveReplacesEntries(t *testing.T) {
	// Arrange
	repo := persistence.NewGormPlanSnapshotRepository(helpers.NewTestDB(t))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(context.Background(), samplePlan("plan-gear", now)))

	// Act
	shrunk := samplePlan("plan-gear", now.Add(time.Minute))
	shrunk.Outputs = []string{"gear"}
	shrunk.OutputAmounts = []float64{20}
	shrunk.Name = "Gears only"
	require.NoError(t, repo.Save(context.Background(), shrunk))
	found, err := repo.FindByID(context.Background(), "plan-gear")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Gears only", found.Name)
	assert.Equal(t, []string{"gear"}, found.Outputs)
	assert.Equal(t, []float64{20}, found.OutputAmounts)
}

func TestPlanSnapshotRepository_MismatchedShapeLoads(t *testing.T) {
	repo := persistence.NewGormPlanSnapshotRepository(helpers.NewTestDB(t))
	plan := samplePlan("plan-broken", time.Now().UTC())
	plan.OutputAmounts = []float64{12}

	require.NoError(t, repo.Save(context.Background(), plan))
	found, err := repo.FindByID(context.Background(), "plan-broken")

	require.NoError(t, err)
	assert.True(t, found.ShapeMismatch())
	_, err = found.Targets()
	var mismatch *planning.ErrPlanShapeMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestPlanSnapshotRepository_ListNewestFirst(t *testing.T) {
	// Arrange
	repo := persistence.NewGormPlanSnapshotRepository(helpers.NewTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(context.Background(), samplePlan("plan-old", base)))
	require.NoError(t, repo.Save(context.Background(), samplePlan("plan-new", base.Add(time.Hour))))
	require.NoError(t, repo.Save(context.Background(), samplePlan("plan-mid", base.Add(time.Minute))))

	// Act
	plans, err := repo.List(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "plan-new", plans[0].ID)
	assert.Equal(t, "plan-mid", plans[1].ID)
	assert.Equal(t, "plan-old", plans[2].ID)
	assert.Equal(t, []string{"gear", "plate"}, plans[0].Outputs)
}

func TestPlanSnapshotRepository_Delete(t *testing.T) {
	// Arrange
	repo := persistence.NewGormPlanSnapshotRepository(helpers.NewTestDB(t))
	require.NoError(t, repo.Save(context.Background(), samplePlan("plan-gear", time.Now().UTC())))

	// Act
	err := repo.Delete(context.Background(), "plan-gear")

	// Assert
	require.NoError(t, err)
	_, err = repo.FindByID(context.Background(), "plan-gear")
	var notFound *planning.ErrPlanNotFound
	assert.ErrorAs(t, err, &notFound)

	err = repo.Delete(context.Background(), "plan-gear")
	assert.ErrorAs(t, err, &notFound)
}

func TestPlanSnapshotRepository_NotFound(t *testing.T) {
	repo := persistence.NewGormPlanSnapshotRepository(helpers.NewTestDB(t))

	_, err := repo.FindByID(context.Background(), "plan-missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan-missing")
}
