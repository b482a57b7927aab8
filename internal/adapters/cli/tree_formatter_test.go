package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/cli"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

func circuitTree() *planning.Requirement {
	root := planning.NewRootRequirement()

	circuit := planning.NewRequirement(production.ItemKey("circuit"), "Circuit", 10, planning.RequirementCraft)
	circuit.RecipeID = "make-circuit"
	gear := planning.NewRequirement(production.ItemKey("gear"), "Gear", 10, planning.RequirementCraft)
	gear.RecipeID = "make-gear"
	gear.AddChild(planning.NewRequirement(production.ItemKey("iron"), "Iron Ore", 20, planning.RequirementRaw))
	circuit.AddChild(gear)
	circuit.AddChild(planning.NewRequirement(production.ItemKey("copper"), "Copper Ore", 30, planning.RequirementUnresolved))

	root.AddChild(circuit)
	return root
}

func TestTreeFormatter_FormatTree(t *testing.T) {
	// Arrange
	formatter := cli.NewTreeFormatter(false, false)

	// Act
	out := formatter.FormatTree(circuitTree())

	// Assert
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "[*] plan [ROOT]", lines[0])
	assert.Equal(t, "└── [+] Circuit 10/min [CRAFT] via make-circuit", lines[1])
	assert.Equal(t, "    ├── [+] Gear 10/min [CRAFT] via make-gear", lines[2])
	assert.Equal(t, "    │   └── [ ] Iron Ore 20/min [RAW]", lines[3])
	assert.Equal(t, "    └── [?] Copper Ore 30/min [UNRESOLVED]", lines[4])
}

func TestTreeFormatter_Colors(t *testing.T) {
	formatter := cli.NewTreeFormatter(true, false)

	out := formatter.FormatTree(circuitTree())

	assert.Contains(t, out, "[\033[31mUNRESOLVED\033[0m]")
	assert.Contains(t, out, "[\033[32mCRAFT\033[0m]")
}

func TestTreeFormatter_Summary(t *testing.T) {
	formatter := cli.NewTreeFormatter(false, false)

	summary := formatter.FormatTreeSummary(circuitTree())

	assert.Equal(t, "Tree: 5 nodes (2 CRAFT, 0 SOLVED, 1 RAW, 1 UNRESOLVED, 0 CYCLE), depth=4, raw resources=1", summary)
}

func TestTreeFormatter_CompactTreeIsBreadthFirst(t *testing.T) {
	formatter := cli.NewTreeFormatter(false, false)

	compact := formatter.FormatCompactTree(circuitTree())

	assert.Equal(t, "[C:Circuit] → [C:Gear] → [U:Copper Ore] → [R:Iron Ore]", compact)
}

func TestTreeFormatter_NilTree(t *testing.T) {
	formatter := cli.NewTreeFormatter(false, false)

	assert.Equal(t, "(empty tree)", formatter.FormatTree(nil))
	assert.Equal(t, "No demand tree", formatter.FormatTreeSummary(nil))
	assert.Equal(t, "(empty)", formatter.FormatCompactTree(nil))
}
