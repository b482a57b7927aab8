package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/cli"
)

const circuitCatalog = `
resources:
  - id: iron
    name: Iron Ore
  - id: copper
    name: Copper Ore
  - id: gear
    name: Gear
  - id: circuit
    name: Circuit
recipes:
  - id: make-gear
    outputs:
      - {resource: gear, amount: 1}
    inputs:
      - {resource: iron, amount: 2}
    time_seconds: 60
    producers:
      - {name: assembler, speed: 1, power_kw: 100}
  - id: make-circuit
    outputs:
      - {resource: circuit, amount: 1}
    inputs:
      - {resource: gear, amount: 1}
      - {resource: copper, amount: 3}
    time_seconds: 30
    producers:
      - {name: assembler, speed: 1, power_kw: 100}
`

type cliEnv struct {
	dir     string
	config  string
	catalog string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("DATABASE_URL", "")

	catalogPath := filepath.Join(dir, "factory.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(circuitCatalog), 0o644))

	configPath := filepath.Join(dir, "config.yaml")
	configYAML := "database:\n" +
		"  type: sqlite\n" +
		"  path: " + filepath.Join(dir, "planner.db") + "\n" +
		"logging:\n" +
		"  output: file\n" +
		"  file_path: " + filepath.Join(dir, "planner.log") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))

	return &cliEnv{dir: dir, config: configPath, catalog: catalogPath}
}

func (e *cliEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSolveCommand_PrintsRecipeTable(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)

	// Act
	out, err := env.run("solve", "--catalog", env.catalog, "--target", "circuit=10", "--ignore", "iron,copper")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "RECIPES")
	assert.Contains(t, out, "make-circuit")
	assert.Contains(t, out, "make-gear")
	assert.Contains(t, out, "RAW INPUTS")
	assert.Contains(t, out, "item:iron")
	assert.Contains(t, out, "item:copper")
	assert.NotContains(t, out, "UNRESOLVED")
}

func TestSolveCommand_JSONOutput(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)

	// Act
	out, err := env.run("solve", "--catalog", env.catalog, "-t", "circuit=10", "--ignore", "iron", "--ignore", "copper", "--json")

	// Assert
	require.NoError(t, err)
	var decoded struct {
		RecipeRates map[string]float64 `json:"recipe_rates"`
		RawInputs   []struct {
			Resource string  `json:"resource"`
			Amount   float64 `json:"amount_per_minute"`
		} `json:"raw_inputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.InDelta(t, 10, decoded.RecipeRates["make-circuit"], 1e-9)
	assert.InDelta(t, 10, decoded.RecipeRates["make-gear"], 1e-9)

	raw := map[string]float64{}
	for _, line := range decoded.RawInputs {
		raw[line.Resource] = line.Amount
	}
	assert.InDelta(t, 20, raw["item:iron"], 1e-9)
	assert.InDelta(t, 30, raw["item:copper"], 1e-9)
}

func TestSolveCommand_UnmadeResourcesAreUnresolved(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("solve", "--catalog", env.catalog, "--target", "gear=1")

	require.NoError(t, err)
	assert.Contains(t, out, "UNRESOLVED")
	assert.Contains(t, out, "Iron Ore")
}

func TestSolveCommand_Tree(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("solve", "--catalog", env.catalog, "--target", "circuit=1", "--ignore", "iron,copper", "--tree")

	require.NoError(t, err)
	assert.Contains(t, out, "DEMAND TREE")
	assert.Contains(t, out, "Circuit")
	assert.Contains(t, out, "via make-gear")
	assert.Contains(t, out, "Tree:")
}

func TestSolveCommand_RejectsMalformedTarget(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("solve", "--catalog", env.catalog, "--target", "circuit")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected resource=rate")
}

func TestGroupsCommand_ListsGroups(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("groups", "--catalog", env.catalog)

	require.NoError(t, err)
	assert.Contains(t, out, "make-gear")
	assert.Contains(t, out, "make-circuit")
	assert.Contains(t, out, "simple")
	assert.Contains(t, out, "After")
}

func TestPlanCommands_SaveListLoadSolveDelete(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)

	// Act: save
	out, err := env.run("plan", "save", "--catalog", env.catalog,
		"--id", "circuits", "--name", "Circuit Line",
		"--output", "circuit=10", "--input", "iron", "--input", "copper",
		"--tier", "assembler=2")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan saved: circuits")

	// Act: list
	out, err = env.run("plan", "list", "--catalog", env.catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "circuits")
	assert.Contains(t, out, "Circuit Line")

	// Act: load
	out, err = env.run("plan", "load", "circuits", "--catalog", env.catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "Circuit Line")
	assert.Contains(t, out, "10/min")
	assert.Contains(t, out, "assembler")

	// Act: solve
	out, err = env.run("plan", "solve", "circuits", "--catalog", env.catalog, "--json")
	require.NoError(t, err)
	var solved struct {
		RecipeRates map[string]float64 `json:"recipe_rates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &solved))
	assert.InDelta(t, 10, solved.RecipeRates["make-circuit"], 1e-9)

	// Act: delete
	out, err = env.run("plan", "delete", "circuits", "--catalog", env.catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	out, err = env.run("plan", "list", "--catalog", env.catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "No plans saved")
}

func TestPlanSave_RejectsBadTier(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("plan", "save", "--catalog", env.catalog,
		"--name", "Bad", "--output", "circuit=1", "--tier", "assembler=fast")

	require.Error(t, err)
}

func TestPlanLoad_MissingPlan(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("plan", "load", "nope", "--catalog", env.catalog)

	require.Error(t, err)
}

func TestCatalogCommands_ImportThenSolveFromDatabase(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)

	// Act
	out, err := env.run("catalog", "import", env.catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "4 resources, 2 recipes")

	out, err = env.run("solve", "--target", "gear=3", "--ignore", "iron", "--json")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, `"make-gear": 3`)
}

func TestCatalogImport_InvalidFileIsRejected(t *testing.T) {
	env := newCLIEnv(t)
	bad := filepath.Join(env.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("recipes:\n  - id: x\n    outputs: []\n"), 0o644))

	_, err := env.run("catalog", "import", bad)

	require.Error(t, err)
}

func TestCatalogExport_JSON(t *testing.T) {
	env := newCLIEnv(t)
	outPath := filepath.Join(env.dir, "export.json")

	_, err := env.run("catalog", "export", "--catalog", env.catalog, "--format", "json", "--out", outPath)

	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), "make-circuit")
}

func TestConfigCommands_SetCatalogAndOutput(t *testing.T) {
	// Arrange
	env := newCLIEnv(t)

	// Act
	_, err := env.run("config", "set-catalog", env.catalog)
	require.NoError(t, err)
	_, err = env.run("config", "set-output", "json")
	require.NoError(t, err)

	// Assert: solve picks up both preferences
	out, err := env.run("solve", "--target", "gear=1", "--ignore", "iron")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
	assert.Contains(t, out, "make-gear")

	out, err = env.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, env.catalog)
	assert.Contains(t, out, "json")

	_, err = env.run("config", "clear")
	require.NoError(t, err)
	out, err = env.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "(not set)")
}

func TestConfigSetOutput_RejectsUnknownFormat(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("config", "set-output", "xml")

	require.Error(t, err)
}
