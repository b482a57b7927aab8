package catalog_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/catalog"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

const refineryYAML = `
resources:
  - id: oil
    name: Crude Oil
  - id: light
  - id: heavy
  - id: water
    kind: element
    name: Water
recipes:
  - id: crack
    outputs:
      - {resource: light, amount: 2}
      - {resource: heavy, amount: 1}
    inputs:
      - {resource: oil, amount: 1}
      - {resource: water, amount: 0.5}
    time_seconds: 5
    tags: [refining]
    producers:
      - {name: refinery, speed: 1.5, power_kw: 400}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileProvider_LoadsYAML(t *testing.T) {
	// Arrange
	path := writeFile(t, "catalog.yaml", refineryYAML)
	provider := catalog.NewFileProvider(path)

	// Act
	snapshot, err := provider.LoadSnapshot(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Len(t, snapshot.Resources, 4)
	require.Len(t, snapshot.Recipes, 1)
	crack := snapshot.Recipes[0]
	assert.Equal(t, 2.0, crack.OutputAmount(production.ItemKey("light")))
	assert.Equal(t, 0.5, crack.InputAmount(production.ElementKey("water")))
	assert.True(t, crack.HasTag("refining"))
	producer, ok := crack.PrimaryProducer()
	require.True(t, ok)
	assert.Equal(t, "refinery", producer.Name)
	assert.Equal(t, 400.0, producer.PowerKW)

	built, err := production.NewRecipeCatalog(snapshot)
	require.NoError(t, err)
	assert.Len(t, built.Producers(production.ItemKey("heavy")), 1)
}

func TestFileProvider_LoadsJSON(t *testing.T) {
	path := writeFile(t, "catalog.json", `{
  "resources": [{"id": "iron"}, {"id": "gear"}],
  "recipes": [{"id": "gear", "outputs": [{"resource": "item:gear", "amount": 1}],
               "inputs": [{"resource": "iron", "amount": 2}], "time_seconds": 1}]
}`)

	snapshot, err := catalog.NewFileProvider(path).LoadSnapshot(context.Background())

	require.NoError(t, err)
	require.Len(t, snapshot.Recipes, 1)
	assert.Equal(t, 2.0, snapshot.Recipes[0].InputAmount(production.ItemKey("iron")))
}

func TestFileProvider_RejectsZeroOutput(t *testing.T) {
	// Arrange
	path := writeFile(t, "broken.yaml", `
resources: [{id: gear}]
recipes:
  - id: gear
    outputs: [{resource: gear, amount: 0}]
`)

	// Act
	_, err := catalog.NewFileProvider(path).LoadSnapshot(context.Background())

	// Assert
	var invalid *production.ErrInvalidCatalog
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "Amount")
}

func TestFileProvider_RejectsUnknownResource(t *testing.T) {
	path := writeFile(t, "unknown.yaml", `
resources: [{id: gear}]
recipes:
  - id: gear
    outputs: [{resource: gear, amount: 1}]
    inputs: [{resource: ghost, amount: 1}]
`)

	_, err := catalog.NewFileProvider(path).LoadSnapshot(context.Background())

	var invalid *production.ErrInvalidCatalog
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "unknown input")
}

func TestFileProvider_RejectsAmbiguousBareReference(t *testing.T) {
	path := writeFile(t, "ambiguous.yaml", `
resources:
  - {id: water}
  - {id: water, kind: element}
recipes:
  - id: pump
    outputs: [{resource: water, amount: 1}]
`)

	_, err := catalog.NewFileProvider(path).LoadSnapshot(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestFileProvider_UnknownFieldIsAnError(t *testing.T) {
	path := writeFile(t, "typo.yaml", `
resources: [{id: gear}]
recipies: []
`)

	_, err := catalog.NewFileProvider(path).LoadSnapshot(context.Background())

	assert.Error(t, err)
}

func TestFileProvider_MissingFile(t *testing.T) {
	_, err := catalog.NewFileProvider(filepath.Join(t.TempDir(), "nope.yaml")).LoadSnapshot(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog file")
}

func TestExport_RoundTripsThroughBothFormats(t *testing.T) {
	// Arrange
	original, err := catalog.Decode(strings.NewReader(refineryYAML), catalog.FormatYAML)
	require.NoError(t, err)

	for _, format := range []catalog.Format{catalog.FormatYAML, catalog.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			// Act
			var buf bytes.Buffer
			require.NoError(t, catalog.Export(&buf, original, format))
			decoded, err := catalog.Decode(&buf, format)

			// Assert
			require.NoError(t, err)
			require.Len(t, decoded.Recipes, 1)
			assert.Equal(t, original.Recipes[0].Inputs(), decoded.Recipes[0].Inputs())
			assert.Equal(t, original.Recipes[0].Producers(), decoded.Recipes[0].Producers())
			assert.Len(t, decoded.Resources, len(original.Resources))
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, catalog.FormatJSON, catalog.FormatFromPath("a/b/catalog.JSON"))
	assert.Equal(t, catalog.FormatYAML, catalog.FormatFromPath("catalog.yml"))
	assert.Equal(t, catalog.FormatYAML, catalog.FormatFromPath("catalog"))

	format, err := catalog.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, catalog.FormatYAML, format)
	_, err = catalog.ParseFormat("toml")
	assert.Error(t, err)
}
