package services_test

import (
	"context"
	"testing"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

const tolerance = 1e-6

func key(ref string) production.ResourceKey {
	return helpers.Key(ref)
}

func keySet(refs ...string) map[production.ResourceKey]bool {
	out := make(map[production.ResourceKey]bool, len(refs))
	for _, ref := range refs {
		out[helpers.Key(ref)] = true
	}
	return out
}

func testContext() (context.Context, *helpers.CapturingLogger) {
	logger := helpers.NewCapturingLogger()
	return common.WithLogger(context.Background(), logger), logger
}

// circuitCatalog: iron -> gear -> circuit (+ copper)
func circuitCatalog(t *testing.T) *production.RecipeCatalog {
	return helpers.NewCatalogBuilder().
		Recipe("gear", map[string]float64{"gear": 1}, map[string]float64{"iron": 2}).
		Recipe("circuit", map[string]float64{"circuit": 2}, map[string]float64{"gear": 3, "copper": 1}).
		Build(t)
}

// gearCatalog: two producers of gear
func gearCatalog(t *testing.T) *production.RecipeCatalog {
	return helpers.NewCatalogBuilder().
		Recipe("A", map[string]float64{"gear": 2}, map[string]float64{"iron": 1}).
		Recipe("B", map[string]float64{"gear": 3}, map[string]float64{"steel": 1}).
		Build(t)
}

// farmCatalog: a self-consuming seed recipe fed by a water pump
func farmCatalog(t *testing.T) *production.RecipeCatalog {
	return helpers.NewCatalogBuilder().
		Recipe("grow", map[string]float64{"seed": 3}, map[string]float64{"seed": 1, "water": 1}).
		Recipe("pump", map[string]float64{"water": 1}, nil).
		Build(t)
}

// refineryCatalog: cracking with a byproduct feeding a self-consuming plastic recipe
func refineryCatalog(t *testing.T) *production.RecipeCatalog {
	return helpers.NewCatalogBuilder().
		Recipe("crack", map[string]float64{"light": 2, "heavy": 1}, map[string]float64{"oil": 1}).
		Recipe("plastic", map[string]float64{"plastic": 3}, map[string]float64{"light": 1, "plastic": 1}).
		Build(t)
}
