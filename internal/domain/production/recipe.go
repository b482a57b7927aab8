package production

import (
	"fmt"
	"strings"
)

// ItemAmount is a per-craft quantity of a resource
type ItemAmount struct {
	Resource ResourceKey
	Amount   float64
}

// ProducerKind describes a machine able to run a recipe. Used for reporting only.
type ProducerKind struct {
	Name    string
	Icon    string
	Speed   float64
	PowerKW float64
}

// Recipe transforms inputs into outputs per craft.
// Recipes are immutable once built; accessors return copies.
type Recipe struct {
	id          string
	outputs     []ItemAmount
	inputs      []ItemAmount
	timeSeconds float64
	tags        []string
	producers   []ProducerKind
}

// NewRecipe creates a recipe. Slices are copied so later mutation by the caller
// does not leak into the catalog.
func NewRecipe(id string, outputs, inputs []ItemAmount, timeSeconds float64, tags []string, producers []ProducerKind) *Recipe {
	return &Recipe{
		id:          id,
		outputs:     append([]ItemAmount(nil), outputs...),
		inputs:      append([]ItemAmount(nil), inputs...),
		timeSeconds: timeSeconds,
		tags:        append([]string(nil), tags...),
		producers:   append([]ProducerKind(nil), producers...),
	}
}

func (r *Recipe) ID() string           { return r.id }
func (r *Recipe) TimeSeconds() float64 { return r.timeSeconds }

func (r *Recipe) Outputs() []ItemAmount {
	return append([]ItemAmount(nil), r.outputs...)
}

func (r *Recipe) Inputs() []ItemAmount {
	return append([]ItemAmount(nil), r.inputs...)
}

func (r *Recipe) Tags() []string {
	return append([]string(nil), r.tags...)
}

func (r *Recipe) Producers() []ProducerKind {
	return append([]ProducerKind(nil), r.producers...)
}

// PrimaryProducer returns the first listed producer, if any
func (r *Recipe) PrimaryProducer() (ProducerKind, bool) {
	if len(r.producers) == 0 {
		return ProducerKind{}, false
	}
	return r.producers[0], true
}

// HasTag reports whether the recipe carries the given tag
func (r *Recipe) HasTag(tag string) bool {
	for _, t := range r.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// OutputAmount returns the per-craft amount of a resource produced.
// Duplicate entries are summed.
func (r *Recipe) OutputAmount(key ResourceKey) float64 {
	return sumAmounts(r.outputs, key)
}

// InputAmount returns the per-craft amount of a resource consumed
func (r *Recipe) InputAmount(key ResourceKey) float64 {
	return sumAmounts(r.inputs, key)
}

// NetAmount returns output minus input for a resource.
// A recipe that consumes part of its own product has a smaller net amount.
func (r *Recipe) NetAmount(key ResourceKey) float64 {
	return r.OutputAmount(key) - r.InputAmount(key)
}

// Produces reports whether the recipe lists the resource as an output
func (r *Recipe) Produces(key ResourceKey) bool {
	return r.OutputAmount(key) > 0
}

// Consumes reports whether the recipe lists the resource as an input
func (r *Recipe) Consumes(key ResourceKey) bool {
	return r.InputAmount(key) > 0
}

// OutputKeys returns distinct output resources in declaration order
func (r *Recipe) OutputKeys() []ResourceKey {
	return distinctKeys(r.outputs, nil)
}

// InputKeys returns distinct input resources in declaration order
func (r *Recipe) InputKeys() []ResourceKey {
	return distinctKeys(r.inputs, nil)
}

// TouchedKeys returns every resource the recipe produces or consumes,
// outputs first, without duplicates
func (r *Recipe) TouchedKeys() []ResourceKey {
	seen := make(map[ResourceKey]bool)
	keys := distinctKeys(r.outputs, seen)
	return append(keys, distinctKeys(r.inputs, seen)...)
}

func (r *Recipe) String() string {
	parts := make([]string, 0, len(r.outputs))
	for _, o := range r.outputs {
		parts = append(parts, fmt.Sprintf("%gx%s", o.Amount, o.Resource.ID))
	}
	return fmt.Sprintf("%s -> %s", r.id, strings.Join(parts, ","))
}

func sumAmounts(amounts []ItemAmount, key ResourceKey) float64 {
	total := 0.0
	for _, a := range amounts {
		if a.Resource == key {
			total += a.Amount
		}
	}
	return total
}

func distinctKeys(amounts []ItemAmount, seen map[ResourceKey]bool) []ResourceKey {
	if seen == nil {
		seen = make(map[ResourceKey]bool)
	}
	keys := make([]ResourceKey, 0, len(amounts))
	for _, a := range amounts {
		if seen[a.Resource] {
			continue
		}
		seen[a.Resource] = true
		keys = append(keys, a.Resource)
	}
	return keys
}
