package production

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Snapshot is the immutable input the catalog is built from
type Snapshot struct {
	Resources []Resource
	Recipes   []*Recipe
}

// TierParams carries progression-dependent parameters.
// SpeedMultipliers are keyed by producer name.
type TierParams struct {
	SpeedMultipliers map[string]float64
}

// Speed returns the producer's speed scaled by its multiplier, if any
func (t TierParams) Speed(p ProducerKind) float64 {
	if m, ok := t.SpeedMultipliers[p.Name]; ok && m > 0 {
		return p.Speed * m
	}
	return p.Speed
}

// RecipeCatalog indexes resources and recipes for the planner.
//
// Every structural change bumps Version so cached decompositions and solvers
// built from an older catalog can be detected and rebuilt.
type RecipeCatalog struct {
	mu sync.RWMutex

	version uint64

	resources     map[ResourceKey]Resource
	resourceOrder []ResourceKey

	recipes     map[string]*Recipe
	recipeOrder []string

	producers      map[ResourceKey][]*Recipe
	consumers      map[ResourceKey][]*Recipe
	byTag          map[string][]*Recipe
	producersByTag map[string][]ProducerKind

	tier TierParams
}

// NewRecipeCatalog validates the snapshot and builds the catalog indexes
func NewRecipeCatalog(snapshot Snapshot) (*RecipeCatalog, error) {
	c := &RecipeCatalog{}
	if err := c.Rebuild(snapshot); err != nil {
		return nil, err
	}
	return c, nil
}

// ValidateSnapshot checks structural consistency: unique ids, known resource
// references and strictly positive amounts.
func ValidateSnapshot(snapshot Snapshot) error {
	var problems []string

	known := make(map[ResourceKey]bool, len(snapshot.Resources))
	for _, r := range snapshot.Resources {
		if r.ID() == "" {
			problems = append(problems, "resource with empty id")
			continue
		}
		if known[r.Key()] {
			problems = append(problems, fmt.Sprintf("duplicate resource %s", r.Key()))
		}
		known[r.Key()] = true
	}

	seen := make(map[string]bool, len(snapshot.Recipes))
	for _, recipe := range snapshot.Recipes {
		if recipe == nil {
			problems = append(problems, "nil recipe")
			continue
		}
		id := recipe.ID()
		if id == "" {
			problems = append(problems, "recipe with empty id")
		}
		if seen[id] {
			problems = append(problems, fmt.Sprintf("duplicate recipe %s", id))
		}
		seen[id] = true

		if len(recipe.outputs) == 0 {
			problems = append(problems, fmt.Sprintf("recipe %s has no outputs", id))
		}
		if recipe.timeSeconds < 0 || math.IsNaN(recipe.timeSeconds) || math.IsInf(recipe.timeSeconds, 0) {
			problems = append(problems, fmt.Sprintf("recipe %s has invalid time %v", id, recipe.timeSeconds))
		}
		problems = append(problems, checkAmounts(id, "output", recipe.outputs, known)...)
		problems = append(problems, checkAmounts(id, "input", recipe.inputs, known)...)
	}

	if len(problems) > 0 {
		return &ErrInvalidCatalog{Problems: problems}
	}
	return nil
}

func checkAmounts(recipeID, side string, amounts []ItemAmount, known map[ResourceKey]bool) []string {
	var problems []string
	for _, a := range amounts {
		if !known[a.Resource] {
			problems = append(problems, fmt.Sprintf("recipe %s references unknown %s %s", recipeID, side, a.Resource))
		}
		if !(a.Amount > 0) || math.IsInf(a.Amount, 0) {
			problems = append(problems, fmt.Sprintf("recipe %s has non-positive %s amount %v for %s", recipeID, side, a.Amount, a.Resource))
		}
	}
	return problems
}

// Rebuild replaces the catalog contents with a new snapshot and bumps the version.
// On validation failure the current contents are left untouched.
func (c *RecipeCatalog) Rebuild(snapshot Snapshot) error {
	if err := ValidateSnapshot(snapshot); err != nil {
		return err
	}

	resources := make(map[ResourceKey]Resource, len(snapshot.Resources))
	resourceOrder := make([]ResourceKey, 0, len(snapshot.Resources))
	for _, r := range snapshot.Resources {
		resources[r.Key()] = r
		resourceOrder = append(resourceOrder, r.Key())
	}
	SortKeys(resourceOrder)

	recipes := make(map[string]*Recipe, len(snapshot.Recipes))
	recipeOrder := make([]string, 0, len(snapshot.Recipes))
	producers := make(map[ResourceKey][]*Recipe)
	consumers := make(map[ResourceKey][]*Recipe)
	byTag := make(map[string][]*Recipe)
	producersByTag := make(map[string][]ProducerKind)

	sorted := append([]*Recipe(nil), snapshot.Recipes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })

	for _, recipe := range sorted {
		recipes[recipe.ID()] = recipe
		recipeOrder = append(recipeOrder, recipe.ID())
		for _, key := range recipe.OutputKeys() {
			producers[key] = append(producers[key], recipe)
		}
		for _, key := range recipe.InputKeys() {
			consumers[key] = append(consumers[key], recipe)
		}
		for _, tag := range recipe.tags {
			byTag[tag] = append(byTag[tag], recipe)
			producersByTag[tag] = mergeProducers(producersByTag[tag], recipe.producers)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.resources = resources
	c.resourceOrder = resourceOrder
	c.recipes = recipes
	c.recipeOrder = recipeOrder
	c.producers = producers
	c.consumers = consumers
	c.byTag = byTag
	c.producersByTag = producersByTag
	c.version++
	return nil
}

func mergeProducers(existing, add []ProducerKind) []ProducerKind {
	for _, p := range add {
		found := false
		for _, e := range existing {
			if e.Name == p.Name {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, p)
		}
	}
	return existing
}

// ApplyTier installs progression parameters and bumps the version.
// Applying the parameters already in effect changes nothing.
func (c *RecipeCatalog) ApplyTier(params TierParams) {
	multipliers := make(map[string]float64, len(params.SpeedMultipliers))
	for name, m := range params.SpeedMultipliers {
		multipliers[name] = m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sameMultipliers(c.tier.SpeedMultipliers, multipliers) {
		return
	}
	c.tier = TierParams{SpeedMultipliers: multipliers}
	c.version++
}

// Tier returns a copy of the parameters in effect
func (c *RecipeCatalog) Tier() TierParams {
	c.mu.RLock()
	defer c.mu.RUnlock()
	multipliers := make(map[string]float64, len(c.tier.SpeedMultipliers))
	for name, m := range c.tier.SpeedMultipliers {
		multipliers[name] = m
	}
	return TierParams{SpeedMultipliers: multipliers}
}

func sameMultipliers(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for name, m := range a {
		if other, ok := b[name]; !ok || other != m {
			return false
		}
	}
	return true
}

// Version increases on every Rebuild or ApplyTier
func (c *RecipeCatalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Resource looks up a resource by key
func (c *RecipeCatalog) Resource(key ResourceKey) (Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.resources[key]
	return r, ok
}

// ResolveResource resolves "kind:id" or a bare id. A bare id prefers items over elements.
func (c *RecipeCatalog) ResolveResource(ref string) (ResourceKey, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ref = strings.TrimSpace(ref)
	if kind, id, ok := strings.Cut(ref, ":"); ok {
		k, err := ParseResourceKind(kind)
		if err == nil {
			key := ResourceKey{Kind: k, ID: id}
			if _, exists := c.resources[key]; exists {
				return key, nil
			}
		}
	}
	for _, kind := range []ResourceKind{ResourceKindItem, ResourceKindElement} {
		key := ResourceKey{Kind: kind, ID: ref}
		if _, exists := c.resources[key]; exists {
			return key, nil
		}
	}
	return ResourceKey{}, &ErrUnknownResource{Resource: ref}
}

// Recipe looks up a recipe by id
func (c *RecipeCatalog) Recipe(id string) (*Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.recipes[id]
	return r, ok
}

// Resources returns all resources sorted by key
func (c *RecipeCatalog) Resources() []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Resource, 0, len(c.resourceOrder))
	for _, key := range c.resourceOrder {
		out = append(out, c.resources[key])
	}
	return out
}

// Recipes returns all recipes sorted by id
func (c *RecipeCatalog) Recipes() []*Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Recipe, 0, len(c.recipeOrder))
	for _, id := range c.recipeOrder {
		out = append(out, c.recipes[id])
	}
	return out
}

// Producers returns the recipes that output a resource, sorted by id
func (c *RecipeCatalog) Producers(key ResourceKey) []*Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Recipe(nil), c.producers[key]...)
}

// Consumers returns the recipes that take a resource as input, sorted by id
func (c *RecipeCatalog) Consumers(key ResourceKey) []*Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Recipe(nil), c.consumers[key]...)
}

// RecipesByTag returns the recipes carrying a tag
func (c *RecipeCatalog) RecipesByTag(tag string) []*Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Recipe(nil), c.byTag[tag]...)
}

// ProducersByTag returns the distinct producer kinds used by recipes carrying a tag
func (c *RecipeCatalog) ProducersByTag(tag string) []ProducerKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ProducerKind(nil), c.producersByTag[tag]...)
}

// EffectiveSpeed returns the speed of a producer after the catalog's tier multipliers
func (c *RecipeCatalog) EffectiveSpeed(p ProducerKind) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tier.Speed(p)
}

// Snapshot returns the current contents for persistence
func (c *RecipeCatalog) Snapshot() Snapshot {
	return Snapshot{Resources: c.Resources(), Recipes: c.Recipes()}
}
