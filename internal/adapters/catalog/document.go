package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// Document is the on-disk catalog layout shared by the YAML and JSON formats
type Document struct {
	Resources []ResourceDTO `yaml:"resources" json:"resources" validate:"dive"`
	Recipes   []RecipeDTO   `yaml:"recipes" json:"recipes" validate:"dive"`
}

// ResourceDTO declares a resource. Kind defaults to item.
type ResourceDTO struct {
	ID   string `yaml:"id" json:"id" validate:"required"`
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty" validate:"omitempty,oneof=item element"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// AmountDTO is a per-craft quantity. Resource is "kind:id" or a bare id.
type AmountDTO struct {
	Resource string  `yaml:"resource" json:"resource" validate:"required"`
	Amount   float64 `yaml:"amount" json:"amount" validate:"gt=0"`
}

// ProducerDTO describes a machine able to run a recipe
type ProducerDTO struct {
	Name    string  `yaml:"name" json:"name" validate:"required"`
	Icon    string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	Speed   float64 `yaml:"speed" json:"speed" validate:"gt=0"`
	PowerKW float64 `yaml:"power_kw,omitempty" json:"power_kw,omitempty" validate:"gte=0"`
}

// RecipeDTO declares a recipe
type RecipeDTO struct {
	ID          string        `yaml:"id" json:"id" validate:"required"`
	Outputs     []AmountDTO   `yaml:"outputs" json:"outputs" validate:"min=1,dive"`
	Inputs      []AmountDTO   `yaml:"inputs,omitempty" json:"inputs,omitempty" validate:"dive"`
	TimeSeconds float64       `yaml:"time_seconds" json:"time_seconds" validate:"gte=0"`
	Tags        []string      `yaml:"tags,omitempty" json:"tags,omitempty"`
	Producers   []ProducerDTO `yaml:"producers,omitempty" json:"producers,omitempty" validate:"dive"`
}

var documentValidator = validator.New()

// Validate runs the struct tag checks and reports every failure as a catalog problem
func (d *Document) Validate() error {
	err := documentValidator.Struct(d)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	problems := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		problems = append(problems, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			e.Namespace(),
			e.Tag(),
			e.Value(),
		))
	}
	return &production.ErrInvalidCatalog{Problems: problems}
}

// ToSnapshot validates the document and converts it into a catalog snapshot.
// Bare resource references resolve to the declared resource with that id,
// falling back to the item kind.
func (d *Document) ToSnapshot() (production.Snapshot, error) {
	if err := d.Validate(); err != nil {
		return production.Snapshot{}, err
	}

	byID := make(map[string][]production.ResourceKey)
	resources := make([]production.Resource, 0, len(d.Resources))
	for _, r := range d.Resources {
		kind, err := production.ParseResourceKind(r.Kind)
		if err != nil {
			return production.Snapshot{}, err
		}
		resource := production.NewResource(kind, r.ID, r.Name)
		resources = append(resources, resource)
		byID[r.ID] = append(byID[r.ID], resource.Key())
	}

	var problems []string
	resolve := func(recipeID string, amounts []AmountDTO) []production.ItemAmount {
		out := make([]production.ItemAmount, 0, len(amounts))
		for _, a := range amounts {
			key, err := parseRef(a.Resource, byID)
			if err != nil {
				problems = append(problems, fmt.Sprintf("recipe %s: %v", recipeID, err))
				continue
			}
			out = append(out, production.ItemAmount{Resource: key, Amount: a.Amount})
		}
		return out
	}

	recipes := make([]*production.Recipe, 0, len(d.Recipes))
	for _, r := range d.Recipes {
		producers := make([]production.ProducerKind, 0, len(r.Producers))
		for _, p := range r.Producers {
			producers = append(producers, production.ProducerKind{
				Name:    p.Name,
				Icon:    p.Icon,
				Speed:   p.Speed,
				PowerKW: p.PowerKW,
			})
		}
		recipes = append(recipes, production.NewRecipe(
			r.ID,
			resolve(r.ID, r.Outputs),
			resolve(r.ID, r.Inputs),
			r.TimeSeconds,
			r.Tags,
			producers,
		))
	}
	if len(problems) > 0 {
		return production.Snapshot{}, &production.ErrInvalidCatalog{Problems: problems}
	}

	snapshot := production.Snapshot{Resources: resources, Recipes: recipes}
	if err := production.ValidateSnapshot(snapshot); err != nil {
		return production.Snapshot{}, err
	}
	return snapshot, nil
}

func parseRef(ref string, byID map[string][]production.ResourceKey) (production.ResourceKey, error) {
	if kindPart, id, found := strings.Cut(ref, ":"); found {
		kind, err := production.ParseResourceKind(kindPart)
		if err != nil {
			return production.ResourceKey{}, err
		}
		return production.ResourceKey{Kind: kind, ID: id}, nil
	}
	keys := byID[ref]
	switch len(keys) {
	case 0:
		return production.ItemKey(ref), nil
	case 1:
		return keys[0], nil
	default:
		return production.ResourceKey{}, fmt.Errorf("ambiguous resource reference %q, qualify it with a kind", ref)
	}
}

// DocumentFromSnapshot converts a snapshot back into the file layout.
// Items are written as bare ids unless another kind shares the id.
func DocumentFromSnapshot(snapshot production.Snapshot) *Document {
	doc := &Document{
		Resources: make([]ResourceDTO, 0, len(snapshot.Resources)),
		Recipes:   make([]RecipeDTO, 0, len(snapshot.Recipes)),
	}
	kindsByID := make(map[string]int)
	for _, r := range snapshot.Resources {
		kindsByID[r.ID()]++
	}
	for _, r := range snapshot.Resources {
		doc.Resources = append(doc.Resources, ResourceDTO{
			ID:   r.ID(),
			Kind: string(r.Kind()),
			Name: r.Name(),
		})
	}
	sort.Slice(doc.Resources, func(i, j int) bool {
		if doc.Resources[i].Kind != doc.Resources[j].Kind {
			return doc.Resources[i].Kind < doc.Resources[j].Kind
		}
		return doc.Resources[i].ID < doc.Resources[j].ID
	})

	for _, r := range snapshot.Recipes {
		dto := RecipeDTO{
			ID:          r.ID(),
			Outputs:     amountsToDTO(r.Outputs(), kindsByID),
			Inputs:      amountsToDTO(r.Inputs(), kindsByID),
			TimeSeconds: r.TimeSeconds(),
			Tags:        r.Tags(),
		}
		for _, p := range r.Producers() {
			dto.Producers = append(dto.Producers, ProducerDTO{
				Name:    p.Name,
				Icon:    p.Icon,
				Speed:   p.Speed,
				PowerKW: p.PowerKW,
			})
		}
		doc.Recipes = append(doc.Recipes, dto)
	}
	return doc
}

func amountsToDTO(amounts []production.ItemAmount, kindsByID map[string]int) []AmountDTO {
	if len(amounts) == 0 {
		return nil
	}
	out := make([]AmountDTO, 0, len(amounts))
	for _, a := range amounts {
		ref := a.Resource.String()
		if a.Resource.Kind == production.ResourceKindItem && kindsByID[a.Resource.ID] <= 1 {
			ref = a.Resource.ID
		}
		out = append(out, AmountDTO{Resource: ref, Amount: a.Amount})
	}
	return out
}
