package production

import (
	"fmt"
	"strings"
)

// Domain errors for the recipe graph

// ErrUnknownResource indicates a resource is not in the catalog
type ErrUnknownResource struct {
	Resource string
}

func (e *ErrUnknownResource) Error() string {
	return fmt.Sprintf("unknown resource: %s (not in catalog)", e.Resource)
}

// ErrUnknownRecipe indicates a recipe id is not in the catalog
type ErrUnknownRecipe struct {
	RecipeID string
}

func (e *ErrUnknownRecipe) Error() string {
	return fmt.Sprintf("unknown recipe: %s (not in catalog)", e.RecipeID)
}

// ErrZeroOutput indicates a recipe yields nothing of a resource it was selected to produce
type ErrZeroOutput struct {
	RecipeID string
	Resource ResourceKey
}

func (e *ErrZeroOutput) Error() string {
	return fmt.Sprintf("recipe %s has no positive output of %s", e.RecipeID, e.Resource)
}

// ErrInvalidAmount indicates a demand that is negative or not finite
type ErrInvalidAmount struct {
	Resource ResourceKey
	Amount   float64
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("invalid amount %v for %s", e.Amount, e.Resource)
}

// ErrInvalidCatalog collects the structural problems found in a catalog snapshot
type ErrInvalidCatalog struct {
	Problems []string
}

func (e *ErrInvalidCatalog) Error() string {
	return fmt.Sprintf("invalid catalog: %s", strings.Join(e.Problems, "; "))
}
