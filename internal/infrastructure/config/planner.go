package config

// PlannerConfig holds solver and catalog settings
type PlannerConfig struct {
	// Default catalog file used when a command does not name one
	Catalog string `mapstructure:"catalog"`

	// Maximum simplex pivots per subgraph solve
	MaxIterations int `mapstructure:"max_iterations" validate:"min=1"`

	// Rates below this are treated as zero
	Epsilon float64 `mapstructure:"epsilon" validate:"gt=0,lt=1"`

	// Recipe cost model
	Cost CostConfig `mapstructure:"cost"`
}

// CostConfig selects how recipes are priced when alternatives exist
type CostConfig struct {
	// Strategy: waste (penalize expensive inputs) or uniform (every recipe costs 1)
	Strategy string `mapstructure:"strategy" validate:"required,oneof=waste uniform"`

	// Penalties by resource reference ("kind:id" or bare item id)
	Penalties map[string]float64 `mapstructure:"penalties" validate:"dive,keys,resource_ref,endkeys,gte=0"`
}
