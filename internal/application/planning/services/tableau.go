package services

import (
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// RowKind classifies tableau rows
type RowKind int

const (
	// RowRecipe is a member recipe of the solved group
	RowRecipe RowKind = iota

	// RowProvision is an outside recipe producing one of the group's ingredients
	RowProvision

	// RowImport is a priced-out source of a resource used when recipes cannot
	// cover demand; its rate is reported as unmet demand
	RowImport
)

func (k RowKind) String() string {
	switch k {
	case RowRecipe:
		return "recipe"
	case RowProvision:
		return "provision"
	case RowImport:
		return "import"
	default:
		return "unknown"
	}
}

// TableauRow describes what a tableau row stands for
type TableauRow struct {
	Kind     RowKind
	Recipe   *production.Recipe
	Resource production.ResourceKey
	Provides []production.ResourceKey
}

// RecipeID returns the recipe id of recipe and provision rows
func (r TableauRow) RecipeID() string {
	if r.Recipe == nil {
		return ""
	}
	return r.Recipe.ID()
}

// Tableau is the simplex tableau of one group.
//
// Layout: one row per TableauRow plus a final objective row; columns are the
// touched resources, one slack per row, the objective column and the
// right-hand side. Row costs live in the right-hand side.
type Tableau struct {
	rows     []TableauRow
	columns  []production.ResourceKey
	colIndex map[production.ResourceKey]int
	cells    [][]float64
}

func newTableau(rows []TableauRow, columns []production.ResourceKey) *Tableau {
	t := &Tableau{
		rows:     rows,
		columns:  columns,
		colIndex: make(map[production.ResourceKey]int, len(columns)),
		cells:    make([][]float64, len(rows)+1),
	}
	for i, key := range columns {
		t.colIndex[key] = i
	}
	width := t.Width()
	for i := range t.cells {
		t.cells[i] = make([]float64, width)
	}
	for i, row := range rows {
		switch row.Kind {
		case RowImport:
			t.cells[i][t.colIndex[row.Resource]] = 1
		default:
			for _, key := range row.Recipe.TouchedKeys() {
				t.cells[i][t.colIndex[key]] = row.Recipe.NetAmount(key)
			}
		}
		t.cells[i][t.SlackColumn(i)] = 1
	}
	t.cells[len(rows)][t.ObjectiveColumn()] = 1
	return t
}

// Clone returns a deep copy. Row descriptors are shared.
func (t *Tableau) Clone() *Tableau {
	clone := &Tableau{
		rows:     t.rows,
		columns:  t.columns,
		colIndex: t.colIndex,
		cells:    make([][]float64, len(t.cells)),
	}
	for i, row := range t.cells {
		clone.cells[i] = append([]float64(nil), row...)
	}
	return clone
}

// RowCount returns the number of constraint rows, excluding the objective row
func (t *Tableau) RowCount() int { return len(t.rows) }

// Row returns the descriptor of a constraint row
func (t *Tableau) Row(i int) TableauRow { return t.rows[i] }

// Columns returns the resource columns in order
func (t *Tableau) Columns() []production.ResourceKey {
	return append([]production.ResourceKey(nil), t.columns...)
}

// ResourceColumn returns the column of a resource
func (t *Tableau) ResourceColumn(key production.ResourceKey) (int, bool) {
	i, ok := t.colIndex[key]
	return i, ok
}

// SlackColumn returns the slack column of a row; slacks follow the resource columns
func (t *Tableau) SlackColumn(row int) int { return len(t.columns) + row }

// ObjectiveColumn returns the column holding each row's cost
func (t *Tableau) ObjectiveColumn() int { return len(t.columns) + len(t.rows) }

// RHSColumn returns the right-hand side column
func (t *Tableau) RHSColumn() int { return t.ObjectiveColumn() + 1 }

// Width returns the number of columns in every row
func (t *Tableau) Width() int { return t.RHSColumn() + 1 }

func (t *Tableau) objectiveRow() []float64 { return t.cells[len(t.rows)] }
func (t *Tableau) cell(row, col int) float64 { return t.cells[row][col] }

// Coefficient returns the net amount row i produces of a resource
func (t *Tableau) Coefficient(i int, key production.ResourceKey) float64 {
	col, ok := t.colIndex[key]
	if !ok {
		return 0
	}
	return t.cells[i][col]
}

// Cost returns the cost of a row
func (t *Tableau) Cost(i int) float64 {
	return t.cells[i][t.RHSColumn()]
}

// SetCost sets the cost of a row
func (t *Tableau) SetCost(i int, cost float64) {
	t.cells[i][t.RHSColumn()] = cost
}

// IsDisabled reports whether a row has been zeroed
func (t *Tableau) IsDisabled(i int) bool {
	return t.cells[i][t.SlackColumn(i)] == 0
}

// disableRow zeroes a row entirely so it can never bind or enter the basis
func (t *Tableau) disableRow(i int) {
	for j := range t.cells[i] {
		t.cells[i][j] = 0
	}
}

// setDemand writes the negated demand into the objective row
func (t *Tableau) setDemand(key production.ResourceKey, amount float64) bool {
	col, ok := t.colIndex[key]
	if !ok {
		return false
	}
	t.objectiveRow()[col] = -amount
	return true
}

// pivot performs a Gauss-Jordan elimination step on (row, col)
func (t *Tableau) pivot(row, col int) {
	pivotRow := t.cells[row]
	p := pivotRow[col]
	for j := range pivotRow {
		pivotRow[j] /= p
	}
	for i, r := range t.cells {
		if i == row {
			continue
		}
		factor := r[col]
		if factor == 0 {
			continue
		}
		for j := range r {
			r[j] -= factor * pivotRow[j]
		}
	}
}
