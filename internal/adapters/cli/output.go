package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// JSON views of CLI results

type recipeLineJSON struct {
	RecipeID string  `json:"recipe_id"`
	Rate     float64 `json:"rate_per_minute"`
	Producer string  `json:"producer,omitempty"`
	Machines float64 `json:"machines"`
	PowerKW  float64 `json:"power_kw"`
}

type resourceLineJSON struct {
	Resource string  `json:"resource"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount_per_minute"`
}

type solveJSON struct {
	RecipeRates   map[string]float64 `json:"recipe_rates"`
	Unresolved    map[string]float64 `json:"unresolved"`
	Waste         map[string]float64 `json:"waste"`
	Recipes       []recipeLineJSON   `json:"recipes"`
	RawInputs     []resourceLineJSON `json:"raw_inputs"`
	TotalMachines float64            `json:"total_machines"`
	TotalPowerKW  float64            `json:"total_power_kw"`
}

func keyedJSON(m map[production.ResourceKey]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k.String()] = v
	}
	return out
}

func resourceLinesJSON(lines []services.ResourceLine) []resourceLineJSON {
	out := make([]resourceLineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, resourceLineJSON{Resource: l.Resource.String(), Name: l.Name, Amount: l.Amount})
	}
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSolveJSON writes a solved plan as JSON
func printSolveJSON(w io.Writer, resp *commands.SolvePlanResponse) error {
	out := solveJSON{
		RecipeRates: map[string]float64{},
		Unresolved:  map[string]float64{},
		Waste:       map[string]float64{},
		Recipes:     []recipeLineJSON{},
		RawInputs:   []resourceLineJSON{},
	}
	if resp.Result != nil {
		for id, rate := range resp.Result.RecipeRates {
			out.RecipeRates[id] = rate
		}
		out.Unresolved = keyedJSON(resp.Result.Unresolved)
		out.Waste = keyedJSON(resp.Result.Waste)
	}
	if resp.Report != nil {
		for _, line := range resp.Report.Recipes {
			out.Recipes = append(out.Recipes, recipeLineJSON(line))
		}
		out.RawInputs = resourceLinesJSON(resp.Report.RawInputs)
		out.TotalMachines = resp.Report.TotalMachines
		out.TotalPowerKW = resp.Report.TotalPowerKW
	}
	return writeJSON(w, out)
}

// printSolveText writes a solved plan as aligned tables
func printSolveText(w io.Writer, resp *commands.SolvePlanResponse) {
	report := resp.Report
	if report == nil {
		report = &services.PlanReport{}
	}

	fmt.Fprintln(w, "RECIPES")
	fmt.Fprintln(w, "─────────────────────────────────────────────────────────────")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Recipe\tCrafts/min\tProducer\tMachines\tPower (kW)")
	fmt.Fprintln(tw, "──────\t──────────\t────────\t────────\t──────────")
	for _, line := range report.Recipes {
		producer := line.Producer
		if producer == "" {
			producer = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			line.RecipeID,
			formatRate(line.Rate),
			producer,
			formatRate(line.Machines),
			formatRate(line.PowerKW),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nTotal: %s machines, %s kW\n", formatRate(report.TotalMachines), formatRate(report.TotalPowerKW))

	printResourceSection(w, "RAW INPUTS", report.RawInputs)
	printResourceSection(w, "UNRESOLVED", report.Unresolved)
	printResourceSection(w, "WASTE", report.Waste)
}

func printResourceSection(w io.Writer, title string, lines []services.ResourceLine) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, line := range lines {
		fmt.Fprintf(tw, "  %s\t%s\t%s/min\n", line.Resource.String(), line.Name, formatRate(line.Amount))
	}
	tw.Flush()
}

// printGroupsText writes the catalog decomposition
func printGroupsText(w io.Writer, resp *queries.ListSubGraphsResponse) {
	fmt.Fprintf(w, "Catalog version %d: %d groups\n\n", resp.CatalogVersion, len(resp.SubGraphs))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKind\tDepth\tAfter\tRecipes\tProducts")
	fmt.Fprintln(tw, "──\t────\t─────\t─────\t───────\t────────")
	for _, g := range resp.SubGraphs {
		kind := "simple"
		if g.Complex {
			kind = "complex"
		}
		depth := "-"
		if g.Depth >= 0 {
			depth = fmt.Sprintf("%d", g.Depth)
		}
		after := "-"
		if len(g.DependsOn) > 0 {
			ids := make([]string, len(g.DependsOn))
			for i, id := range g.DependsOn {
				ids[i] = strconv.Itoa(id)
			}
			after = strings.Join(ids, ",")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			g.ID, kind, depth, after, strings.Join(g.RecipeIDs, ","), strings.Join(g.Products, ","))
	}
	tw.Flush()

	if len(resp.MergeGroups) > 0 {
		fmt.Fprintln(w, "\nMERGED (shared products)")
		for _, group := range resp.MergeGroups {
			fmt.Fprintf(w, "  %s\n", strings.Join(group, ", "))
		}
	}
}

// printPlanText writes a saved plan
func printPlanText(w io.Writer, plan *planning.PlanSnapshot) {
	fmt.Fprintf(w, "Plan:     %s\n", plan.ID)
	fmt.Fprintf(w, "Name:     %s\n", plan.Name)
	fmt.Fprintf(w, "Updated:  %s\n", plan.UpdatedAt.Format("2006-01-02 15:04:05"))
	if len(plan.Inputs) > 0 {
		fmt.Fprintf(w, "Inputs:   %s\n", strings.Join(plan.Inputs, ", "))
	}
	fmt.Fprintln(w, "Outputs:")
	for i, output := range plan.Outputs {
		amount := "(missing)"
		if i < len(plan.OutputAmounts) {
			amount = formatRate(plan.OutputAmounts[i]) + "/min"
		}
		fmt.Fprintf(w, "  %s\t%s\n", output, amount)
	}
	if len(plan.TierSelections) > 0 {
		producers := make([]string, 0, len(plan.TierSelections))
		for p := range plan.TierSelections {
			producers = append(producers, p)
		}
		sort.Strings(producers)
		fmt.Fprintln(w, "Tiers:")
		for _, p := range producers {
			fmt.Fprintf(w, "  %s\tx%s\n", p, plan.TierSelections[p])
		}
	}
	if plan.ShapeMismatch() {
		fmt.Fprintln(w, "\n⚠ Outputs and amounts differ in length; run 'planner plan normalize' before solving.")
	}
}

// formatRate trims trailing zeros from a rate
func formatRate(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
