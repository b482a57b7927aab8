package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
)

// NewSolveCommand creates the solve command
func NewSolveCommand() *cobra.Command {
	var (
		targets  []string
		ignore   []string
		disabled []string
		showTree bool
		compact  bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Compute recipe rates for target outputs",
		Long: `Compute the recipe execution rates that produce the target outputs.

Targets are resource=rate pairs in units per minute. Resources are bare item
ids or kind:id references such as element:water.

Examples:
  planner solve --target circuit=10
  planner solve --target circuit=10 --target gear=5 --ignore iron --ignore copper
  planner solve --target plastic=30 --disable plastic-from-biomass --tree
  planner solve --target circuit=10 --daemon --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseTargets(targets)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			client, err := a.plannerClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Solve(ctx, &commands.SolvePlanCommand{
				Targets:  parsed,
				Ignore:   ignore,
				Disabled: disabled,
			})
			if err != nil {
				return err
			}
			return renderSolve(cmd, a, resp, treeMode(showTree, compact))
		},
	}

	cmd.Flags().StringArrayVarP(&targets, "target", "t", nil, "Target output as resource=rate (repeatable)")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Resources supplied from outside the plan")
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "Recipe ids to exclude")
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print the demand tree")
	cmd.Flags().BoolVar(&compact, "compact-tree", false, "Print the demand tree on one line")
	cmd.MarkFlagRequired("target")

	return cmd
}

// NewGroupsCommand creates the groups command
func NewGroupsCommand() *cobra.Command {
	var complexOnly bool

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Show how the catalog decomposes into recipe groups",
		Long: `List the recipe groups the planner solves independently.

Complex groups (several recipes or several outputs) are solved by the linear
solver; depth is their position in the bottom-up solve order.

Examples:
  planner groups
  planner groups --complex --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			client, err := a.plannerClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.ListSubGraphs(ctx, &queries.ListSubGraphsQuery{ComplexOnly: complexOnly})
			if err != nil {
				return err
			}
			if a.outputJSON() {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printGroupsText(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&complexOnly, "complex", false, "Only show groups solved by the linear solver")

	return cmd
}

type treeStyle int

const (
	treeNone treeStyle = iota
	treeFull
	treeCompact
)

func treeMode(full, compact bool) treeStyle {
	switch {
	case compact:
		return treeCompact
	case full:
		return treeFull
	default:
		return treeNone
	}
}

func renderSolve(cmd *cobra.Command, a *app, resp *commands.SolvePlanResponse, style treeStyle) error {
	out := cmd.OutOrStdout()
	if a.outputJSON() {
		return printSolveJSON(out, resp)
	}

	printSolveText(out, resp)
	if resp.Result == nil || style == treeNone {
		return nil
	}

	formatter := NewTreeFormatter(false, false)
	fmt.Fprintln(out, "\nDEMAND TREE")
	if style == treeCompact {
		fmt.Fprintln(out, formatter.FormatCompactTree(resp.Result.Required))
	} else {
		fmt.Fprint(out, formatter.FormatTree(resp.Result.Required))
	}
	fmt.Fprintln(out, formatter.FormatTreeSummary(resp.Result.Required))
	return nil
}

// parseTargets reads resource=rate pairs
func parseTargets(values []string) (map[string]float64, error) {
	targets := make(map[string]float64, len(values))
	for _, v := range values {
		ref, rate, err := parseAmountPair(v)
		if err != nil {
			return nil, err
		}
		targets[ref] += rate
	}
	return targets, nil
}

func parseAmountPair(v string) (string, float64, error) {
	ref, raw, ok := strings.Cut(v, "=")
	ref = strings.TrimSpace(ref)
	if !ok || ref == "" {
		return "", 0, fmt.Errorf("invalid target %q: expected resource=rate", v)
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid rate in %q: %w", v, err)
	}
	return ref, rate, nil
}
