package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
)

// NewPlanCommand creates the plan command with subcommands
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage saved plans",
		Long: `Save, inspect and solve named plans.

A plan stores its target outputs with their rates, the resources treated as
external inputs, and per-producer speed multipliers. Plans live in the
configured database.

Examples:
  planner plan save --name "Circuit Line" --output circuit=10 --input iron
  planner plan list
  planner plan load plan-circuit-line-1a2b3c4d
  planner plan solve plan-circuit-line-1a2b3c4d --disable plastic-from-biomass`,
	}

	cmd.AddCommand(newPlanSaveCommand())
	cmd.AddCommand(newPlanLoadCommand())
	cmd.AddCommand(newPlanListCommand())
	cmd.AddCommand(newPlanNormalizeCommand())
	cmd.AddCommand(newPlanDeleteCommand())
	cmd.AddCommand(newPlanSolveCommand())

	return cmd
}

func newPlanSaveCommand() *cobra.Command {
	var (
		id      string
		name    string
		inputs  []string
		outputs []string
		tiers   []string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a plan",
		Long: `Save a plan. Outputs keep the order they are given in.

Examples:
  planner plan save --name "Circuit Line" --output circuit=10 --output gear=2
  planner plan save --id my-plan --name "Mine" --output plastic=30 --tier assembler=2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			save := &commands.SavePlanCommand{
				ID:             id,
				Name:           name,
				Inputs:         inputs,
				TierSelections: map[string]string{},
			}
			for _, raw := range outputs {
				ref, rate, err := parseAmountPair(raw)
				if err != nil {
					return err
				}
				save.Outputs = append(save.Outputs, ref)
				save.OutputAmounts = append(save.OutputAmounts, rate)
			}
			for _, raw := range tiers {
				producer, multiplier, ok := strings.Cut(raw, "=")
				if !ok || strings.TrimSpace(producer) == "" {
					return fmt.Errorf("invalid tier %q: expected producer=multiplier", raw)
				}
				save.TierSelections[strings.TrimSpace(producer)] = strings.TrimSpace(multiplier)
			}
			if _, err := commands.TierParamsFromSelections(save.TierSelections); err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			m, err := a.mediator(ctx, true)
			if err != nil {
				return err
			}
			resp, err := m.Send(ctx, save)
			if err != nil {
				return err
			}
			plan := resp.(*commands.SavePlanResponse).Plan

			if a.outputJSON() {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Plan saved: %s\n", plan.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Plan id (default: generated from the name)")
	cmd.Flags().StringVar(&name, "name", "", "Plan name")
	cmd.Flags().StringSliceVar(&inputs, "input", nil, "Resources supplied from outside the plan")
	cmd.Flags().StringArrayVar(&outputs, "output", nil, "Target output as resource=rate (repeatable, ordered)")
	cmd.Flags().StringArrayVar(&tiers, "tier", nil, "Producer speed multiplier as producer=multiplier")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("output")

	return cmd
}

func newPlanLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <plan-id>",
		Short: "Show a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			m, err := a.mediator(ctx, true)
			if err != nil {
				return err
			}
			resp, err := m.Send(ctx, &queries.LoadPlanQuery{PlanID: args[0]})
			if err != nil {
				return err
			}
			loaded := resp.(*queries.LoadPlanResponse)

			if a.outputJSON() {
				return writeJSON(cmd.OutOrStdout(), loaded.Plan)
			}
			printPlanText(cmd.OutOrStdout(), loaded.Plan)
			return nil
		},
	}
}

func newPlanListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			m, err := a.mediator(ctx, true)
			if err != nil {
				return err
			}
			resp, err := m.Send(ctx, &queries.ListPlansQuery{})
			if err != nil {
				return err
			}
			plans := resp.(*queries.ListPlansResponse).Plans

			out := cmd.OutOrStdout()
			if a.outputJSON() {
				return writeJSON(out, plans)
			}
			if len(plans) == 0 {
				fmt.Fprintln(out, "No plans saved")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tName\tOutputs\tUpdated\t")
			fmt.Fprintln(tw, "──\t────\t───────\t───────\t")
			for _, p := range plans {
				flag := ""
				if p.ShapeMismatch {
					flag = "⚠ needs normalize"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					p.ID, p.Name, p.Outputs, p.UpdatedAt.Format("2006-01-02 15:04"), flag)
			}
			return tw.Flush()
		},
	}
}

func newPlanNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <plan-id>",
		Short: "Repair a plan whose outputs and amounts differ in length",
		Long: `Pad missing output amounts with zero or drop amounts without an output,
then store the plan again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			m, err := a.mediator(ctx, true)
			if err != nil {
				return err
			}
			resp, err := m.Send(ctx, &commands.NormalizePlanCommand{PlanID: args[0]})
			if err != nil {
				return err
			}
			normalized := resp.(*commands.NormalizePlanResponse)

			if normalized.Changed {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Plan %s normalized\n", normalized.Plan.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Plan %s already consistent\n", normalized.Plan.ID)
			}
			return nil
		},
	}
}

func newPlanDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <plan-id>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			m, err := a.mediator(ctx, true)
			if err != nil {
				return err
			}
			resp, err := m.Send(ctx, &commands.DeletePlanCommand{PlanID: args[0]})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Plan %s deleted\n", resp.(*commands.DeletePlanResponse).PlanID)
			return nil
		},
	}
}

func newPlanSolveCommand() *cobra.Command {
	var (
		disabled []string
		showTree bool
		compact  bool
	)

	cmd := &cobra.Command{
		Use:   "solve <plan-id>",
		Short: "Solve a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			client, err := a.plannerClient(ctx, true)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.SolveSavedPlan(ctx, &commands.SolveSavedPlanCommand{
				PlanID:   args[0],
				Disabled: disabled,
			})
			if err != nil {
				return err
			}
			return renderSolve(cmd, a, resp, treeMode(showTree, compact))
		},
	}

	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "Recipe ids to exclude")
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print the demand tree")
	cmd.Flags().BoolVar(&compact, "compact-tree", false, "Print the demand tree on one line")

	return cmd
}
