package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/render"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
	"github.com/MikeSquared-Agency/Quotes/internal/session"
)

func newScenarioCommand(g *globals) *cobra.Command {
	var (
		vendorID string
		weights  map[string]string
	)
	cmd := &cobra.Command{
		Use:   "scenario <id>",
		Short: "Resolve a selection scenario and print its summary",
		Long: `Resolve a selection scenario against the catalog.

Custom weights given with --weight are overlaid on the defaults and must
total exactly 100%. They change the overall score of every product.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := g.load()
			if err != nil {
				return err
			}
			st := session.New(cat)
			if len(weights) > 0 {
				v, err := weightInput(weights)
				if err != nil {
					return err
				}
				if st, err = session.Reduce(cat, st, session.ApplyWeights{Vector: v}); err != nil {
					return err
				}
			}
			st, err = session.Reduce(cat, st, session.ChangeScenario{
				Scenario: scoring.ScenarioID(args[0]),
				VendorID: vendorID,
			})
			if err != nil {
				return err
			}
			return render.Summary(cmd.OutOrStdout(), session.Summarize(cat, st), g.options())
		},
	}
	cmd.Flags().StringVar(&vendorID, "vendor", "", "Vendor ID for the selectVendor scenario")
	cmd.Flags().StringToStringVarP(&weights, "weight", "w", nil, "Custom weight overrides, e.g. S01=30,S03=4")
	return cmd
}

func newScenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the selectable scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render.Scenarios(cmd.OutOrStdout(), scoring.Scenarios())
		},
	}
}

func newWeightsCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Inspect custom weight vectors",
	}
	cmd.AddCommand(newWeightsCheckCommand(g))
	return cmd
}

func newWeightsCheckCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check [CODE=PERCENT ...]",
		Short: "Check that a weight vector totals 100%",
		Long: `Check a weight vector before applying it.

Entries override the default weights. Blank values count as zero and values
above 100 are capped. The command fails when the total is not exactly 100%.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := make(map[string]string, len(args))
			for _, arg := range args {
				code, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("%w: expected CODE=PERCENT, got %q", scoring.ErrWeightInput, arg)
				}
				raw[code] = value
			}
			v, err := weightInput(raw)
			if err != nil {
				return err
			}

			var labels [catalog.NumWeighted]string
			for i, c := range catalog.WeightedCriteria() {
				labels[i] = c.Label()
			}
			if err := render.Weights(cmd.OutOrStdout(), labels, v, g.options()); err != nil {
				return err
			}
			_, err = v.Validate()
			return err
		},
	}
}

func newVendorsCommand(g *globals) *cobra.Command {
	var (
		code    string
		weights map[string]string
	)
	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "Compare vendor average scores and total costs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := g.load()
			if err != nil {
				return err
			}
			crit, err := catalog.ParseCriterion(code)
			if err != nil {
				return err
			}
			w, err := customWeights(weights)
			if err != nil {
				return err
			}
			return render.Vendors(cmd.OutOrStdout(), cat, crit, w, scoring.QuantityPlan(cat.DefaultQuantities()), g.options())
		},
	}
	cmd.Flags().StringVar(&code, "criterion", catalog.Overall.Code(), "Criterion code to average")
	cmd.Flags().StringToStringVarP(&weights, "weight", "w", nil, "Custom weight overrides, e.g. S01=30,S03=4")
	return cmd
}

func newBreakdownCommand(g *globals) *cobra.Command {
	var weights map[string]string
	cmd := &cobra.Command{
		Use:   "breakdown <equipment-id> <vendor-id>",
		Short: "Explain the overall score of one product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := g.load()
			if err != nil {
				return err
			}
			p, ok := cat.Product(args[0], args[1])
			if !ok {
				return fmt.Errorf("%w: no product for %s/%s", catalog.ErrUnknownReference, args[0], args[1])
			}
			w, err := customWeights(weights)
			if err != nil {
				return err
			}
			return render.Breakdown(cmd.OutOrStdout(), scoring.Breakdown(cat, p, w), g.options())
		},
	}
	cmd.Flags().StringToStringVarP(&weights, "weight", "w", nil, "Custom weight overrides, e.g. S01=30,S03=4")
	return cmd
}

func newFrontierCommand(g *globals) *cobra.Command {
	var weights map[string]string
	cmd := &cobra.Command{
		Use:   "frontier <equipment-id>",
		Short: "List the products no other quote beats on both price and score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := g.load()
			if err != nil {
				return err
			}
			if _, ok := cat.EquipmentType(args[0]); !ok {
				return fmt.Errorf("%w: equipment %q", catalog.ErrUnknownReference, args[0])
			}
			w, err := customWeights(weights)
			if err != nil {
				return err
			}
			return render.Frontier(cmd.OutOrStdout(), scoring.Frontier(cat, args[0], w))
		},
	}
	cmd.Flags().StringToStringVarP(&weights, "weight", "w", nil, "Custom weight overrides, e.g. S01=30,S03=4")
	return cmd
}
