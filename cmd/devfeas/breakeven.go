package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/devfeas/internal/breakeven"
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var residualCmd = &cobra.Command{
	Use:   "residual [input-file]",
	Short: "Find the highest land price that still earns the target margin",
	Long: `Solve for residual land value: the land price at which the scenario earns
exactly the target margin on cost.

Example:
  devfeas residual site.yaml --scenario Townhouses --target-margin 20
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, solver, err := solverFor(cmd, args[0])
		if err != nil {
			return err
		}
		margin := decimal.NewFromFloat(settings.GetFloat64("target-margin"))

		result, err := solver.ResidualLandValue(cmd.Context(), scenario, margin)
		if err != nil {
			logger.Error("residual land value failed", zap.String("op", "residual"), zap.String("scenario", scenario.Name), zap.Error(err))
			return err
		}
		return printSolveResult(cmd, result)
	},
}

var breakEvenCmd = &cobra.Command{
	Use:   "breakeven [input-file]",
	Short: "Solve sale price, construction cost or land price targets",
	Long: `Solve for the value of one input that meets a profit or margin goal.

Targets:
  sale_price         sale price change (%) at which net profit is zero
  construction_cost  construction change (%) that still earns the target margin
  residual_land      land price that still earns the target margin
  all                every target, with a headroom summary

Example:
  devfeas breakeven site.yaml --target sale_price
  devfeas breakeven site.yaml --target all --target-margin 18 --format json
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, solver, err := solverFor(cmd, args[0])
		if err != nil {
			return err
		}
		margin := decimal.NewFromFloat(settings.GetFloat64("target-margin"))
		target, _ := cmd.Flags().GetString("target")

		if strings.EqualFold(target, "all") {
			multi, err := solver.SolveAll(cmd.Context(), scenario, margin)
			if err != nil {
				logger.Error("break-even analysis failed", zap.String("op", "breakeven"), zap.String("scenario", scenario.Name), zap.Error(err))
				return err
			}
			if strings.EqualFold(settings.GetString("format"), "json") {
				text, err := (&breakeven.JSONFormatter{Pretty: true}).FormatMulti(multi)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), (&breakeven.TableFormatter{}).FormatMulti(multi))
			return nil
		}

		req := breakeven.SolveRequest{Base: scenario, Target: breakeven.SolveTarget(strings.ToLower(target))}
		if req.Target != breakeven.TargetSalePrice {
			req.Constraints.TargetMargin = &margin
		}
		if v, _ := cmd.Flags().GetFloat64("min"); cmd.Flags().Changed("min") {
			lo := decimal.NewFromFloat(v)
			req.Constraints.MinValue = &lo
		}
		if v, _ := cmd.Flags().GetFloat64("max"); cmd.Flags().Changed("max") {
			hi := decimal.NewFromFloat(v)
			req.Constraints.MaxValue = &hi
		}

		result, err := solver.Solve(cmd.Context(), req)
		if err != nil {
			logger.Error("break-even analysis failed", zap.String("op", "breakeven"), zap.String("scenario", scenario.Name), zap.Error(err))
			return err
		}
		return printSolveResult(cmd, result)
	},
}

// solverFor loads the input file and picks the --scenario (or the first one)
func solverFor(cmd *cobra.Command, inputFile string) (*domain.Scenario, *breakeven.Solver, error) {
	cfg, err := loadInput(inputFile)
	if err != nil {
		return nil, nil, err
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, nil, err
	}

	name, _ := cmd.Flags().GetString("scenario")
	scenario := &cfg.Scenarios[0]
	if name != "" {
		scenario = nil
		for i := range cfg.Scenarios {
			if cfg.Scenarios[i].Name == name {
				scenario = &cfg.Scenarios[i]
				break
			}
		}
		if scenario == nil {
			return nil, nil, fmt.Errorf("scenario %s not found in %s", name, inputFile)
		}
	}

	options := breakeven.DefaultSolverOptions()
	if iterations, _ := cmd.Flags().GetInt("max-iterations"); iterations > 0 {
		options.MaxIterations = iterations
	}
	return scenario, breakeven.NewSolver(engine, options), nil
}

func printSolveResult(cmd *cobra.Command, result *breakeven.SolveResult) error {
	if strings.EqualFold(settings.GetString("format"), "json") {
		text, err := (&breakeven.JSONFormatter{Pretty: true}).Format(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), (&breakeven.TableFormatter{}).Format(result))
	return nil
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().String("scenario", "", "Scenario to solve (default: first scenario)")
	cmd.Flags().Float64("target-margin", 20, "Target margin on cost, in percent")
	cmd.Flags().Int("max-iterations", 0, "Bisection step limit (default 60)")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	cmd.Flags().String("tax-tables", "", "Tax table override file")
}

func init() {
	addSolverFlags(residualCmd)
	addSolverFlags(breakEvenCmd)
	breakEvenCmd.Flags().String("target", string(breakeven.TargetSalePrice), "Solve target (sale_price, construction_cost, residual_land, all)")
	breakEvenCmd.Flags().Float64("min", 0, "Lower search bound (price for residual_land, percent otherwise)")
	breakEvenCmd.Flags().Float64("max", 0, "Upper search bound (price for residual_land, percent otherwise)")

	rootCmd.AddCommand(residualCmd)
	rootCmd.AddCommand(breakEvenCmd)
}
