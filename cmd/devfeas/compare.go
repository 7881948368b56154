package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/devfeas/internal/compare"
	"github.com/rgehrsitz/devfeas/internal/transform"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var compareCmd = &cobra.Command{
	Use:   "compare [input-file]",
	Short: "Compare a base scenario against templates, adjustments or other scenarios",
	Long: `Compare a base development scenario against alternatives.

Examples:
  devfeas compare site.yaml --base Townhouses --with sale_price_down_10,construction_up_10
  devfeas compare site.yaml --adjust "land_price=1400000;construction_cost_pct=5"
  devfeas compare site.yaml --base Townhouses --scenarios "Townhouses (staged)"
  devfeas compare site.yaml --strategy --rent-yield 0.045
  devfeas compare --list-templates
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	rentYield := decimal.NewFromFloat(settings.GetFloat64("rent-yield"))

	if list, _ := cmd.Flags().GetBool("list-templates"); list {
		fmt.Fprint(cmd.OutOrStdout(), transform.GetTemplateHelp(transform.CreateBuiltInTemplates(rentYield)))
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("input file required for comparison (use --list-templates to see available templates)")
	}
	inputFile := args[0]

	cfg, err := loadInput(inputFile)
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	compareEngine := compare.NewCompareEngine(engine)

	baseName, _ := cmd.Flags().GetString("base")
	templates, _ := cmd.Flags().GetString("with")
	adjust, _ := cmd.Flags().GetString("adjust")
	scenarios, _ := cmd.Flags().GetStringSlice("scenarios")
	strategy, _ := cmd.Flags().GetBool("strategy")

	var compSet *compare.ComparisonSet
	switch {
	case strategy:
		base := &cfg.Scenarios[0]
		if baseName != "" {
			found := false
			for i := range cfg.Scenarios {
				if cfg.Scenarios[i].Name == baseName {
					base, found = &cfg.Scenarios[i], true
					break
				}
			}
			if !found {
				return fmt.Errorf("base scenario %s not found in configuration", baseName)
			}
		}
		compSet, err = compareEngine.CompareStrategies(cmd.Context(), base, nil, rentYield)

	case len(scenarios) > 0:
		compSet, err = compareEngine.CompareScenarios(cmd.Context(), cfg, baseName, scenarios)

	default:
		options := compare.CompareOptions{
			BaseScenarioName: baseName,
			Templates:        transform.ParseTemplateList(templates),
			RentYield:        rentYield,
		}
		if adjust != "" {
			options.Adjustments, err = transform.NewTransformRegistry().ParseTransformList(adjust)
			if err != nil {
				return fmt.Errorf("invalid --adjust: %w", err)
			}
		}
		if len(options.Templates) == 0 && len(options.Adjustments) == 0 {
			return fmt.Errorf("nothing to compare: use --with, --adjust, --scenarios or --strategy")
		}
		compSet, err = compareEngine.Compare(cmd.Context(), cfg, options)
	}
	if err != nil {
		logger.Error("comparison failed", zap.String("op", "compare"), zap.String("scenario", baseName), zap.Error(err))
		return fmt.Errorf("comparison failed: %w", err)
	}
	compSet.ConfigPath = inputFile

	out := cmd.OutOrStdout()
	format := settings.GetString("format")
	switch strings.ToLower(format) {
	case "csv":
		text, err := (&compare.CSVFormatter{}).Format(compSet)
		if err != nil {
			return fmt.Errorf("failed to format CSV: %w", err)
		}
		fmt.Fprint(out, text)
	case "json":
		text, err := (&compare.JSONFormatter{Pretty: true}).Format(compSet)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprint(out, text)
	case "compact":
		fmt.Fprintln(out, (&compare.TableFormatter{}).FormatCompact(compSet))
	case "table", "console", "":
		fmt.Fprint(out, (&compare.TableFormatter{}).Format(compSet))
	default:
		return fmt.Errorf("unknown output format: %s (valid: table, compact, csv, json)", format)
	}
	return nil
}

func init() {
	compareCmd.Flags().String("base", "", "Base scenario name (default: first scenario)")
	compareCmd.Flags().String("with", "", "Comma-separated list of templates to compare")
	compareCmd.Flags().String("adjust", "", `Semicolon-separated assumption changes applied together, e.g. "land_price=1400000;sale_price_pct=-5"`)
	compareCmd.Flags().StringSlice("scenarios", nil, "Other scenarios in the file to compare against the base")
	compareCmd.Flags().Bool("strategy", false, "Compare the base scenario's exit against the opposite exit (sell vs hold)")
	compareCmd.Flags().Float64("rent-yield", compare.DefaultRentYield.InexactFloat64(), "Gross rent yield used when converting sales to hold")
	compareCmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
	compareCmd.Flags().String("tax-tables", "", "Tax table override file")
	compareCmd.Flags().Bool("list-templates", false, "List all available scenario templates")

	rootCmd.AddCommand(compareCmd)
}
