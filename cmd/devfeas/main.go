package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rgehrsitz/devfeas/internal/calculation"
	"github.com/rgehrsitz/devfeas/internal/config"
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/rgehrsitz/devfeas/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	settingsFile string
	settings     = viper.New()
	logger       = zap.NewNop()
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "devfeas %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "devfeas",
	Short: "Property development feasibility calculator",
	Long: `Monthly cashflow feasibility for property developments: land, costs, GST,
stamp duty and land tax, a senior/mezzanine/equity funding waterfall, and
profit, margin and IRR for sell or hold exits.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// setup loads .env and the optional settings file, binds DEVFEAS_* variables and
// the command's flags, then builds the logger
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	settings = viper.New()
	settings.SetEnvPrefix("DEVFEAS")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	if settingsFile != "" {
		settings.SetConfigFile(settingsFile)
		if err := settings.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading settings file %s: %w", settingsFile, err)
		}
	}

	for _, key := range []string{"format", "tax-tables", "target-margin", "rent-yield"} {
		if flag := cmd.Flags().Lookup(key); flag != nil {
			if err := settings.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}
	if err := settings.BindPFlag("debug", cmd.Root().PersistentFlags().Lookup("debug")); err != nil {
		return err
	}

	l, err := newLogger(settings.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger = l
	return nil
}

// loadInput parses and validates a scenario file
func loadInput(path string) (*domain.Configuration, error) {
	cfg, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		logger.Error("failed to load scenarios", zap.String("op", "loadInput"), zap.String("file", path), zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// newEngine builds an engine whose tax tables are the embedded defaults, then the
// scenario file's tax_tables, then the --tax-tables file
func newEngine(cfg *domain.Configuration) (*calculation.Engine, error) {
	var tables *domain.TaxConfiguration
	if cfg != nil && cfg.TaxTables != nil {
		tables = cfg.TaxTables
	}

	if path := settings.GetString("tax-tables"); path != "" {
		overrides, err := config.NewInputParser().LoadTaxTables(path)
		if err != nil {
			return nil, err
		}
		if tables != nil {
			merged := calculation.MergeTaxConfiguration(*tables, overrides)
			tables = &merged
		} else {
			tables = overrides
		}
	}

	engine := calculation.NewEngineWithTaxTables(tables)
	engine.SetLogger(engineLogger(logger))
	return engine, nil
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [input-file]",
	Short: "Calculate feasibility for every scenario in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]

		cfg, err := loadInput(inputFile)
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}

		results, err := engine.RunScenarios(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		for _, r := range results {
			logger.Info("scenario calculated",
				zap.String("op", "calculate"),
				zap.String("scenario", r.Scenario),
				zap.String("run_id", r.RunID))
		}

		report := output.NewReport(inputFile, results)
		format := settings.GetString("format")

		if save, _ := cmd.Flags().GetBool("save"); save {
			f := output.GetFormatterByName(format)
			if f == nil {
				return fmt.Errorf("unsupported format: %s", format)
			}
			path, err := output.WriteFormatted(f, report, fileExtension(f.Name()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		}

		return output.GenerateReport(cmd.OutOrStdout(), report, format)
	},
}

func fileExtension(formatter string) string {
	switch formatter {
	case "csv", "summary-csv":
		return "csv"
	case "json":
		return "json"
	case "yaml":
		return "yaml"
	}
	return "txt"
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadInput(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid (%d scenarios)\n", args[0], len(cfg.Scenarios))
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init [output-file]",
	Short: "Write an example scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := output.SaveConfiguration(exampleConfiguration(), path); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Example scenarios written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "config", "", "Settings file for default flags (yaml, json or toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	calculateCmd.Flags().StringP("format", "f", "console-lite",
		"Output format ("+strings.Join(output.AvailableFormatterNames(), ", ")+")")
	calculateCmd.Flags().String("tax-tables", "", "Tax table override file")
	calculateCmd.Flags().Bool("save", false, "Write the report to a timestamped file instead of stdout")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
