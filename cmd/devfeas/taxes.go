package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var taxesCmd = &cobra.Command{
	Use:   "taxes",
	Short: "Evaluate stamp duty and land tax for an amount",
	Long: `Evaluate stamp duty and land tax from the embedded tables, or from the
tables after applying a --tax-tables override file.

Examples:
  devfeas taxes --jurisdiction VIC --amount 1000000
  devfeas taxes --jurisdiction NSW --amount 2400000 --foreign
  devfeas taxes --list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(nil)
		if err != nil {
			return err
		}
		taxes := engine.Taxes
		out := cmd.OutOrStdout()

		if list, _ := cmd.Flags().GetBool("list"); list {
			codes := make([]string, 0, len(taxes.Config.Jurisdictions))
			for code := range taxes.Config.Jurisdictions {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			for _, code := range codes {
				var kinds []string
				for _, taxType := range []domain.TaxType{domain.TaxStampDuty, domain.TaxLandTax} {
					if _, ok := taxes.Config.Jurisdictions[code][taxType]; ok {
						kinds = append(kinds, string(taxType))
					}
				}
				fmt.Fprintf(out, "%-6s %s\n", code, strings.Join(kinds, ", "))
			}
			fmt.Fprintf(out, "fallback: stamp_duty %s%%, land_tax %s%%\n",
				taxes.FallbackRate(domain.TaxStampDuty).Mul(decimal.NewFromInt(100)).StringFixed(2),
				taxes.FallbackRate(domain.TaxLandTax).Mul(decimal.NewFromInt(100)).StringFixed(2))
			return nil
		}

		jurisdiction, _ := cmd.Flags().GetString("jurisdiction")
		amountText, _ := cmd.Flags().GetString("amount")
		foreign, _ := cmd.Flags().GetBool("foreign")
		if jurisdiction == "" {
			return fmt.Errorf("--jurisdiction is required")
		}
		amount, err := decimal.NewFromString(amountText)
		if err != nil {
			return fmt.Errorf("invalid --amount %q: %w", amountText, err)
		}

		fmt.Fprintf(out, "Jurisdiction: %s\n", strings.ToUpper(jurisdiction))
		fmt.Fprintf(out, "Amount:       $%s\n", amount.StringFixed(2))
		for _, taxType := range []domain.TaxType{domain.TaxStampDuty, domain.TaxLandTax} {
			liability := taxes.Evaluate(amount, jurisdiction, taxType, foreign)
			source := "schedule"
			if _, ok := taxes.Schedule(jurisdiction, taxType); !ok {
				source = "fallback rate"
			}
			fmt.Fprintf(out, "%-13s $%s (%s)\n", label(taxType)+":", liability.StringFixed(2), source)
		}
		return nil
	},
}

func label(taxType domain.TaxType) string {
	if taxType == domain.TaxStampDuty {
		return "Stamp duty"
	}
	return "Land tax"
}

func init() {
	taxesCmd.Flags().String("jurisdiction", "", "Jurisdiction code, e.g. VIC")
	taxesCmd.Flags().String("amount", "0", "Dutiable value or land value")
	taxesCmd.Flags().Bool("foreign", false, "Apply the foreign purchaser surcharge")
	taxesCmd.Flags().Bool("list", false, "List configured jurisdictions")
	taxesCmd.Flags().String("tax-tables", "", "Tax table override file")

	rootCmd.AddCommand(taxesCmd)
}
