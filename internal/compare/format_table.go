package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing scenarios
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	// Header
	sb.WriteString("DEVELOPMENT SCENARIO COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 92) + "\n")
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", compSet.BaseScenarioName))
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", compSet.ConfigPath))
	}
	sb.WriteString("\n")

	nameWidth := 28
	numWidth := 12

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "Net Profit",
		numWidth, "Margin",
		numWidth, "Equity IRR",
		numWidth, "Peak Debt",
		numWidth, "Funded"))
	sb.WriteString(strings.Repeat("-", 92) + "\n")

	base := compSet.BaseResult
	sb.WriteString(tf.formatRow(base, nameWidth, numWidth, true))

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 92) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 92) + "\n")

	// Deltas from base
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 92) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}

			sb.WriteString(fmt.Sprintf("  Net Profit:       %s$%s (%s%%)\n",
				tf.deltaSign(alt.ProfitDiffFromBase),
				tf.formatDecimal(alt.ProfitDiffFromBase.Abs()),
				alt.ProfitPctFromBase.StringFixed(1)))

			if !alt.MarginDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Margin on Cost:   %s%s pts\n",
					tf.deltaSymbol(alt.MarginDiffFromBase),
					alt.MarginDiffFromBase.StringFixed(2)))
			}

			if alt.IRRDiffFromBase != nil {
				pts := alt.IRRDiffFromBase.Mul(decimal.NewFromInt(100))
				sb.WriteString(fmt.Sprintf("  Equity IRR:       %s%s pts\n", tf.deltaSymbol(pts), pts.StringFixed(2)))
			}

			if !alt.PeakDebtDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Peak Debt:        %s$%s\n",
					tf.deltaSign(alt.PeakDebtDiffFromBase),
					tf.formatDecimal(alt.PeakDebtDiffFromBase.Abs())))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 92) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single scenario row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	funded := "yes"
	if !result.Feasible() {
		funded = fmt.Sprintf("gap %dm", result.ShortfallMonths)
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, "$"+tf.formatDecimal(result.NetProfit),
		numWidth, result.MarginOnCost.StringFixed(2)+"%",
		numWidth, result.EquityIRR.String(),
		numWidth, "$"+tf.formatDecimal(result.PeakDebt),
		numWidth, funded)
}

// formatDecimal formats a decimal for display in thousands or millions
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

// deltaSymbol prefixes positive values; negatives carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

// deltaSign is used where the magnitude is printed without its sign
func (tf *TableFormatter) deltaSign(delta decimal.Decimal) string {
	if delta.IsNegative() {
		return "-"
	}
	if delta.IsPositive() {
		return "+"
	}
	return " "
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary for each scenario
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		profitChange := "="
		if alt.ProfitDiffFromBase.IsPositive() {
			profitChange = fmt.Sprintf("+$%s", tf.formatDecimal(alt.ProfitDiffFromBase))
		} else if alt.ProfitDiffFromBase.IsNegative() {
			profitChange = fmt.Sprintf("-$%s", tf.formatDecimal(alt.ProfitDiffFromBase.Abs()))
		}

		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, profitChange))
	}

	return sb.String()
}
