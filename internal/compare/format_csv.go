package compare

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Strategy",
		"Net Profit",
		"Margin on Cost",
		"Margin on Revenue",
		"Equity IRR",
		"Project IRR",
		"Peak Debt",
		"Peak Equity",
		"Total Project Cost",
		"Shortfall Months",
		"Profit Diff from Base",
		"Profit % Change",
		"Margin Diff from Base",
		"Peak Debt Diff from Base",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
		return "", err
	}

	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		string(result.Strategy),
		result.NetProfit.StringFixed(2),
		result.MarginOnCost.StringFixed(2),
		result.MarginOnRevenue.StringFixed(2),
		formatRate(result.EquityIRR.Defined, result.EquityIRR.Annual.StringFixed(6)),
		formatRate(result.ProjectIRR.Defined, result.ProjectIRR.Annual.StringFixed(6)),
		result.PeakDebt.StringFixed(2),
		result.PeakEquity.StringFixed(2),
		result.TotalProjectCost.StringFixed(2),
		formatInt(result.ShortfallMonths),
		result.ProfitDiffFromBase.StringFixed(2),
		result.ProfitPctFromBase.StringFixed(2),
		result.MarginDiffFromBase.StringFixed(2),
		result.PeakDebtDiffFromBase.StringFixed(2),
	}
}

// formatRate leaves undefined rates blank
func formatRate(defined bool, s string) string {
	if !defined {
		return ""
	}
	return s
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
