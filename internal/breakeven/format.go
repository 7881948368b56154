package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats solver results as a console table
type TableFormatter struct{}

// Format generates a formatted table for a solver result
func (tf *TableFormatter) Format(result *SolveResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Scenario:            %s\n", result.Scenario))
	sb.WriteString(fmt.Sprintf("Solve Target:        %s\n", result.Target))
	if result.TargetMargin != nil {
		sb.WriteString(fmt.Sprintf("Target Margin:       %s%% on cost\n", result.TargetMargin.StringFixed(2)))
	}
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("SOLVED VALUE\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-21s%s\n", tf.valueLabel(result.Target)+":", tf.formatValue(result.Target, result.Value)))
	if result.Target == TargetResidualLand {
		sb.WriteString(fmt.Sprintf("Current Land Price:  $%s\n", tf.formatCurrency(result.BaseValue)))
		sb.WriteString(fmt.Sprintf("Headroom:            %s$%s\n", tf.deltaSymbol(result.DiffFromBase), tf.formatCurrency(result.DiffFromBase.Abs())))
	}
	sb.WriteString("\n")

	sb.WriteString("RESULTS AT SOLVED VALUE\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-22s %18s %18s\n", "", "Base", "Solved"))
	sb.WriteString(fmt.Sprintf("%-22s %18s %18s\n", "Net Profit", "$"+tf.formatShort(result.BaseSummary.NetProfit), "$"+tf.formatShort(result.Summary.NetProfit)))
	sb.WriteString(fmt.Sprintf("%-22s %18s %18s\n", "Margin on Cost", result.BaseSummary.MarginOnCost.StringFixed(2)+"%", result.Summary.MarginOnCost.StringFixed(2)+"%"))
	sb.WriteString(fmt.Sprintf("%-22s %18s %18s\n", "Equity IRR", result.BaseSummary.EquityIRR.String(), result.Summary.EquityIRR.String()))
	sb.WriteString(fmt.Sprintf("%-22s %18s %18s\n", "Total Project Cost", "$"+tf.formatShort(result.BaseSummary.TotalProjectCost), "$"+tf.formatShort(result.Summary.TotalProjectCost)))
	sb.WriteString("\n")

	return sb.String()
}

// FormatMulti formats results from solving every target
func (tf *TableFormatter) FormatMulti(result *MultiTargetResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN SUMMARY: " + result.Scenario + "\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString(fmt.Sprintf("%-20s %18s %14s %14s %10s\n", "Target", "Value", "Net Profit", "Margin", "Status"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, res := range result.Results {
		sb.WriteString(fmt.Sprintf("%-20s %18s %14s %14s %10s\n",
			tf.truncate(string(res.Target), 20),
			tf.formatValue(res.Target, res.Value),
			"$"+tf.formatShort(res.Summary.NetProfit),
			res.Summary.MarginOnCost.StringFixed(2)+"%",
			tf.formatStatus(res.Success)))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *SolveResult) (string, error) {
	return jf.marshal(result)
}

// FormatMulti formats multi-target results as JSON
func (jf *JSONFormatter) FormatMulti(result *MultiTargetResult) (string, error) {
	return jf.marshal(result)
}

func (jf *JSONFormatter) marshal(v interface{}) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) valueLabel(target SolveTarget) string {
	switch target {
	case TargetResidualLand:
		return "Residual Land Value"
	case TargetSalePrice:
		return "Sale Price Change"
	default:
		return "Construction Change"
	}
}

func (tf *TableFormatter) formatValue(target SolveTarget, v decimal.Decimal) string {
	if target == TargetResidualLand {
		return "$" + tf.formatCurrency(v)
	}
	return tf.deltaSymbol(v) + v.StringFixed(2) + "%"
}

func (tf *TableFormatter) formatCurrency(d decimal.Decimal) string {
	return d.StringFixed(0)
}

func (tf *TableFormatter) formatShort(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
