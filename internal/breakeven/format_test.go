package breakeven

import (
	"encoding/json"
	"testing"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *SolveResult {
	margin := d("20")
	return &SolveResult{
		Target:          TargetResidualLand,
		Scenario:        "townhouses",
		Success:         true,
		Iterations:      15,
		ConvergenceInfo: "Bisection converged within 100",
		Value:           d("999950"),
		BaseValue:       d("600000"),
		DiffFromBase:    d("399950"),
		TargetMargin:    &margin,
		Summary:         domain.SummaryMetrics{NetProfit: d("400050"), MarginOnCost: d("20.00"), TotalProjectCost: d("1999950")},
		BaseSummary:     domain.SummaryMetrics{NetProfit: d("800000"), MarginOnCost: d("50.00"), TotalProjectCost: d("1600000")},
	}
}

func TestTableFormatter_Format(t *testing.T) {
	out := (&TableFormatter{}).Format(sampleResult())

	assert.Contains(t, out, "BREAK-EVEN ANALYSIS")
	assert.Contains(t, out, "Residual Land Value: $999950")
	assert.Contains(t, out, "Current Land Price:  $600000")
	assert.Contains(t, out, "Headroom:            +$399950")
	assert.Contains(t, out, "20.00% on cost")
	assert.Contains(t, out, "✓ Converged")
	assert.Contains(t, out, "$800.0K")
	assert.Contains(t, out, "undefined", "IRR fields are unset in the sample")
}

func TestTableFormatter_FormatMulti(t *testing.T) {
	sale := *sampleResult()
	sale.Target = TargetSalePrice
	sale.Value = d("-33.33")
	sale.Success = false

	out := (&TableFormatter{}).FormatMulti(&MultiTargetResult{
		Scenario:        "townhouses",
		Results:         []SolveResult{*sampleResult(), sale},
		Recommendations: []string{"Sale prices can fall 33.3% before the project loses money"},
	})

	assert.Contains(t, out, "BREAK-EVEN SUMMARY: townhouses")
	assert.Contains(t, out, "-33.33%")
	assert.Contains(t, out, "⚠ Did not converge")
	assert.Contains(t, out, "• Sale prices can fall 33.3%")
}

func TestJSONFormatter(t *testing.T) {
	out, err := (&JSONFormatter{Pretty: true}).Format(sampleResult())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "residual_land", decoded["target"])
	assert.Equal(t, "999950", decoded["value"])

	compact, err := (&JSONFormatter{}).FormatMulti(&MultiTargetResult{Scenario: "x"})
	require.NoError(t, err)
	assert.NotContains(t, compact, "\n")
}
