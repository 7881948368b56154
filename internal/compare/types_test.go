package compare

import (
	"strings"
	"testing"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func irr(annual string) domain.RateOfReturn {
	return domain.RateOfReturn{Defined: true, Annual: d(annual)}
}

func TestMetricsCalculator_CalculateMetrics(t *testing.T) {
	calc := NewMetricsCalculator()

	result := &domain.FeasibilityResult{
		Scenario: "Test Scenario",
		Strategy: domain.StrategySell,
		Flows: []domain.MonthlyFlow{
			{Month: 0, Senior: domain.TierFlow{Balance: d("500000")}},
			{Month: 1, Senior: domain.TierFlow{Balance: d("900000")}, Mezzanine: domain.TierFlow{Balance: d("200000")}},
			{Month: 2, Senior: domain.TierFlow{Balance: d("1000000")}},
			{Month: 3},
		},
		Summary: domain.SummaryMetrics{
			NetProfit:        d("400000"),
			MarginOnCost:     d("20"),
			MarginOnRevenue:  d("16.67"),
			EquityIRR:        irr("0.25"),
			PeakEquity:       d("300000"),
			TotalProjectCost: d("2000000"),
			ShortfallMonths:  []int{2},
		},
	}

	metrics := calc.CalculateMetrics(result)

	if metrics.ScenarioName != "Test Scenario" {
		t.Errorf("Expected scenario name 'Test Scenario', got %s", metrics.ScenarioName)
	}
	if metrics.Strategy != domain.StrategySell {
		t.Errorf("Expected strategy sell, got %s", metrics.Strategy)
	}
	if !metrics.NetProfit.Equal(d("400000")) {
		t.Errorf("Expected net profit 400000, got %s", metrics.NetProfit)
	}

	// Combined senior and mezzanine in month 1: 900000 + 200000
	if !metrics.PeakDebt.Equal(d("1100000")) {
		t.Errorf("Expected peak debt 1100000, got %s", metrics.PeakDebt)
	}

	if metrics.ShortfallMonths != 1 || metrics.Feasible() {
		t.Errorf("Expected one shortfall month, got %d", metrics.ShortfallMonths)
	}
	if metrics.Summary == nil || !metrics.Summary.TotalProjectCost.Equal(d("2000000")) {
		t.Error("Expected summary to be carried through")
	}
}

func TestMetricsCalculator_CalculateComparison(t *testing.T) {
	calc := NewMetricsCalculator()

	base := ComparisonResult{
		ScenarioName: "Base",
		NetProfit:    d("800000"),
		MarginOnCost: d("25"),
		EquityIRR:    irr("0.20"),
		PeakDebt:     d("3000000"),
	}

	scenario := ComparisonResult{
		ScenarioName: "Alternative",
		NetProfit:    d("900000"),
		MarginOnCost: d("27.5"),
		EquityIRR:    irr("0.23"),
		PeakDebt:     d("2800000"),
	}

	result := calc.CalculateComparison(scenario, base)

	if !result.ProfitDiffFromBase.Equal(d("100000")) {
		t.Errorf("Expected profit diff 100000, got %s", result.ProfitDiffFromBase)
	}

	// 100000 / 800000 * 100 = 12.5%
	if !result.ProfitPctFromBase.Equal(d("12.5")) {
		t.Errorf("Expected profit pct 12.5, got %s", result.ProfitPctFromBase)
	}

	if !result.MarginDiffFromBase.Equal(d("2.5")) {
		t.Errorf("Expected margin diff 2.5, got %s", result.MarginDiffFromBase)
	}

	if result.IRRDiffFromBase == nil || !result.IRRDiffFromBase.Equal(d("0.03")) {
		t.Errorf("Expected IRR diff 0.03, got %v", result.IRRDiffFromBase)
	}

	if !result.PeakDebtDiffFromBase.Equal(d("-200000")) {
		t.Errorf("Expected peak debt diff -200000, got %s", result.PeakDebtDiffFromBase)
	}
}

func TestMetricsCalculator_CalculateComparison_UndefinedIRR(t *testing.T) {
	calc := NewMetricsCalculator()

	base := ComparisonResult{ScenarioName: "Base", EquityIRR: irr("0.2")}
	scenario := ComparisonResult{
		ScenarioName: "Alternative",
		EquityIRR:    domain.RateOfReturn{Defined: false, Reason: "no sign change"},
	}

	result := calc.CalculateComparison(scenario, base)

	if result.IRRDiffFromBase != nil {
		t.Errorf("Expected no IRR diff when a rate is undefined, got %s", result.IRRDiffFromBase)
	}
	// Zero base profit leaves the percentage at zero
	if !result.ProfitPctFromBase.IsZero() {
		t.Errorf("Expected zero profit pct, got %s", result.ProfitPctFromBase)
	}
}

func TestGenerateRecommendations(t *testing.T) {
	baseResult := &ComparisonResult{
		ScenarioName: "Base",
		NetProfit:    d("800000"),
		MarginOnCost: d("25"),
		EquityIRR:    irr("0.20"),
		PeakDebt:     d("3000000"),
	}

	alt1 := ComparisonResult{
		ScenarioName: "Alternative 1",
		NetProfit:    d("950000"),
		MarginOnCost: d("26"),
		EquityIRR:    irr("0.18"),
		PeakDebt:     d("3100000"),
	}

	alt2 := ComparisonResult{
		ScenarioName: "Alternative 2",
		NetProfit:    d("900000"),
		MarginOnCost: d("30"),
		EquityIRR:    irr("0.27"),
		PeakDebt:     d("2500000"),
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   "Base",
		BaseResult:         baseResult,
		AlternativeResults: []ComparisonResult{alt1, alt2},
	}

	recommendations := GenerateRecommendations(compSet)

	expected := []string{
		"Best Profit: Alternative 1 earns $150000 more than the base scenario",
		"Best Margin: Alternative 2 returns 30.00% on cost",
		"Best Equity IRR: Alternative 2 at 27.00%",
		"Lowest Debt: Alternative 2 peaks $500000 below the base scenario",
	}
	if len(recommendations) != len(expected) {
		t.Fatalf("Expected %d recommendations, got %d: %v", len(expected), len(recommendations), recommendations)
	}
	for i, want := range expected {
		if recommendations[i] != want {
			t.Errorf("Recommendation %d: expected %q, got %q", i, want, recommendations[i])
		}
	}
}

func TestGenerateRecommendations_FundingGap(t *testing.T) {
	compSet := &ComparisonSet{
		BaseScenarioName: "Base",
		BaseResult:       &ComparisonResult{ScenarioName: "Base", NetProfit: d("100")},
		AlternativeResults: []ComparisonResult{
			{ScenarioName: "Thin Equity", NetProfit: d("50"), ShortfallMonths: 3},
		},
	}

	recommendations := GenerateRecommendations(compSet)

	if len(recommendations) == 0 || !strings.HasPrefix(recommendations[0], "Funding Gap: Thin Equity cannot be funded in 3 months") {
		t.Errorf("Expected funding gap first, got %v", recommendations)
	}
}

func TestGenerateRecommendations_EmptyAlternatives(t *testing.T) {
	compSet := &ComparisonSet{
		BaseScenarioName:   "Base",
		BaseResult:         &ComparisonResult{ScenarioName: "Base", NetProfit: d("800000")},
		AlternativeResults: []ComparisonResult{},
	}

	recommendations := GenerateRecommendations(compSet)

	if len(recommendations) != 0 {
		t.Errorf("Expected no recommendations for empty alternatives, got %d", len(recommendations))
	}
}

func TestGenerateRecommendations_NilBase(t *testing.T) {
	if recs := GenerateRecommendations(&ComparisonSet{}); len(recs) != 0 {
		t.Errorf("Expected no recommendations without a base result, got %v", recs)
	}
}
