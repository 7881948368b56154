package compare

import (
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult represents a single scenario comparison with calculated metrics
type ComparisonResult struct {
	ScenarioName string                 `json:"scenarioName"`
	Description  string                 `json:"description"`
	Strategy     domain.Strategy        `json:"strategy"`
	Summary      *domain.SummaryMetrics `json:"-"`

	// Key Metrics
	NetProfit        decimal.Decimal     `json:"netProfit"`
	MarginOnCost     decimal.Decimal     `json:"marginOnCost"`
	MarginOnRevenue  decimal.Decimal     `json:"marginOnRevenue"`
	EquityIRR        domain.RateOfReturn `json:"equityIrr"`
	ProjectIRR       domain.RateOfReturn `json:"projectIrr"`
	PeakDebt         decimal.Decimal     `json:"peakDebt"` // highest combined senior + mezzanine balance
	PeakEquity       decimal.Decimal     `json:"peakEquity"`
	TotalProjectCost decimal.Decimal     `json:"totalProjectCost"`
	ShortfallMonths  int                 `json:"shortfallMonths"`

	// Comparison to Base
	ProfitDiffFromBase   decimal.Decimal  `json:"profitDiffFromBase"`
	ProfitPctFromBase    decimal.Decimal  `json:"profitPctFromBase"`
	MarginDiffFromBase   decimal.Decimal  `json:"marginDiffFromBase"` // percentage points
	IRRDiffFromBase      *decimal.Decimal `json:"irrDiffFromBase,omitempty"`
	PeakDebtDiffFromBase decimal.Decimal  `json:"peakDebtDiffFromBase"`
}

// Feasible reports whether every month of the scenario was funded
func (r ComparisonResult) Feasible() bool {
	return r.ShortfallMonths == 0
}

// ComparisonSet represents a collection of scenario comparisons
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath"`
}

// MetricsCalculator extracts key metrics from engine results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes all comparison metrics for one engine result
func (mc *MetricsCalculator) CalculateMetrics(result *domain.FeasibilityResult) ComparisonResult {
	summary := result.Summary
	return ComparisonResult{
		ScenarioName:     result.Scenario,
		Strategy:         result.Strategy,
		Summary:          &summary,
		NetProfit:        summary.NetProfit,
		MarginOnCost:     summary.MarginOnCost,
		MarginOnRevenue:  summary.MarginOnRevenue,
		EquityIRR:        summary.EquityIRR,
		ProjectIRR:       summary.ProjectIRR,
		PeakDebt:         mc.peakDebt(result.Flows),
		PeakEquity:       summary.PeakEquity,
		TotalProjectCost: summary.TotalProjectCost,
		ShortfallMonths:  len(summary.ShortfallMonths),
	}
}

// CalculateComparison computes comparison metrics between a scenario and a base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.ProfitDiffFromBase = scenario.NetProfit.Sub(base.NetProfit)

	if !base.NetProfit.IsZero() {
		scenario.ProfitPctFromBase = scenario.ProfitDiffFromBase.
			Div(base.NetProfit.Abs()).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	scenario.MarginDiffFromBase = scenario.MarginOnCost.Sub(base.MarginOnCost)
	scenario.PeakDebtDiffFromBase = scenario.PeakDebt.Sub(base.PeakDebt)

	// An undefined IRR has no meaningful difference
	scenario.IRRDiffFromBase = nil
	if scenario.EquityIRR.Defined && base.EquityIRR.Defined {
		diff := scenario.EquityIRR.Annual.Sub(base.EquityIRR.Annual)
		scenario.IRRDiffFromBase = &diff
	}

	return scenario
}

func (mc *MetricsCalculator) peakDebt(flows []domain.MonthlyFlow) decimal.Decimal {
	peak := decimal.Zero
	for _, f := range flows {
		debt := f.Senior.Balance.Add(f.Mezzanine.Balance)
		if debt.GreaterThan(peak) {
			peak = debt
		}
	}
	return peak
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil {
		return recommendations
	}

	all := append([]ComparisonResult{*compSet.BaseResult}, compSet.AlternativeResults...)
	for _, r := range all {
		if !r.Feasible() {
			recommendations = append(recommendations, fmt.Sprintf(
				"Funding Gap: %s cannot be funded in %d months; add equity or debt capacity", r.ScenarioName, r.ShortfallMonths))
		}
	}

	if len(compSet.AlternativeResults) == 0 {
		return recommendations
	}

	base := compSet.BaseResult

	// Find best scenario by profit
	bestProfit := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.NetProfit.GreaterThan(bestProfit.NetProfit) {
			bestProfit = alt
		}
	}
	if bestProfit != base {
		recommendations = append(recommendations,
			"Best Profit: "+bestProfit.ScenarioName+" earns $"+bestProfit.NetProfit.Sub(base.NetProfit).StringFixed(0)+
				" more than the base scenario")
	}

	// Find best margin
	bestMargin := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.MarginOnCost.GreaterThan(bestMargin.MarginOnCost) {
			bestMargin = alt
		}
	}
	if bestMargin != base && bestMargin != bestProfit {
		recommendations = append(recommendations,
			"Best Margin: "+bestMargin.ScenarioName+" returns "+bestMargin.MarginOnCost.StringFixed(2)+"% on cost")
	}

	// Find best equity IRR among defined rates
	var bestIRR *ComparisonResult
	if base.EquityIRR.Defined {
		bestIRR = base
	}
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if !alt.EquityIRR.Defined {
			continue
		}
		if bestIRR == nil || alt.EquityIRR.Annual.GreaterThan(bestIRR.EquityIRR.Annual) {
			bestIRR = alt
		}
	}
	if bestIRR != nil && bestIRR != base {
		recommendations = append(recommendations,
			"Best Equity IRR: "+bestIRR.ScenarioName+" at "+bestIRR.EquityIRR.String())
	}

	// Find lowest peak debt
	lowestDebt := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.PeakDebt.LessThan(lowestDebt.PeakDebt) {
			lowestDebt = alt
		}
	}
	if lowestDebt != base {
		recommendations = append(recommendations,
			"Lowest Debt: "+lowestDebt.ScenarioName+" peaks $"+base.PeakDebt.Sub(lowestDebt.PeakDebt).StringFixed(0)+
				" below the base scenario")
	}

	return recommendations
}
