package breakeven

import (
	"context"
	"errors"
	"testing"

	"github.com/rgehrsitz/devfeas/internal/calculation"
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// untaxedEngine zeroes the fallback duty and land tax so margins are simple arithmetic
func untaxedEngine() *calculation.Engine {
	return calculation.NewEngineWithTaxTables(&domain.TaxConfiguration{
		FallbackRates: map[domain.TaxType]decimal.Decimal{
			domain.TaxStampDuty: decimal.Zero,
			domain.TaxLandTax:   decimal.Zero,
		},
	})
}

// simpleScenario: land P, construction 1,000,000, one sale of 2,400,000, no GST,
// no debt. Profit = 1,400,000 - P on a cost of 1,000,000 + P.
func simpleScenario(landPrice string) *domain.Scenario {
	return &domain.Scenario{
		Name: "simple",
		Site: domain.Site{Name: "Lot 1", Jurisdiction: "TAS"},
		Settings: domain.FeasibilitySettings{
			Acquisition: domain.Acquisition{Price: d(landPrice)},
			Timing:      domain.Timing{DurationMonths: 12},
		},
		Costs: []domain.LineItem{
			{Name: "Build", Category: domain.CategoryConstruction, Basis: domain.BasisFixed, Amount: d("1000000"), Span: 1, TaxTreatment: domain.TaxExempt},
		},
		Revenues: []domain.RevenueItem{
			{Name: "House", Strategy: domain.StrategySell, Mode: domain.ModeLumpSum, Price: d("2400000")},
		},
	}
}

func TestNewDefaultSolver(t *testing.T) {
	engine := calculation.NewEngine()
	solver := NewDefaultSolver(engine)

	assert.Same(t, engine, solver.Engine)
	assert.Equal(t, DefaultSolverOptions(), solver.Options)
}

func TestSolver_ResidualLandValue(t *testing.T) {
	solver := NewDefaultSolver(untaxedEngine())
	base := simpleScenario("600000")

	result, err := solver.ResidualLandValue(context.Background(), base, d("20"))
	require.NoError(t, err)

	assert.True(t, result.Success, result.ConvergenceInfo)
	// 1,400,000 - P = 0.2 (1,000,000 + P)  =>  P = 1,000,000
	value, _ := result.Value.Float64()
	assert.InDelta(t, 1000000, value, 100)
	assert.True(t, result.Value.LessThanOrEqual(d("1000000")), "the reported value meets the margin")
	assert.True(t, MarginOnCost(result.Summary).GreaterThanOrEqual(d("20")))

	assert.True(t, d("600000").Equal(result.BaseValue))
	assert.True(t, result.DiffFromBase.Equal(result.Value.Sub(d("600000"))))
	assert.True(t, d("800000").Equal(result.BaseSummary.NetProfit))
	require.NotNil(t, result.TargetMargin)
	assert.True(t, d("20").Equal(*result.TargetMargin))

	assert.True(t, d("600000").Equal(base.Settings.Acquisition.Price), "base scenario is not modified")
}

func TestSolver_BreakEvenSalePrice(t *testing.T) {
	solver := NewDefaultSolver(untaxedEngine())

	result, err := solver.BreakEvenSalePrice(context.Background(), simpleScenario("600000"))
	require.NoError(t, err)

	// 2,400,000 (1 + x) = 1,600,000
	value, _ := result.Value.Float64()
	assert.InDelta(t, -33.3333, value, 0.01)
	assert.False(t, result.Summary.NetProfit.IsNegative())
	assert.Equal(t, TargetSalePrice, result.Target)
	assert.Nil(t, result.TargetMargin)
}

func TestSolver_MaxConstructionCost(t *testing.T) {
	solver := NewDefaultSolver(untaxedEngine())

	result, err := solver.MaxConstructionCost(context.Background(), simpleScenario("600000"), d("20"))
	require.NoError(t, err)

	// 1,800,000 - C = 0.2 (600,000 + C)  =>  C = 1,400,000, a 40% overrun
	value, _ := result.Value.Float64()
	assert.InDelta(t, 40, value, 0.01)
}

func TestSolver_Unbracketed(t *testing.T) {
	solver := NewDefaultSolver(untaxedEngine())

	// No construction saving inside the range makes a 10,000% margin
	_, err := solver.MaxConstructionCost(context.Background(), simpleScenario("600000"), d("10000"))
	require.Error(t, err)

	var be *BreakEvenError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "construction_cost", be.Operation)
	assert.Contains(t, be.Message, "not met anywhere")
}

func TestSolver_MaxIterations(t *testing.T) {
	solver := NewDefaultSolver(untaxedEngine())

	result, err := solver.Solve(context.Background(), SolveRequest{
		Base:          simpleScenario("600000"),
		Target:        TargetSalePrice,
		MaxIterations: 2,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Iterations)
	assert.Contains(t, result.ConvergenceInfo, "Max iterations (2)")
}

func TestSolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultSolver(untaxedEngine()).BreakEvenSalePrice(ctx, simpleScenario("600000"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolver_InvalidRequests(t *testing.T) {
	solver := NewDefaultSolver(untaxedEngine())

	_, err := solver.Solve(context.Background(), SolveRequest{Target: TargetSalePrice})
	assert.Error(t, err, "nil base")

	_, err = solver.Solve(context.Background(), SolveRequest{Base: simpleScenario("1"), Target: "land_area"})
	assert.Error(t, err)

	_, err = solver.Solve(context.Background(), SolveRequest{Base: simpleScenario("1"), Target: TargetResidualLand})
	assert.Error(t, err, "missing margin")

	bad := simpleScenario("1")
	bad.Costs[0].Span = 0
	_, err = solver.BreakEvenSalePrice(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to calculate base scenario")
}

func TestSolveAll(t *testing.T) {
	solver := NewDefaultSolver(untaxedEngine())

	multi, err := solver.SolveAll(context.Background(), simpleScenario("600000"), d("20"))
	require.NoError(t, err)
	require.Len(t, multi.Results, 3)
	require.Len(t, multi.Recommendations, 3)

	assert.Contains(t, multi.Recommendations[0], "Land could be bought for up to")
	assert.Contains(t, multi.Recommendations[1], "Sale prices can fall 33.3%")
	assert.Contains(t, multi.Recommendations[2], "Construction can overrun by 40.0%")

	// Overpaying for land flips the land advice
	multi, err = solver.SolveAll(context.Background(), simpleScenario("1200000"), d("20"))
	require.NoError(t, err)
	assert.Contains(t, multi.Recommendations[0], "above its residual value")
	assert.Contains(t, multi.Recommendations[2], "cheaper")
}

func TestMarginOnCost(t *testing.T) {
	assert.True(t, d("25").Equal(MarginOnCost(domain.SummaryMetrics{NetProfit: d("250"), TotalProjectCost: d("1000")})))
	assert.True(t, MarginOnCost(domain.SummaryMetrics{NetProfit: d("1")}).GreaterThan(d("1000000")))
	assert.True(t, MarginOnCost(domain.SummaryMetrics{NetProfit: d("-1")}).LessThan(d("-1000000")))
}
