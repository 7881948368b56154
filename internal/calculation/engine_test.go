package calculation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine := NewEngine()

	assert.NotNil(t, engine.Taxes, "Should initialize tax evaluator")
	assert.IsType(t, NopLogger{}, engine.Logger)
}

func TestEngine_SetLogger(t *testing.T) {
	engine := NewEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")
	assert.Equal(t, customLogger, engine.Taxes.Logger, "Should share the logger with the tax evaluator")

	engine.SetLogger(nil)
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestEngine_Run(t *testing.T) {
	engine := NewEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	result, err := engine.Run(context.Background(), sellScenario())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "townhouses", result.Scenario)
	assert.Equal(t, domain.StrategySell, result.Strategy)
	assert.Len(t, result.Flows, result.Timeline.Months)
	assert.Equal(t, 2025, result.Flows[0].Date.Year())
	assert.Equal(t, 2026, result.Flows[12].Date.Year())
	assert.True(t, logger.contains("INFO", "profit"))
}

func TestEngine_RunRejectsInvalidInput(t *testing.T) {
	engine := NewEngine()

	s := sellScenario()
	s.Costs[0].Span = 0
	_, err := engine.Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "span must be at least 1")

	s = sellScenario()
	s.Settings.Capital.Senior.LimitMethod = ""
	_, err = engine.Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit method is required")

	_, err = engine.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestEngine_RunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Run(ctx, sellScenario())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RunLogsShortfall(t *testing.T) {
	engine := NewEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	s := seniorOnlyScenario()
	s.Settings.Capital.Senior = nil
	s.Settings.Capital.Equity.AllowTopUp = boolPtr(false)

	result, err := engine.Run(context.Background(), s)
	require.NoError(t, err, "shortfalls are reported, not returned as errors")
	assert.False(t, result.Summary.Feasible())
	assert.True(t, logger.contains("WARN", "shortfall"))
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine()
	s := holdScenario()

	first, err := engine.Run(context.Background(), s)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), s)
	require.NoError(t, err)

	a, err := json.Marshal(first.Flows)
	require.NoError(t, err)
	b, err := json.Marshal(second.Flows)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Equal(t, first.Summary, second.Summary)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestEngine_RunScenarios(t *testing.T) {
	engine := NewEngine()
	engine.Concurrency = 2
	config := &domain.Configuration{
		Scenarios: []domain.Scenario{*sellScenario(), *holdScenario(), *seniorOnlyScenario()},
	}

	results, err := engine.RunScenarios(context.Background(), config)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "townhouses", results[0].Scenario)
	assert.Equal(t, "hold", results[1].Scenario)
	assert.Equal(t, domain.StrategyHold, results[1].Strategy)
	assert.Equal(t, "senior only", results[2].Scenario)

	single, err := engine.Run(context.Background(), sellScenario())
	require.NoError(t, err)
	assert.Equal(t, single.Summary, results[0].Summary, "concurrent runs match sequential runs")
}

func TestEngine_RunScenariosStopsOnError(t *testing.T) {
	bad := *sellScenario()
	bad.Name = ""
	config := &domain.Configuration{Scenarios: []domain.Scenario{*sellScenario(), bad}}

	_, err := NewEngine().RunScenarios(context.Background(), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario 1")

	_, err = NewEngine().RunScenarios(context.Background(), &domain.Configuration{})
	assert.Error(t, err)
}

func TestEngine_TaxOverrides(t *testing.T) {
	s := sellScenario()
	s.Site.Jurisdiction = "TAS"

	fallback, err := NewEngine().Run(context.Background(), s)
	require.NoError(t, err)

	overrides := &domain.TaxConfiguration{
		Jurisdictions: map[string]domain.JurisdictionTaxes{
			"TAS": {domain.TaxStampDuty: {Brackets: []domain.TaxBracket{{Rate: dec("0.04"), Method: domain.MethodFlat}}}},
		},
	}
	overridden, err := NewEngineWithTaxTables(overrides).Run(context.Background(), s)
	require.NoError(t, err)

	statutory := func(r *domain.FeasibilityResult) string {
		return r.Flows[2].Costs[domain.CategoryStatutory].String()
	}
	assert.Equal(t, "85000", statutory(fallback), "5.5% fallback plus council contributions")
	assert.Equal(t, "70000", statutory(overridden))
}
