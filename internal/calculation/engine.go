package calculation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rgehrsitz/devfeas/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Engine orchestrates a feasibility run: timeline, revenue, costs, waterfall, metrics
type Engine struct {
	Taxes  *TaxEvaluator
	Logger Logger
	// Concurrency caps RunScenarios; zero or less means one goroutine per scenario
	Concurrency int
}

// NewEngine creates an engine using the embedded tax tables
func NewEngine() *Engine {
	return &Engine{
		Taxes:  NewTaxEvaluator(),
		Logger: NopLogger{},
	}
}

// NewEngineWithTaxTables creates an engine whose tax tables are the defaults
// overlaid with the supplied jurisdictions and fallback rates
func NewEngineWithTaxTables(overrides *domain.TaxConfiguration) *Engine {
	return &Engine{
		Taxes:  NewTaxEvaluatorWithConfig(overrides),
		Logger: NopLogger{},
	}
}

// SetLogger sets the logger for the engine and its tax evaluator. Nil resets to NopLogger.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
	if e.Taxes != nil {
		e.Taxes.Logger = l
	}
}

func (e *Engine) logger() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}

// Run simulates a single scenario. The scenario is not modified.
func (e *Engine) Run(ctx context.Context, scenario *domain.Scenario) (*domain.FeasibilityResult, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is required")
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := e.logger()

	tl, err := BuildTimeline(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	log.Debugf("scenario %q: settlement %d, construction %d-%d, %d months",
		scenario.Name, tl.SettlementMonth, tl.ConstructionStart, tl.ConstructionEnd, tl.Months)

	revenue := BuildRevenueSchedule(scenario, tl)

	taxes := e.Taxes
	if taxes == nil {
		taxes = NewTaxEvaluator()
	}
	costs, err := NewCostCalculator(taxes).Build(scenario, tl, revenue)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: failed to build cost schedule: %w", scenario.Name, err)
	}

	flows := NewWaterfall(scenario, tl, costs, revenue).Run()
	summary := Summarise(flows, scenario.Settings)

	if !summary.Feasible() {
		log.Warnf("scenario %q: funding shortfall in %d month(s), total %s",
			scenario.Name, len(summary.ShortfallMonths), summary.TotalShortfall.StringFixed(2))
	}
	if !summary.EquityIRR.Defined {
		log.Debugf("scenario %q: equity IRR undefined: %s", scenario.Name, summary.EquityIRR.Reason)
	}
	log.Infof("scenario %q: profit %s, margin on cost %s%%, equity IRR %s",
		scenario.Name, summary.NetProfit.StringFixed(2), summary.MarginOnCost.StringFixed(2), summary.EquityIRR)

	return &domain.FeasibilityResult{
		RunID:    uuid.New().String(),
		Scenario: scenario.Name,
		Strategy: scenario.Strategy(),
		Timeline: tl,
		Flows:    flows,
		Summary:  summary,
	}, nil
}

// RunScenarios evaluates every scenario in the configuration concurrently. Each
// scenario's month loop stays sequential; results keep the input order.
func (e *Engine) RunScenarios(ctx context.Context, config *domain.Configuration) ([]*domain.FeasibilityResult, error) {
	if config == nil || len(config.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios to run")
	}
	results := make([]*domain.FeasibilityResult, len(config.Scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for i := range config.Scenarios {
		i := i
		g.Go(func() error {
			res, err := e.Run(ctx, &config.Scenarios[i])
			if err != nil {
				return fmt.Errorf("scenario %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
