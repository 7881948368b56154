package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/calculation"
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/rgehrsitz/devfeas/internal/transform"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Default search ranges for percent-change targets
var (
	defaultSaleRange         = [2]decimal.Decimal{decimal.NewFromInt(-99), decimal.NewFromInt(500)}
	defaultConstructionRange = [2]decimal.Decimal{decimal.NewFromInt(-99), decimal.NewFromInt(1000)}
)

// Solver searches one scenario input for the value that meets a profit or margin goal
type Solver struct {
	Engine  *calculation.Engine
	Options SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(engine *calculation.Engine, options SolverOptions) *Solver {
	return &Solver{
		Engine:  engine,
		Options: options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(engine *calculation.Engine) *Solver {
	return NewSolver(engine, DefaultSolverOptions())
}

// evaluation is one engine run at a trial value. score >= 0 means the goal is met.
type evaluation struct {
	value   decimal.Decimal
	score   decimal.Decimal
	summary domain.SummaryMetrics
}

// objective applies a trial value to the base scenario, runs it and scores it
type objective func(ctx context.Context, value decimal.Decimal) (evaluation, error)

// Solve routes a request to the matching search
func (s *Solver) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	if req.Base == nil {
		return nil, &BreakEvenError{Operation: "solve", Message: "base scenario cannot be nil"}
	}
	if err := req.Constraints.Validate(req.Target); err != nil {
		return nil, err
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.PercentTolerance
		if req.Target == TargetResidualLand {
			req.Tolerance = s.Options.PriceTolerance
		}
	}

	base, err := s.Engine.Run(ctx, req.Base)
	if err != nil {
		return nil, &BreakEvenError{Operation: "solve", Message: "failed to calculate base scenario", Cause: err}
	}

	switch req.Target {
	case TargetResidualLand:
		return s.solveResidualLand(ctx, req, base.Summary)
	case TargetSalePrice:
		return s.solveSalePrice(ctx, req, base.Summary)
	case TargetConstructionCost:
		return s.solveConstructionCost(ctx, req, base.Summary)
	}
	return nil, &BreakEvenError{Operation: "solve", Message: fmt.Sprintf("unsupported solve target: %s", req.Target)}
}

// ResidualLandValue finds the highest land price that still earns targetMargin percent on cost
func (s *Solver) ResidualLandValue(ctx context.Context, base *domain.Scenario, targetMargin decimal.Decimal) (*SolveResult, error) {
	return s.Solve(ctx, SolveRequest{
		Base:        base,
		Target:      TargetResidualLand,
		Constraints: Constraints{TargetMargin: &targetMargin},
	})
}

// BreakEvenSalePrice finds the percent change in sale prices at which net profit is zero
func (s *Solver) BreakEvenSalePrice(ctx context.Context, base *domain.Scenario) (*SolveResult, error) {
	return s.Solve(ctx, SolveRequest{Base: base, Target: TargetSalePrice})
}

// MaxConstructionCost finds the largest construction cost change that still earns targetMargin percent
func (s *Solver) MaxConstructionCost(ctx context.Context, base *domain.Scenario, targetMargin decimal.Decimal) (*SolveResult, error) {
	return s.Solve(ctx, SolveRequest{
		Base:        base,
		Target:      TargetConstructionCost,
		Constraints: Constraints{TargetMargin: &targetMargin},
	})
}

func (s *Solver) solveResidualLand(ctx context.Context, req SolveRequest, base domain.SummaryMetrics) (*SolveResult, error) {
	lo, hi := decimal.Zero, base.NetRealisation
	if req.Constraints.MinValue != nil {
		lo = *req.Constraints.MinValue
	}
	if req.Constraints.MaxValue != nil {
		hi = *req.Constraints.MaxValue
	}
	if hi.LessThanOrEqual(lo) {
		return nil, &BreakEvenError{
			Operation: "residual_land",
			Message:   "scenario has no realisation to support a land price",
		}
	}

	target := *req.Constraints.TargetMargin
	f := s.objective(req.Base, target, func(v decimal.Decimal) transform.ScenarioTransform {
		return &transform.AdjustLandPrice{Price: v}
	})

	result, err := s.bisect(ctx, string(TargetResidualLand), req, lo, hi, f)
	if err != nil {
		return nil, err
	}
	result.BaseValue = req.Base.Settings.Acquisition.Price
	return s.finish(result, req, base), nil
}

func (s *Solver) solveSalePrice(ctx context.Context, req SolveRequest, base domain.SummaryMetrics) (*SolveResult, error) {
	lo, hi := bounds(req.Constraints, defaultSaleRange)
	f := s.objective(req.Base, decimal.Zero, func(v decimal.Decimal) transform.ScenarioTransform {
		return &transform.ScaleSalePrices{Percent: v}
	})
	// Zero profit rather than a margin target
	profit := func(ctx context.Context, v decimal.Decimal) (evaluation, error) {
		e, err := f(ctx, v)
		e.score = e.summary.NetProfit
		return e, err
	}

	result, err := s.bisect(ctx, string(TargetSalePrice), req, lo, hi, profit)
	if err != nil {
		return nil, err
	}
	return s.finish(result, req, base), nil
}

func (s *Solver) solveConstructionCost(ctx context.Context, req SolveRequest, base domain.SummaryMetrics) (*SolveResult, error) {
	lo, hi := bounds(req.Constraints, defaultConstructionRange)
	f := s.objective(req.Base, *req.Constraints.TargetMargin, func(v decimal.Decimal) transform.ScenarioTransform {
		return &transform.ScaleConstructionCosts{Percent: v}
	})

	result, err := s.bisect(ctx, string(TargetConstructionCost), req, lo, hi, f)
	if err != nil {
		return nil, err
	}
	return s.finish(result, req, base), nil
}

// objective builds a margin-on-cost objective for a transform family
func (s *Solver) objective(base *domain.Scenario, targetMargin decimal.Decimal, build func(decimal.Decimal) transform.ScenarioTransform) objective {
	return func(ctx context.Context, value decimal.Decimal) (evaluation, error) {
		modified, err := transform.ApplyTransforms(base, []transform.ScenarioTransform{build(value)})
		if err != nil {
			return evaluation{}, err
		}
		result, err := s.Engine.Run(ctx, modified)
		if err != nil {
			return evaluation{}, err
		}
		return evaluation{
			value:   value,
			score:   MarginOnCost(result.Summary).Sub(targetMargin),
			summary: result.Summary,
		}, nil
	}
}

// bisect narrows [lo, hi] until it is narrower than the tolerance. The objective must
// change sign exactly once across the range; the returned value is the endpoint that
// meets the goal.
func (s *Solver) bisect(ctx context.Context, op string, req SolveRequest, lo, hi decimal.Decimal, f objective) (*SolveResult, error) {
	low, err := f(ctx, lo)
	if err != nil {
		return nil, &BreakEvenError{Operation: op, Message: "failed to evaluate lower bound", Cause: err}
	}
	high, err := f(ctx, hi)
	if err != nil {
		return nil, &BreakEvenError{Operation: op, Message: "failed to evaluate upper bound", Cause: err}
	}

	lowMeets, highMeets := !low.score.IsNegative(), !high.score.IsNegative()
	if lowMeets == highMeets {
		reason := "goal is not met anywhere in the search range"
		if lowMeets {
			reason = "goal is met across the whole search range"
		}
		return nil, &BreakEvenError{
			Operation: op,
			Message:   fmt.Sprintf("%s [%s, %s]", reason, lo.StringFixed(2), hi.StringFixed(2)),
		}
	}

	iterations := 0
	for iterations < req.MaxIterations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if high.value.Sub(low.value).LessThanOrEqual(req.Tolerance) {
			return s.converged(low, high, lowMeets, iterations,
				fmt.Sprintf("Bisection converged within %s", req.Tolerance.String())), nil
		}
		iterations++

		mid, err := f(ctx, low.value.Add(high.value).Div(two))
		if err != nil {
			return nil, &BreakEvenError{Operation: op, Message: "failed to calculate scenario", Cause: err}
		}
		if !mid.score.IsNegative() == lowMeets {
			low = mid
		} else {
			high = mid
		}
	}

	result := s.converged(low, high, lowMeets, iterations,
		fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations))
	result.Success = false
	return result, nil
}

func (s *Solver) converged(low, high evaluation, lowMeets bool, iterations int, info string) *SolveResult {
	best := high
	if lowMeets {
		best = low
	}
	return &SolveResult{
		Success:         true,
		Iterations:      iterations,
		ConvergenceInfo: info,
		Value:           best.value,
		Summary:         best.summary,
	}
}

func (s *Solver) finish(result *SolveResult, req SolveRequest, base domain.SummaryMetrics) *SolveResult {
	result.Target = req.Target
	result.Scenario = req.Base.Name
	result.BaseSummary = base
	result.DiffFromBase = result.Value.Sub(result.BaseValue)
	if req.Constraints.TargetMargin != nil {
		margin := *req.Constraints.TargetMargin
		result.TargetMargin = &margin
	}
	return result
}

func bounds(c Constraints, defaults [2]decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	lo, hi := defaults[0], defaults[1]
	if c.MinValue != nil {
		lo = *c.MinValue
	}
	if c.MaxValue != nil {
		hi = *c.MaxValue
	}
	return lo, hi
}

// MarginOnCost returns net profit over total project cost as an unrounded percentage.
// A project with no cost has an unbounded margin, reported as +/-1e12 by the sign of profit.
func MarginOnCost(m domain.SummaryMetrics) decimal.Decimal {
	if m.TotalProjectCost.IsZero() {
		if m.NetProfit.IsNegative() {
			return decimal.New(-1, 12)
		}
		return decimal.New(1, 12)
	}
	return m.NetProfit.Div(m.TotalProjectCost).Mul(hundred)
}
