package breakeven

import (
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// SolveTarget defines which input the solver searches over
type SolveTarget string

const (
	TargetResidualLand     SolveTarget = "residual_land"     // land price that still earns the target margin
	TargetSalePrice        SolveTarget = "sale_price"        // sale price change at which profit is zero
	TargetConstructionCost SolveTarget = "construction_cost" // construction change that still earns the target margin
)

// Constraints bound the search. Land bounds are prices; sale price and
// construction bounds are percent changes (-10 for a 10% fall).
type Constraints struct {
	// Target development margin on cost, as a percentage (20 for 20%)
	TargetMargin *decimal.Decimal `json:"target_margin,omitempty"`

	MinValue *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue *decimal.Decimal `json:"max_value,omitempty"`
}

// DefaultConstraints returns a 20% target margin with solver-chosen bounds
func DefaultConstraints() Constraints {
	margin := decimal.NewFromInt(20)
	return Constraints{TargetMargin: &margin}
}

// SolveRequest defines the parameters for a solver run
type SolveRequest struct {
	Base          *domain.Scenario
	Target        SolveTarget
	Constraints   Constraints
	MaxIterations int             // Maximum bisection steps
	Tolerance     decimal.Decimal // Width of the final bracket
}

// SolveResult contains the results of a solver run
type SolveResult struct {
	Target          SolveTarget `json:"target"`
	Scenario        string      `json:"scenario"`
	Success         bool        `json:"success"`
	Iterations      int         `json:"iterations"`
	ConvergenceInfo string      `json:"convergence_info"`

	// Land price for residual_land, percent change otherwise
	Value        decimal.Decimal  `json:"value"`
	BaseValue    decimal.Decimal  `json:"base_value"`
	DiffFromBase decimal.Decimal  `json:"diff_from_base"`
	TargetMargin *decimal.Decimal `json:"target_margin,omitempty"`

	// Metrics at the solved value and for the untouched scenario
	Summary     domain.SummaryMetrics `json:"summary"`
	BaseSummary domain.SummaryMetrics `json:"base_summary"`
}

// MultiTargetResult contains the results of solving every target for one scenario
type MultiTargetResult struct {
	Scenario        string        `json:"scenario"`
	Results         []SolveResult `json:"results"`
	Recommendations []string      `json:"recommendations"`
}

// SolverOptions configures the bisection
type SolverOptions struct {
	MaxIterations    int
	PriceTolerance   decimal.Decimal // currency, for land price searches
	PercentTolerance decimal.Decimal // percentage points, for scale searches
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxIterations:    60,
		PriceTolerance:   decimal.NewFromInt(100),
		PercentTolerance: decimal.NewFromFloat(0.001),
	}
}

// Validate checks if constraints are internally consistent
func (c *Constraints) Validate(target SolveTarget) error {
	switch target {
	case TargetResidualLand, TargetConstructionCost:
		if c.TargetMargin == nil {
			return &BreakEvenError{
				Operation: "validate_constraints",
				Message:   "target margin is required for " + string(target),
			}
		}
		if c.TargetMargin.LessThanOrEqual(decimal.NewFromInt(-100)) {
			return &BreakEvenError{
				Operation: "validate_constraints",
				Message:   "target margin must be greater than -100%",
			}
		}
	case TargetSalePrice:
	default:
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "unsupported solve target: " + string(target),
		}
	}

	if c.MinValue != nil && c.MaxValue != nil && c.MinValue.GreaterThanOrEqual(*c.MaxValue) {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min_value must be less than max_value",
		}
	}
	if target == TargetResidualLand && c.MinValue != nil && c.MinValue.IsNegative() {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "land price bounds cannot be negative",
		}
	}
	if target != TargetResidualLand && c.MinValue != nil && c.MinValue.LessThanOrEqual(decimal.NewFromInt(-100)) {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "percent change bounds must be greater than -100",
		}
	}

	return nil
}

// BreakEvenError represents errors from break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
