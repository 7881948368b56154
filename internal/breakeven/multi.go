package breakeven

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// SolveAll runs every solve target against one scenario and summarises the headroom.
// Targets that cannot be bracketed are skipped; the call fails only when none solve
// or the context is cancelled.
func (s *Solver) SolveAll(ctx context.Context, base *domain.Scenario, targetMargin decimal.Decimal) (*MultiTargetResult, error) {
	if base == nil {
		return nil, &BreakEvenError{Operation: "solve_all", Message: "base scenario cannot be nil"}
	}

	requests := []SolveRequest{
		{Base: base, Target: TargetResidualLand, Constraints: Constraints{TargetMargin: &targetMargin}},
		{Base: base, Target: TargetSalePrice},
		{Base: base, Target: TargetConstructionCost, Constraints: Constraints{TargetMargin: &targetMargin}},
	}

	multi := &MultiTargetResult{Scenario: base.Name}
	var failures []string
	for _, req := range requests {
		result, err := s.Solve(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			failures = append(failures, err.Error())
			continue
		}
		multi.Results = append(multi.Results, *result)
	}

	if len(multi.Results) == 0 {
		return nil, &BreakEvenError{
			Operation: "solve_all",
			Message:   fmt.Sprintf("no target could be solved (%d failures)", len(failures)),
		}
	}

	multi.Recommendations = generateRecommendations(multi)
	return multi, nil
}

// generateRecommendations turns solved values into plain statements of headroom
func generateRecommendations(result *MultiTargetResult) []string {
	var recommendations []string

	for _, r := range result.Results {
		margin := "the target"
		if r.TargetMargin != nil {
			margin = r.TargetMargin.StringFixed(1) + "%"
		}

		switch r.Target {
		case TargetResidualLand:
			if r.DiffFromBase.IsNegative() {
				recommendations = append(recommendations, fmt.Sprintf(
					"Land is priced $%s above its residual value of $%s at a %s margin; renegotiate or redesign",
					r.DiffFromBase.Abs().StringFixed(0), r.Value.StringFixed(0), margin))
			} else {
				recommendations = append(recommendations, fmt.Sprintf(
					"Land could be bought for up to $%s (headroom $%s) and still earn a %s margin",
					r.Value.StringFixed(0), r.DiffFromBase.StringFixed(0), margin))
			}

		case TargetSalePrice:
			if r.Value.IsNegative() {
				recommendations = append(recommendations, fmt.Sprintf(
					"Sale prices can fall %s%% before the project loses money", r.Value.Abs().StringFixed(1)))
			} else {
				recommendations = append(recommendations, fmt.Sprintf(
					"Sale prices must rise %s%% just to break even", r.Value.StringFixed(1)))
			}

		case TargetConstructionCost:
			if r.Value.IsNegative() {
				recommendations = append(recommendations, fmt.Sprintf(
					"Construction must come in %s%% cheaper to reach a %s margin", r.Value.Abs().StringFixed(1), margin))
			} else {
				recommendations = append(recommendations, fmt.Sprintf(
					"Construction can overrun by %s%% before the margin drops below %s", r.Value.StringFixed(1), margin))
			}
		}
	}

	return recommendations
}
