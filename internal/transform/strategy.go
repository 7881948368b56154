package transform

import (
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// SetStrategy converts every revenue item to the sell or hold exit.
//
// Converting to hold turns each sale into an annual rent of RentYield times its
// sale value and requires hold settings, either already on the scenario or supplied
// in Hold. Converting to sell capitalises each rent at the item's cap rate (or the
// terminal cap rate) and drops the hold settings so no refinance or terminal
// valuation is simulated.
type SetStrategy struct {
	Strategy  domain.Strategy
	RentYield decimal.Decimal
	Hold      *domain.HoldStrategy
}

func (ss *SetStrategy) Name() string {
	return "set_strategy"
}

func (ss *SetStrategy) Description() string {
	if ss.Strategy == domain.StrategyHold {
		return fmt.Sprintf("Hold and lease at a %s%% gross yield", ss.RentYield.Mul(hundred).StringFixed(2))
	}
	return "Sell every product on completion"
}

func (ss *SetStrategy) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(ss.Name(), "validate", "base scenario cannot be nil", nil)
	}

	switch ss.Strategy {
	case domain.StrategyHold:
		if ss.Hold == nil && base.Settings.Hold == nil {
			return NewTransformError(ss.Name(), "validate", "hold strategy requires hold settings", nil)
		}
		if ss.Hold != nil {
			if err := ss.Hold.Validate(); err != nil {
				return NewTransformError(ss.Name(), "validate", "invalid hold settings", err)
			}
		}
		for _, r := range base.Revenues {
			if r.Strategy == domain.StrategySell && ss.RentYield.LessThanOrEqual(decimal.Zero) {
				return NewTransformError(ss.Name(), "validate", "converting sales to rent requires a positive rent yield", nil)
			}
		}
	case domain.StrategySell:
		for _, r := range base.Revenues {
			if r.Strategy == domain.StrategyHold && ss.capRate(base, r).LessThanOrEqual(decimal.Zero) {
				return NewTransformError(ss.Name(), "validate", fmt.Sprintf("revenue item %s has no cap rate to value it for sale", r.Name), nil)
			}
		}
	default:
		return NewTransformError(ss.Name(), "validate", fmt.Sprintf("unknown strategy %q", ss.Strategy), nil)
	}
	return nil
}

func (ss *SetStrategy) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()

	if ss.Strategy == domain.StrategyHold {
		if ss.Hold != nil {
			hold := *ss.Hold
			modified.Settings.Hold = &hold
		}
		for i, r := range modified.Revenues {
			if r.Strategy == domain.StrategyHold {
				continue
			}
			modified.Revenues[i] = domain.RevenueItem{
				Name:          r.Name,
				Strategy:      domain.StrategyHold,
				Mode:          domain.ModeLumpSum,
				Units:         r.Units,
				Price:         r.Total().Mul(ss.RentYield),
				Taxable:       r.Taxable,
				LeaseUpMonths: r.LeaseUpMonths,
				CapRate:       modified.Settings.Hold.TerminalCapRate,
			}
		}
		return modified, nil
	}

	for i, r := range modified.Revenues {
		if r.Strategy == domain.StrategySell {
			continue
		}
		modified.Revenues[i] = domain.RevenueItem{
			Name:     r.Name,
			Strategy: domain.StrategySell,
			Mode:     domain.ModeLumpSum,
			Units:    r.Units,
			Price:    r.Total().Div(ss.capRate(base, r)),
			Taxable:  r.Taxable,
		}
	}
	modified.Settings.Hold = nil
	return modified, nil
}

func (ss *SetStrategy) capRate(base *domain.Scenario, r domain.RevenueItem) decimal.Decimal {
	if r.CapRate.GreaterThan(decimal.Zero) {
		return r.CapRate
	}
	if base.Settings.Hold != nil {
		return base.Settings.Hold.TerminalCapRate
	}
	return decimal.Zero
}
