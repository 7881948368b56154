package transform

import (
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentFactor converts a percentage change such as -10 into a multiplier of 0.9
func percentFactor(pct decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(pct.Div(hundred))
}

func validatePercent(name string, pct decimal.Decimal) error {
	if pct.LessThanOrEqual(hundred.Neg()) {
		return NewTransformError(name, "validate", fmt.Sprintf("percent change must be greater than -100, got %s", pct.String()), nil)
	}
	return nil
}

// AdjustLandPrice replaces the land purchase price. Stamp duty, land tax and any
// land-linked equity follow from the new price when the scenario is evaluated.
type AdjustLandPrice struct {
	Price decimal.Decimal
}

func (al *AdjustLandPrice) Name() string {
	return "adjust_land_price"
}

func (al *AdjustLandPrice) Description() string {
	return fmt.Sprintf("Set land price to $%s", al.Price.StringFixed(0))
}

func (al *AdjustLandPrice) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(al.Name(), "validate", "base scenario cannot be nil", nil)
	}
	if al.Price.LessThan(decimal.Zero) {
		return NewTransformError(al.Name(), "validate", fmt.Sprintf("land price cannot be negative, got %s", al.Price.String()), nil)
	}
	return nil
}

func (al *AdjustLandPrice) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()
	modified.Settings.Acquisition.Price = al.Price
	return modified, nil
}

// ScaleSalePrices moves every sell item's price by a percentage. Held items are
// left alone; their price is a rent.
type ScaleSalePrices struct {
	Percent decimal.Decimal // e.g. -10 for a 10% fall
}

func (sp *ScaleSalePrices) Name() string {
	return "scale_sale_prices"
}

func (sp *ScaleSalePrices) Description() string {
	return fmt.Sprintf("Change sale prices by %s%%", sp.Percent.StringFixed(1))
}

func (sp *ScaleSalePrices) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(sp.Name(), "validate", "base scenario cannot be nil", nil)
	}
	if err := validatePercent(sp.Name(), sp.Percent); err != nil {
		return err
	}
	for _, r := range base.Revenues {
		if r.Strategy == domain.StrategySell {
			return nil
		}
	}
	return NewTransformError(sp.Name(), "validate", "scenario has no sell revenue items", nil)
}

func (sp *ScaleSalePrices) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()
	factor := percentFactor(sp.Percent)
	for i := range modified.Revenues {
		if modified.Revenues[i].Strategy == domain.StrategySell {
			modified.Revenues[i].Price = modified.Revenues[i].Price.Mul(factor)
		}
	}
	return modified, nil
}

// ScaleRents moves every hold item's annual rent by a percentage
type ScaleRents struct {
	Percent decimal.Decimal
}

func (sr *ScaleRents) Name() string {
	return "scale_rents"
}

func (sr *ScaleRents) Description() string {
	return fmt.Sprintf("Change rents by %s%%", sr.Percent.StringFixed(1))
}

func (sr *ScaleRents) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(sr.Name(), "validate", "base scenario cannot be nil", nil)
	}
	if err := validatePercent(sr.Name(), sr.Percent); err != nil {
		return err
	}
	if base.Strategy() != domain.StrategyHold {
		return NewTransformError(sr.Name(), "validate", "scenario has no hold revenue items", nil)
	}
	return nil
}

func (sr *ScaleRents) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()
	factor := percentFactor(sr.Percent)
	for i := range modified.Revenues {
		if modified.Revenues[i].Strategy == domain.StrategyHold {
			modified.Revenues[i].Price = modified.Revenues[i].Price.Mul(factor)
		}
	}
	return modified, nil
}
