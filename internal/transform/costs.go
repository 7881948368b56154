package transform

import (
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// ScaleConstructionCosts moves every construction line item by a percentage.
// Items expressed as a percentage of the construction sum follow automatically.
type ScaleConstructionCosts struct {
	Percent decimal.Decimal
}

func (sc *ScaleConstructionCosts) Name() string {
	return "scale_construction_costs"
}

func (sc *ScaleConstructionCosts) Description() string {
	return fmt.Sprintf("Change construction costs by %s%%", sc.Percent.StringFixed(1))
}

func (sc *ScaleConstructionCosts) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(sc.Name(), "validate", "base scenario cannot be nil", nil)
	}
	if err := validatePercent(sc.Name(), sc.Percent); err != nil {
		return err
	}
	for _, item := range base.Costs {
		if item.Category == domain.CategoryConstruction {
			return nil
		}
	}
	return NewTransformError(sc.Name(), "validate", "scenario has no construction line items", nil)
}

func (sc *ScaleConstructionCosts) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()
	factor := percentFactor(sc.Percent)
	for i := range modified.Costs {
		if modified.Costs[i].Category == domain.CategoryConstruction {
			modified.Costs[i].Amount = modified.Costs[i].Amount.Mul(factor)
		}
	}
	return modified, nil
}

// SetEscalation replaces the annual escalation rate of one cost category
type SetEscalation struct {
	Category domain.CostCategory
	Rate     decimal.Decimal
}

func (se *SetEscalation) Name() string {
	return "set_escalation"
}

func (se *SetEscalation) Description() string {
	return fmt.Sprintf("Escalate %s costs at %s%% a year", se.Category, se.Rate.Mul(hundred).StringFixed(1))
}

func (se *SetEscalation) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(se.Name(), "validate", "base scenario cannot be nil", nil)
	}
	if !se.Category.Valid() {
		return NewTransformError(se.Name(), "validate", fmt.Sprintf("unknown cost category %q", se.Category), nil)
	}
	if se.Rate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return NewTransformError(se.Name(), "validate", "escalation must be greater than -100%", nil)
	}
	return nil
}

func (se *SetEscalation) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()
	if modified.Settings.Escalation == nil {
		modified.Settings.Escalation = make(map[domain.CostCategory]decimal.Decimal)
	}
	modified.Settings.Escalation[se.Category] = se.Rate
	return modified, nil
}
