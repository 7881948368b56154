package transform

import (
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// DelayConstruction adds months between land settlement and construction start
type DelayConstruction struct {
	Months int
}

func (dc *DelayConstruction) Name() string {
	return "delay_construction"
}

func (dc *DelayConstruction) Description() string {
	return fmt.Sprintf("Delay construction start by %d months", dc.Months)
}

func (dc *DelayConstruction) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(dc.Name(), "validate", "base scenario cannot be nil", nil)
	}
	if base.Settings.Timing.ConstructionDelay+dc.Months < 0 {
		return NewTransformError(dc.Name(), "validate", fmt.Sprintf("construction delay cannot become negative (currently %d months)", base.Settings.Timing.ConstructionDelay), nil)
	}
	return nil
}

func (dc *DelayConstruction) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()
	modified.Settings.Timing.ConstructionDelay += dc.Months
	return modified, nil
}

// ShiftSettlement moves land settlement, and everything anchored on it, by a number of months
type ShiftSettlement struct {
	Months int
}

func (sh *ShiftSettlement) Name() string {
	return "shift_settlement"
}

func (sh *ShiftSettlement) Description() string {
	return fmt.Sprintf("Move land settlement by %d months", sh.Months)
}

func (sh *ShiftSettlement) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(sh.Name(), "validate", "base scenario cannot be nil", nil)
	}
	acq := base.Settings.Acquisition
	if acq.SettlementMonth+sh.Months < acq.DepositMonth {
		return NewTransformError(sh.Name(), "validate", fmt.Sprintf("settlement cannot move before the deposit in month %d", acq.DepositMonth), nil)
	}
	return nil
}

func (sh *ShiftSettlement) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()
	modified.Settings.Acquisition.SettlementMonth += sh.Months
	return modified, nil
}

// AdjustInterestRate shifts a debt tier's rate, including every scheduled step, by Delta
type AdjustInterestRate struct {
	Tier  domain.FundingSource // senior or mezzanine
	Delta decimal.Decimal      // e.g. 0.01 for +100bp
}

func (ai *AdjustInterestRate) Name() string {
	return "adjust_interest_rate"
}

func (ai *AdjustInterestRate) Description() string {
	bp := ai.Delta.Mul(decimal.NewFromInt(10000))
	return fmt.Sprintf("Move %s interest rate by %sbp", ai.Tier, bp.StringFixed(0))
}

func (ai *AdjustInterestRate) Validate(base *domain.Scenario) error {
	if base == nil {
		return NewTransformError(ai.Name(), "validate", "base scenario cannot be nil", nil)
	}
	tier, err := ai.tier(&base.Settings.Capital)
	if err != nil {
		return err
	}
	if tier.Rate.Add(ai.Delta).LessThan(decimal.Zero) {
		return NewTransformError(ai.Name(), "validate", "adjusted rate cannot be negative", nil)
	}
	for _, step := range tier.Schedule {
		if step.Rate.Add(ai.Delta).LessThan(decimal.Zero) {
			return NewTransformError(ai.Name(), "validate", fmt.Sprintf("adjusted rate from month %d cannot be negative", step.FromMonth), nil)
		}
	}
	return nil
}

func (ai *AdjustInterestRate) Apply(base *domain.Scenario) (*domain.Scenario, error) {
	modified := base.DeepCopy()
	tier, err := ai.tier(&modified.Settings.Capital)
	if err != nil {
		return nil, err
	}
	tier.Rate = tier.Rate.Add(ai.Delta)
	for i := range tier.Schedule {
		tier.Schedule[i].Rate = tier.Schedule[i].Rate.Add(ai.Delta)
	}
	return modified, nil
}

func (ai *AdjustInterestRate) tier(stack *domain.CapitalStack) (*domain.CapitalTier, error) {
	var tier *domain.CapitalTier
	switch ai.Tier {
	case domain.SourceSenior:
		tier = stack.Senior
	case domain.SourceMezzanine:
		tier = stack.Mezzanine
	default:
		return nil, NewTransformError(ai.Name(), "validate", fmt.Sprintf("tier must be senior or mezzanine, got %q", ai.Tier), nil)
	}
	if tier == nil {
		return nil, NewTransformError(ai.Name(), "validate", fmt.Sprintf("scenario has no %s tier", ai.Tier), nil)
	}
	return tier, nil
}
