package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Validate checks a scenario before simulation. Every structural problem the engine
// cannot recover from is reported here rather than during the month loop.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if err := s.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	for i := range s.Costs {
		if err := s.Costs[i].Validate(); err != nil {
			return fmt.Errorf("cost %d (%s): %w", i, s.Costs[i].Name, err)
		}
	}
	hasHold := false
	for i := range s.Revenues {
		if err := s.Revenues[i].Validate(); err != nil {
			return fmt.Errorf("revenue %d (%s): %w", i, s.Revenues[i].Name, err)
		}
		if s.Revenues[i].Strategy == StrategyHold {
			hasHold = true
		}
	}
	if hasHold && s.Settings.Hold == nil {
		return fmt.Errorf("hold revenue items require a hold strategy in settings")
	}
	if s.Site.Area.LessThan(decimal.Zero) {
		return fmt.Errorf("site area cannot be negative")
	}
	return nil
}

// Validate checks a cost line item
func (li LineItem) Validate() error {
	if li.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !li.Category.Valid() {
		return fmt.Errorf("unknown category %q", li.Category)
	}
	switch li.Basis {
	case "", BasisFixed, BasisPctRevenue, BasisRateUnits, BasisRateArea:
	case BasisPctConstruction:
		if li.Category == CategoryConstruction {
			return fmt.Errorf("construction items cannot be a percentage of the construction sum")
		}
	default:
		return fmt.Errorf("unknown input basis %q", li.Basis)
	}
	if li.RevenueLinked {
		if li.Amount.LessThan(decimal.Zero) || li.Amount.GreaterThan(one) {
			return fmt.Errorf("revenue-linked rate must be between 0 and 1")
		}
	} else if li.Span < 1 {
		return fmt.Errorf("span must be at least 1, got %d", li.Span)
	}
	if li.StartOffset < 0 {
		return fmt.Errorf("start offset cannot be negative")
	}
	switch li.Shape {
	case "", ShapeUpfront, ShapeEnd, ShapeLinear, ShapeSCurve, ShapeBellCurve:
	case ShapeMilestone:
		if len(li.Milestones) == 0 {
			return fmt.Errorf("milestone shape requires milestones")
		}
		for period := range li.Milestones {
			if period < 0 || period >= li.Span {
				return fmt.Errorf("milestone period %d is outside the %d month span", period, li.Span)
			}
		}
	default:
		return fmt.Errorf("unknown distribution shape %q", li.Shape)
	}
	switch li.TaxTreatment {
	case "", TaxTaxable, TaxExempt, TaxInputTaxed, TaxMarginScheme:
	default:
		return fmt.Errorf("unknown tax treatment %q", li.TaxTreatment)
	}
	return nil
}

// Validate checks a revenue item
func (r RevenueItem) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch r.Strategy {
	case StrategySell, StrategyHold:
	default:
		return fmt.Errorf("unknown strategy %q", r.Strategy)
	}
	switch r.Mode {
	case "", ModeLumpSum, ModeQuantity:
	default:
		return fmt.Errorf("unknown recognition mode %q", r.Mode)
	}
	if r.Price.LessThan(decimal.Zero) {
		return fmt.Errorf("price cannot be negative")
	}
	if r.Units.LessThan(decimal.Zero) {
		return fmt.Errorf("units cannot be negative")
	}
	if r.SettlementSpan < 0 || r.SettlementOffset < 0 || r.LeaseUpMonths < 0 {
		return fmt.Errorf("settlement span, settlement offset and lease-up months cannot be negative")
	}
	if err := fraction("vacancy", r.Vacancy); err != nil {
		return err
	}
	if err := fraction("opex ratio", r.OpexRatio); err != nil {
		return err
	}
	if err := fraction("commission rate", r.CommissionRate); err != nil {
		return err
	}
	if r.AbsorptionRate.LessThan(decimal.Zero) {
		return fmt.Errorf("absorption rate cannot be negative")
	}
	return nil
}

// Validate checks acquisition, timing, hold and capital settings
func (s FeasibilitySettings) Validate() error {
	acq := s.Acquisition
	if acq.Price.LessThan(decimal.Zero) {
		return fmt.Errorf("land price cannot be negative")
	}
	if err := fraction("deposit percent", acq.DepositPercent); err != nil {
		return err
	}
	if acq.SettlementMonth < 0 || acq.DepositMonth < 0 {
		return fmt.Errorf("deposit and settlement months cannot be negative")
	}
	if acq.DepositMonth > acq.SettlementMonth {
		return fmt.Errorf("deposit month %d is after settlement month %d", acq.DepositMonth, acq.SettlementMonth)
	}
	if s.Timing.DurationMonths < 0 || s.Timing.ConstructionDelay < 0 {
		return fmt.Errorf("duration and construction delay cannot be negative")
	}
	if s.GSTRate.LessThan(decimal.Zero) || s.GSTRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("gst rate must be in [0, 1), got %s", s.GSTRate)
	}
	if s.GSTCreditLag != nil && *s.GSTCreditLag < 0 {
		return fmt.Errorf("gst credit lag cannot be negative")
	}
	if s.DiscountRate.LessThanOrEqual(one.Neg()) {
		return fmt.Errorf("discount rate must be greater than -100%%")
	}
	if s.Units.LessThan(decimal.Zero) {
		return fmt.Errorf("units cannot be negative")
	}
	for cat := range s.Escalation {
		if !cat.Valid() {
			return fmt.Errorf("escalation for unknown category %q", cat)
		}
	}
	if s.Hold != nil {
		if err := s.Hold.Validate(); err != nil {
			return fmt.Errorf("hold strategy: %w", err)
		}
	}
	if err := s.Capital.Validate(); err != nil {
		return fmt.Errorf("capital stack: %w", err)
	}
	return nil
}

// Validate checks the hold phase parameters
func (h HoldStrategy) Validate() error {
	if h.HoldYears < 0 {
		return fmt.Errorf("hold years cannot be negative")
	}
	if h.RefinanceMonth < 0 {
		return fmt.Errorf("refinance month cannot be negative")
	}
	if err := fraction("refinance LVR", h.RefinanceLVR); err != nil {
		return err
	}
	if h.TerminalCapRate.LessThan(decimal.Zero) {
		return fmt.Errorf("terminal cap rate cannot be negative")
	}
	if h.CapitalGrowth.LessThanOrEqual(one.Neg()) || h.RentGrowth.LessThanOrEqual(one.Neg()) {
		return fmt.Errorf("growth rates must be greater than -100%%")
	}
	dep := h.Depreciation
	if dep.BuildingShare.Add(dep.PlantShare).GreaterThan(one) {
		return fmt.Errorf("depreciation shares exceed 100%%")
	}
	return nil
}

// Validate checks every configured tier and the equity structure
func (c CapitalStack) Validate() error {
	if c.Senior != nil {
		if err := c.Senior.Validate(); err != nil {
			return fmt.Errorf("senior: %w", err)
		}
	}
	if c.Mezzanine != nil {
		if err := c.Mezzanine.Validate(); err != nil {
			return fmt.Errorf("mezzanine: %w", err)
		}
	}
	if err := c.Equity.Validate(); err != nil {
		return fmt.Errorf("equity: %w", err)
	}
	if c.JointVenture != nil {
		if err := fraction("joint venture partner share", c.JointVenture.PartnerShare); err != nil {
			return err
		}
	}
	if c.SurplusRate.LessThan(decimal.Zero) {
		return fmt.Errorf("surplus rate cannot be negative")
	}
	for _, src := range []FundingSource{c.LandFunding.Deposit, c.LandFunding.Settlement} {
		switch src {
		case SourceWaterfall, SourceEquity:
		case SourceSenior:
			if c.Senior == nil {
				return fmt.Errorf("land payments earmarked to senior debt but no senior tier is configured")
			}
		case SourceMezzanine:
			if c.Mezzanine == nil {
				return fmt.Errorf("land payments earmarked to mezzanine debt but no mezzanine tier is configured")
			}
		default:
			return fmt.Errorf("unknown land funding source %q", src)
		}
	}
	return nil
}

// Validate checks that a debt tier carries every parameter its modes require
func (t CapitalTier) Validate() error {
	switch t.RateMode {
	case RateSingle, "":
		if t.Rate.LessThan(decimal.Zero) {
			return fmt.Errorf("rate cannot be negative")
		}
	case RateSchedule:
		if len(t.Schedule) == 0 {
			return fmt.Errorf("schedule rate mode requires at least one scheduled rate")
		}
		for i, step := range t.Schedule {
			if step.Rate.LessThan(decimal.Zero) {
				return fmt.Errorf("scheduled rate %d cannot be negative", i)
			}
			if i > 0 && step.FromMonth <= t.Schedule[i-1].FromMonth {
				return fmt.Errorf("scheduled rates must be in ascending month order")
			}
		}
	default:
		return fmt.Errorf("unknown rate mode %q", t.RateMode)
	}

	switch t.LimitMethod {
	case LimitUnlimited:
	case LimitFixed:
		if t.Limit.LessThan(decimal.Zero) {
			return fmt.Errorf("fixed limit cannot be negative")
		}
	case LimitPctRevenue, LimitPctCost:
		if t.Limit.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%s limit requires a positive ratio", t.LimitMethod)
		}
	case "":
		return fmt.Errorf("limit method is required")
	default:
		return fmt.Errorf("unknown limit method %q", t.LimitMethod)
	}

	switch t.EstablishmentBasis {
	case "", FeeFixed:
	case FeePctOfLimit:
		if t.LimitMethod == LimitUnlimited {
			return fmt.Errorf("establishment fee on limit requires a bounded limit")
		}
	default:
		return fmt.Errorf("unknown establishment fee basis %q", t.EstablishmentBasis)
	}
	if t.EstablishmentFee.LessThan(decimal.Zero) || t.LineFee.LessThan(decimal.Zero) {
		return fmt.Errorf("fees cannot be negative")
	}
	if t.ActivationMonth < 0 {
		return fmt.Errorf("activation month cannot be negative")
	}
	return nil
}

// Validate checks that the equity mode carries its parameters
func (e EquityStructure) Validate() error {
	if e.StartMonth < 0 {
		return fmt.Errorf("start month cannot be negative")
	}
	switch e.Mode {
	case "":
	case EquityUpfront:
		if e.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("upfront amount cannot be negative")
		}
	case EquityPctLand, EquityPctCost:
		if err := fraction("equity percent", e.Percent); err != nil {
			return err
		}
	case EquityPariPassu:
		if e.Percent.LessThanOrEqual(decimal.Zero) || e.Percent.GreaterThan(one) {
			return fmt.Errorf("pari passu share must be in (0, 1]")
		}
	case EquityInstalments:
		if len(e.Instalments) == 0 {
			return fmt.Errorf("instalment mode requires at least one instalment")
		}
		for i, inst := range e.Instalments {
			if inst.Month < 0 || inst.Amount.LessThan(decimal.Zero) {
				return fmt.Errorf("instalment %d has a negative month or amount", i)
			}
		}
	default:
		return fmt.Errorf("unknown equity mode %q", e.Mode)
	}
	return nil
}

func fraction(name string, v decimal.Decimal) error {
	if v.LessThan(decimal.Zero) || v.GreaterThan(one) {
		return fmt.Errorf("%s must be between 0 and 1, got %s", name, v)
	}
	return nil
}
