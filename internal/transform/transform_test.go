package transform

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Helper function to create a basic test scenario
func createTestScenario() *domain.Scenario {
	return &domain.Scenario{
		Name: "Test Scenario",
		Site: domain.Site{Name: "Lot 4", Area: d("1200"), Jurisdiction: "VIC"},
		Settings: domain.FeasibilitySettings{
			Acquisition: domain.Acquisition{Price: d("1000000"), DepositPercent: d("0.1"), SettlementMonth: 2},
			Timing:      domain.Timing{DurationMonths: 24, ConstructionDelay: 1},
			GSTRate:     d("0.1"),
			Capital: domain.CapitalStack{
				Senior: &domain.CapitalTier{
					RateMode:    domain.RateSchedule,
					Rate:        d("0.07"),
					Schedule:    []domain.ScheduledRate{{FromMonth: 0, Rate: d("0.07")}, {FromMonth: 12, Rate: d("0.075")}},
					LimitMethod: domain.LimitPctCost,
					Limit:       d("0.7"),
				},
				Equity: domain.EquityStructure{Mode: domain.EquityUpfront, Amount: d("500000")},
			},
		},
		Costs: []domain.LineItem{
			{Name: "Build", Category: domain.CategoryConstruction, Basis: domain.BasisFixed, Amount: d("2000000"), Span: 12, Shape: domain.ShapeSCurve},
			{Name: "Design", Category: domain.CategoryConsultants, Basis: domain.BasisPctConstruction, Amount: d("0.06"), Span: 4},
		},
		Revenues: []domain.RevenueItem{
			{Name: "Townhouse", Strategy: domain.StrategySell, Mode: domain.ModeQuantity, Units: d("6"), Price: d("1100000"), CommissionRate: d("0.02"), SettlementSpan: 3},
		},
	}
}

func holdSettings() *domain.HoldStrategy {
	return &domain.HoldStrategy{
		RefinanceMonth:  20,
		RefinanceLVR:    d("0.6"),
		InvestmentRate:  d("0.065"),
		HoldYears:       5,
		TerminalCapRate: d("0.05"),
	}
}

func TestApplyTransforms_NilScenario(t *testing.T) {
	transforms := []ScenarioTransform{&AdjustLandPrice{Price: d("900000")}}

	_, err := ApplyTransforms(nil, transforms)
	if err == nil {
		t.Error("Expected error for nil scenario, got nil")
	}
}

func TestApplyTransforms_EmptyTransforms(t *testing.T) {
	base := createTestScenario()

	result, err := ApplyTransforms(base, []ScenarioTransform{})
	if err != nil {
		t.Fatalf("Expected no error for empty transforms, got: %v", err)
	}
	if result == base {
		t.Error("Expected a copy, got same instance")
	}
	if result.Name != base.Name {
		t.Errorf("Expected name %s, got %s", base.Name, result.Name)
	}
}

func TestApplyTransforms_NilTransform(t *testing.T) {
	transforms := []ScenarioTransform{&AdjustLandPrice{Price: d("900000")}, nil}

	_, err := ApplyTransforms(createTestScenario(), transforms)
	if err == nil {
		t.Error("Expected error for nil transform in list, got nil")
	}
}

func TestApplyTransforms_ValidationFailure(t *testing.T) {
	transforms := []ScenarioTransform{&AdjustInterestRate{Tier: domain.SourceMezzanine, Delta: d("0.01")}}

	_, err := ApplyTransforms(createTestScenario(), transforms)
	if err == nil {
		t.Fatal("Expected validation error for missing mezzanine tier, got nil")
	}

	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("Expected a TransformError in the chain, got %T", err)
	}
	if te.TransformName != "adjust_interest_rate" {
		t.Errorf("Expected transform name adjust_interest_rate, got %s", te.TransformName)
	}
}

func TestApplyTransforms_MultipleTransforms(t *testing.T) {
	base := createTestScenario()

	transforms := []ScenarioTransform{
		&AdjustLandPrice{Price: d("850000")},
		&ScaleSalePrices{Percent: d("-10")},
		&ScaleConstructionCosts{Percent: d("10")},
		&DelayConstruction{Months: 3},
		&AdjustInterestRate{Tier: domain.SourceSenior, Delta: d("0.01")},
	}

	result, err := ApplyTransforms(base, transforms)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !result.Settings.Acquisition.Price.Equal(d("850000")) {
		t.Errorf("Expected land price 850000, got %s", result.Settings.Acquisition.Price)
	}
	if !result.Revenues[0].Price.Equal(d("990000")) {
		t.Errorf("Expected sale price 990000, got %s", result.Revenues[0].Price)
	}
	if !result.Costs[0].Amount.Equal(d("2200000")) {
		t.Errorf("Expected construction 2200000, got %s", result.Costs[0].Amount)
	}
	if !result.Costs[1].Amount.Equal(d("0.06")) {
		t.Errorf("Consultant percentage should be untouched, got %s", result.Costs[1].Amount)
	}
	if result.Settings.Timing.ConstructionDelay != 4 {
		t.Errorf("Expected construction delay 4, got %d", result.Settings.Timing.ConstructionDelay)
	}
	senior := result.Settings.Capital.Senior
	if !senior.Rate.Equal(d("0.08")) || !senior.Schedule[1].Rate.Equal(d("0.085")) {
		t.Errorf("Expected every senior rate up 100bp, got %s and %s", senior.Rate, senior.Schedule[1].Rate)
	}

	// Original should be unchanged
	if !base.Settings.Acquisition.Price.Equal(d("1000000")) ||
		!base.Revenues[0].Price.Equal(d("1100000")) ||
		!base.Costs[0].Amount.Equal(d("2000000")) ||
		!base.Settings.Capital.Senior.Schedule[1].Rate.Equal(d("0.075")) {
		t.Error("Original scenario was modified")
	}
}

func TestApplyTransforms_TransformChaining(t *testing.T) {
	transforms := []ScenarioTransform{
		&ScaleSalePrices{Percent: d("10")},
		&ScaleSalePrices{Percent: d("10")},
	}

	result, err := ApplyTransforms(createTestScenario(), transforms)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Compounded, not added
	if !result.Revenues[0].Price.Equal(d("1331000")) {
		t.Errorf("Expected price 1331000, got %s", result.Revenues[0].Price)
	}
}

func TestPercentValidation(t *testing.T) {
	base := createTestScenario()
	for _, tr := range []ScenarioTransform{
		&ScaleSalePrices{Percent: d("-100")},
		&ScaleConstructionCosts{Percent: d("-150")},
		&AdjustLandPrice{Price: d("-1")},
		&DelayConstruction{Months: -2},
		&ShiftSettlement{Months: -3},
		&SetEscalation{Category: "fitout", Rate: d("0.03")},
		&ScaleRents{Percent: d("5")},
	} {
		if err := tr.Validate(base); err == nil {
			t.Errorf("Expected %s to reject its parameters", tr.Name())
		}
	}
}

func TestSetEscalation(t *testing.T) {
	base := createTestScenario()
	result, err := ApplyTransforms(base, []ScenarioTransform{&SetEscalation{Category: domain.CategoryConstruction, Rate: d("0.05")}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Settings.Escalation[domain.CategoryConstruction].Equal(d("0.05")) {
		t.Errorf("Expected construction escalation 0.05, got %s", result.Settings.Escalation[domain.CategoryConstruction])
	}
	if base.Settings.Escalation != nil {
		t.Error("Original scenario was modified")
	}
}

func TestShiftSettlement(t *testing.T) {
	result, err := ApplyTransforms(createTestScenario(), []ScenarioTransform{&ShiftSettlement{Months: 4}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Settings.Acquisition.SettlementMonth != 6 {
		t.Errorf("Expected settlement month 6, got %d", result.Settings.Acquisition.SettlementMonth)
	}
}

func TestSetStrategy_SellToHold(t *testing.T) {
	base := createTestScenario()

	strategy := &SetStrategy{Strategy: domain.StrategyHold, RentYield: d("0.05")}
	if err := strategy.Validate(base); err == nil {
		t.Fatal("Expected hold conversion without hold settings to fail")
	}

	strategy.Hold = holdSettings()
	result, err := ApplyTransforms(base, []ScenarioTransform{strategy})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	item := result.Revenues[0]
	if item.Strategy != domain.StrategyHold || item.Mode != domain.ModeLumpSum {
		t.Errorf("Expected a lump sum hold item, got %s/%s", item.Strategy, item.Mode)
	}
	// 6 x 1,100,000 x 5%
	if !item.Price.Equal(d("330000")) {
		t.Errorf("Expected annual rent 330000, got %s", item.Price)
	}
	if !item.CapRate.Equal(d("0.05")) {
		t.Errorf("Expected cap rate from hold settings, got %s", item.CapRate)
	}
	if !item.CommissionRate.IsZero() {
		t.Error("Sale commission should not carry into a held item")
	}
	if result.Settings.Hold == nil || result.Settings.Hold == strategy.Hold {
		t.Error("Expected a copy of the supplied hold settings")
	}
	if err := result.Validate(); err != nil {
		t.Errorf("Converted scenario should validate: %v", err)
	}
	if base.Revenues[0].Strategy != domain.StrategySell {
		t.Error("Original scenario was modified")
	}
}

func TestSetStrategy_HoldToSell(t *testing.T) {
	base := createTestScenario()
	base.Settings.Hold = holdSettings()
	base.Revenues = []domain.RevenueItem{
		{Name: "Shops", Strategy: domain.StrategyHold, Mode: domain.ModeLumpSum, Price: d("400000"), CapRate: d("0.064")},
		{Name: "Offices", Strategy: domain.StrategyHold, Mode: domain.ModeLumpSum, Price: d("100000")},
	}

	result, err := ApplyTransforms(base, []ScenarioTransform{&SetStrategy{Strategy: domain.StrategySell}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !result.Revenues[0].Price.Equal(d("6250000")) {
		t.Errorf("Expected 400000 / 6.4%% = 6250000, got %s", result.Revenues[0].Price)
	}
	if !result.Revenues[1].Price.Equal(d("2000000")) {
		t.Errorf("Expected terminal cap rate fallback 2000000, got %s", result.Revenues[1].Price)
	}
	if result.Settings.Hold != nil {
		t.Error("Expected hold settings to be dropped")
	}
	if base.Settings.Hold == nil {
		t.Error("Original scenario was modified")
	}
}

func TestSetStrategy_UnknownStrategy(t *testing.T) {
	err := (&SetStrategy{Strategy: "lease_back"}).Validate(createTestScenario())
	if err == nil {
		t.Error("Expected error for unknown strategy")
	}
}

func TestTransformError(t *testing.T) {
	err := NewTransformError("test_transform", "apply", "test reason", nil)

	expectedMsg := "transform test_transform (apply): test reason"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestTransformError_WithWrappedError(t *testing.T) {
	innerErr := fmt.Errorf("inner error")
	err := NewTransformError("test_transform", "validate", "validation failed", innerErr)

	expectedMsg := "transform test_transform (validate): validation failed: inner error"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
	if !errors.Is(err, innerErr) {
		t.Error("Expected wrapped error to be reachable with errors.Is")
	}
}

func TestApplyTransforms_WrapsStepErrors(t *testing.T) {
	_, err := ApplyTransforms(createTestScenario(), []ScenarioTransform{&SetStrategy{Strategy: "lease_back"}})
	if err == nil {
		t.Fatal("Expected error for unknown strategy")
	}

	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("Expected a TransformError in the chain, got %T", err)
	}
	if te.TransformName == "" {
		t.Error("Expected the failing transform to be named")
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil); got != "" {
		t.Errorf("Expected empty description, got %q", got)
	}

	a := &AdjustLandPrice{Price: d("900000")}
	b := &ShiftSettlement{Months: 2}
	want := a.Description() + "; " + b.Description()
	if got := Describe([]ScenarioTransform{a, b}); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
