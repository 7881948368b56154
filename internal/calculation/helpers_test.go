package calculation

import (
	"strings"
	"sync"
	"time"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decimalPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func boolPtr(b bool) *bool {
	return &b
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// TestLogger records formatted-message prefixes for assertions
type TestLogger struct {
	mu       sync.Mutex
	messages []string
}

func (tl *TestLogger) add(level, format string) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.messages = append(tl.messages, level+": "+format)
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) { tl.add("DEBUG", format) }
func (tl *TestLogger) Infof(format string, args ...interface{})  { tl.add("INFO", format) }
func (tl *TestLogger) Warnf(format string, args ...interface{})  { tl.add("WARN", format) }
func (tl *TestLogger) Errorf(format string, args ...interface{}) { tl.add("ERROR", format) }

func (tl *TestLogger) contains(level, fragment string) bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	for _, m := range tl.messages {
		if strings.HasPrefix(m, level+": ") && strings.Contains(m, fragment) {
			return true
		}
	}
	return false
}

// seniorOnlyScenario is a single 100,000 cost in month 1 funded by an unlimited,
// capitalising senior facility at 12% and no equity
func seniorOnlyScenario() *domain.Scenario {
	return &domain.Scenario{
		Name: "senior only",
		Site: domain.Site{Name: "Test", Jurisdiction: "VIC"},
		Settings: domain.FeasibilitySettings{
			Timing: domain.Timing{DurationMonths: 3},
			Capital: domain.CapitalStack{
				Senior: &domain.CapitalTier{
					RateMode:           domain.RateSingle,
					Rate:               dec("0.12"),
					LimitMethod:        domain.LimitUnlimited,
					CapitaliseInterest: true,
				},
			},
		},
		Costs: []domain.LineItem{
			{
				Name:         "Works",
				Category:     domain.CategoryMisc,
				Basis:        domain.BasisFixed,
				Amount:       dec("100000"),
				StartOffset:  1,
				Span:         1,
				Shape:        domain.ShapeUpfront,
				TaxTreatment: domain.TaxExempt,
			},
		},
	}
}

// sellScenario is a small townhouse development sold on completion
func sellScenario() *domain.Scenario {
	return &domain.Scenario{
		Name: "townhouses",
		Site: domain.Site{Name: "Lot 4", Area: dec("1200"), Jurisdiction: "VIC"},
		Settings: domain.FeasibilitySettings{
			Acquisition: domain.Acquisition{
				Price:           dec("1000000"),
				DepositPercent:  dec("0.1"),
				SettlementMonth: 2,
			},
			Timing: domain.Timing{
				StartDate:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				DurationMonths:    24,
				ConstructionDelay: 1,
			},
			Escalation:   map[domain.CostCategory]decimal.Decimal{domain.CategoryConstruction: dec("0.04")},
			DiscountRate: dec("0.1"),
			GSTRate:      dec("0.1"),
			Units:        dec("6"),
			Capital: domain.CapitalStack{
				Senior: &domain.CapitalTier{
					RateMode:           domain.RateSingle,
					Rate:               dec("0.08"),
					LimitMethod:        domain.LimitPctCost,
					Limit:              dec("0.7"),
					EstablishmentFee:   dec("0.01"),
					EstablishmentBasis: domain.FeePctOfLimit,
					CapitaliseInterest: true,
				},
				Mezzanine: &domain.CapitalTier{
					RateMode:           domain.RateSingle,
					Rate:               dec("0.15"),
					LimitMethod:        domain.LimitFixed,
					Limit:              dec("300000"),
					CapitaliseInterest: true,
				},
				Equity: domain.EquityStructure{
					Mode:   domain.EquityUpfront,
					Amount: dec("600000"),
				},
				SurplusRate: dec("0.02"),
			},
		},
		Costs: []domain.LineItem{
			{
				Name: "Design", Category: domain.CategoryConsultants, Basis: domain.BasisPctConstruction,
				Amount: dec("0.06"), Span: 4, Shape: domain.ShapeLinear, TaxTreatment: domain.TaxTaxable,
			},
			{
				Name: "Build", Category: domain.CategoryConstruction, Basis: domain.BasisRateUnits,
				Amount: dec("350000"), Span: 12, Shape: domain.ShapeSCurve, TaxTreatment: domain.TaxTaxable,
			},
			{
				Name: "Council contributions", Category: domain.CategoryStatutory, Basis: domain.BasisRateArea,
				Amount: dec("25"), StartOffset: 2, Span: 1, Shape: domain.ShapeUpfront, TaxTreatment: domain.TaxExempt,
			},
			{
				Name: "Marketing", Category: domain.CategorySelling, Basis: domain.BasisPctRevenue,
				Amount: dec("0.01"), Span: 3, Shape: domain.ShapeLinear, TaxTreatment: domain.TaxTaxable,
			},
		},
		Revenues: []domain.RevenueItem{
			{
				Name: "Townhouse", Strategy: domain.StrategySell, Mode: domain.ModeQuantity,
				Units: dec("6"), Price: dec("1100000"), Taxable: true,
				SettlementSpan: 3, CommissionRate: dec("0.02"),
			},
		},
	}
}

// holdScenario builds and leases a small commercial building
func holdScenario() *domain.Scenario {
	s := sellScenario()
	s.Name = "hold"
	s.Settings.Hold = &domain.HoldStrategy{
		RefinanceMonth:  20,
		RefinanceLVR:    dec("0.65"),
		InvestmentRate:  dec("0.065"),
		HoldYears:       3,
		TerminalCapRate: dec("0.065"),
		CapitalGrowth:   dec("0.03"),
		RentGrowth:      dec("0.025"),
		Depreciation: domain.DepreciationSplit{
			BuildingShare: dec("0.85"), BuildingRate: dec("0.025"),
			PlantShare: dec("0.15"), PlantRate: dec("0.1"),
		},
	}
	s.Revenues = []domain.RevenueItem{
		{
			Name: "Shops", Strategy: domain.StrategyHold, Mode: domain.ModeLumpSum,
			Price: dec("480000"), Taxable: true, OpexRatio: dec("0.2"), Vacancy: dec("0.05"),
			LeaseUpMonths: 6, CapRate: dec("0.06"),
		},
	}
	s.Costs = s.Costs[:3]
	return s
}
