package main

import (
	"time"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// exampleConfiguration is the starter file written by init: six townhouses sold
// off the plan, and the same project held and leased for ten years
func exampleConfiguration() *domain.Configuration {
	sell := domain.Scenario{
		Name:        "Townhouses",
		Description: "Six townhouses sold off the plan",
		Site: domain.Site{
			Name:         "12 Example Street",
			Area:         d(1200),
			Jurisdiction: "VIC",
		},
		Settings: domain.FeasibilitySettings{
			Acquisition: domain.Acquisition{
				Price:           d(1500000),
				DepositPercent:  d(0.1),
				SettlementMonth: 2,
			},
			Timing: domain.Timing{
				StartDate:         time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
				DurationMonths:    24,
				ConstructionDelay: 1,
			},
			Escalation:   map[domain.CostCategory]decimal.Decimal{domain.CategoryConstruction: d(0.04)},
			DiscountRate: d(0.1),
			GSTRate:      d(0.1),
			Units:        d(6),
			MarginScheme: true,
			Capital: domain.CapitalStack{
				Senior: &domain.CapitalTier{
					Name:               "Construction loan",
					RateMode:           domain.RateSingle,
					Rate:               d(0.075),
					EstablishmentFee:   d(0.01),
					EstablishmentBasis: domain.FeePctOfLimit,
					LimitMethod:        domain.LimitPctCost,
					Limit:              d(0.65),
					CapitaliseInterest: true,
				},
				Equity:      domain.EquityStructure{Mode: domain.EquityUpfront, Amount: d(1200000)},
				SurplusRate: d(0.03),
			},
		},
		Costs: []domain.LineItem{
			{Name: "Build contract", Category: domain.CategoryConstruction, Basis: domain.BasisFixed, Amount: d(3600000), Span: 12, Shape: domain.ShapeSCurve, TaxTreatment: domain.TaxTaxable},
			{Name: "Design and engineering", Category: domain.CategoryConsultants, Basis: domain.BasisPctConstruction, Amount: d(0.06), Span: 6, Shape: domain.ShapeLinear, TaxTreatment: domain.TaxTaxable},
			{Name: "Council contributions", Category: domain.CategoryStatutory, Basis: domain.BasisRateUnits, Amount: d(15000), Span: 1, Shape: domain.ShapeUpfront, TaxTreatment: domain.TaxExempt},
			{Name: "Contingency", Category: domain.CategoryMisc, Basis: domain.BasisPctConstruction, Amount: d(0.05), Span: 12, Shape: domain.ShapeLinear, TaxTreatment: domain.TaxTaxable},
			{Name: "Agent commission", Category: domain.CategorySelling, Basis: domain.BasisPctRevenue, Amount: d(0.02), RevenueLinked: true, TaxTreatment: domain.TaxTaxable},
		},
		Revenues: []domain.RevenueItem{
			{Name: "Townhouse", Strategy: domain.StrategySell, Mode: domain.ModeQuantity, Units: d(6), Price: d(1150000), Taxable: true, AbsorptionRate: d(2), SettlementOffset: 1},
		},
	}

	hold := *sell.DeepCopy()
	hold.Name = "Townhouses (hold)"
	hold.Description = "Same project leased and held for ten years"
	hold.Settings.Hold = &domain.HoldStrategy{
		RefinanceMonth:  16,
		RefinanceLVR:    d(0.6),
		InvestmentRate:  d(0.065),
		HoldYears:       10,
		TerminalCapRate: d(0.05),
		CapitalGrowth:   d(0.03),
		RentGrowth:      d(0.03),
		Depreciation: domain.DepreciationSplit{
			BuildingShare: d(0.7),
			BuildingRate:  d(0.025),
			PlantShare:    d(0.1),
			PlantRate:     d(0.1),
		},
	}
	hold.Costs = hold.Costs[:4]
	hold.Revenues = []domain.RevenueItem{
		{Name: "Townhouse lease", Strategy: domain.StrategyHold, Mode: domain.ModeQuantity, Units: d(6), Price: d(52000), Taxable: false, OpexRatio: d(0.2), Vacancy: d(0.03), LeaseUpMonths: 3, CapRate: d(0.05)},
	}

	return &domain.Configuration{Scenarios: []domain.Scenario{sell, hold}}
}
