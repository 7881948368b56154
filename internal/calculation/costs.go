package calculation

import (
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// Earmark is a land payment routed directly to a designated funding tier
type Earmark struct {
	Month  int
	Amount decimal.Decimal // gross of GST
	Source domain.FundingSource
}

// CostSchedule is the month-indexed cost recognition for a scenario
type CostSchedule struct {
	ByCategory map[domain.CostCategory][]decimal.Decimal // net
	Net        []decimal.Decimal
	GST        []decimal.Decimal
	Gross      []decimal.Decimal
	Earmarks   []Earmark

	ConstructionSum decimal.Decimal // resolved, unescalated construction totals
	TotalNet        decimal.Decimal // final aggregate used by pct_cost limits and equity
}

func newCostSchedule(months int) *CostSchedule {
	cs := &CostSchedule{
		ByCategory: make(map[domain.CostCategory][]decimal.Decimal, len(domain.CostCategories)),
		Net:        zeros(months),
		GST:        zeros(months),
		Gross:      zeros(months),
	}
	for _, cat := range domain.CostCategories {
		cs.ByCategory[cat] = zeros(months)
	}
	return cs
}

// add books a net increment and its GST against a month
func (cs *CostSchedule) add(month int, category domain.CostCategory, net decimal.Decimal, treatment domain.TaxTreatment, gstRate decimal.Decimal) decimal.Decimal {
	if month < 0 || month >= len(cs.Net) || net.IsZero() {
		return decimal.Zero
	}
	gst := decimal.Zero
	if treatment == domain.TaxTaxable {
		gst = round(net.Mul(gstRate))
	}
	cs.ByCategory[category][month] = cs.ByCategory[category][month].Add(net)
	cs.Net[month] = cs.Net[month].Add(net)
	cs.GST[month] = cs.GST[month].Add(gst)
	cs.Gross[month] = cs.Gross[month].Add(net.Add(gst))
	return net.Add(gst)
}

// CostCalculator resolves line items into a monthly schedule
type CostCalculator struct {
	Taxes *TaxEvaluator
}

// NewCostCalculator creates a cost calculator bound to a tax evaluator
func NewCostCalculator(taxes *TaxEvaluator) *CostCalculator {
	return &CostCalculator{Taxes: taxes}
}

// ResolveAmount converts an item's Amount into a currency total using the final
// aggregates. It never reads a running partial sum.
func ResolveAmount(item domain.LineItem, scenario *domain.Scenario, constructionSum, totalRevenue decimal.Decimal) (decimal.Decimal, error) {
	switch item.Basis {
	case domain.BasisFixed, "":
		return item.Amount, nil
	case domain.BasisPctConstruction:
		return item.Amount.Mul(constructionSum), nil
	case domain.BasisPctRevenue:
		return item.Amount.Mul(totalRevenue), nil
	case domain.BasisRateUnits:
		return item.Amount.Mul(scenario.Settings.Units), nil
	case domain.BasisRateArea:
		return item.Amount.Mul(scenario.Site.Area), nil
	default:
		return decimal.Zero, fmt.Errorf("line item %q: unknown input basis %q", item.Name, item.Basis)
	}
}

// Build produces the cost schedule. Revenue must already be recognised because
// pct_revenue items and revenue-linked items read from it.
func (cc *CostCalculator) Build(scenario *domain.Scenario, tl domain.Timeline, revenue *RevenueSchedule) (*CostSchedule, error) {
	cs := newCostSchedule(tl.Months)
	settings := scenario.Settings
	gstRate := settings.GSTRate

	for _, item := range scenario.Costs {
		if item.Category != domain.CategoryConstruction || item.RevenueLinked {
			continue
		}
		amount, err := ResolveAmount(item, scenario, decimal.Zero, revenue.TotalGross)
		if err != nil {
			return nil, err
		}
		cs.ConstructionSum = cs.ConstructionSum.Add(amount)
	}

	factors := make(map[string][]decimal.Decimal)
	escalationFactors := func(item domain.LineItem) []decimal.Decimal {
		annual := settings.Escalation[item.Category]
		if item.Escalation != nil {
			annual = *item.Escalation
		}
		key := annual.String()
		if f, ok := factors[key]; ok {
			return f
		}
		f := CompoundFactors(MonthlyFromAnnual(annual), tl.Months)
		factors[key] = f
		return f
	}

	for _, item := range scenario.Costs {
		if item.RevenueLinked {
			for m := 0; m < tl.Months; m++ {
				cs.add(m, item.Category, round(item.Amount.Mul(revenue.Gross[m])), item.TaxTreatment, gstRate)
			}
			continue
		}

		total, err := ResolveAmount(item, scenario, cs.ConstructionSum, revenue.TotalGross)
		if err != nil {
			return nil, err
		}
		profile, err := Profile(total, item.Span, item.Shape, item.Milestones)
		if err != nil {
			return nil, fmt.Errorf("line item %q: %w", item.Name, err)
		}
		escalation := escalationFactors(item)
		start := Anchor(item, tl) + item.StartOffset
		for t, increment := range profile {
			m := start + t
			if m < 0 || m >= tl.Months {
				continue
			}
			cs.add(m, item.Category, round(increment.Mul(escalation[m])), item.TaxTreatment, gstRate)
		}
	}

	for m, commission := range revenue.Commission {
		cs.add(m, domain.CategorySelling, commission, domain.TaxTaxable, gstRate)
	}

	cc.addAcquisition(cs, scenario, tl)

	for _, net := range cs.Net {
		cs.TotalNet = cs.TotalNet.Add(net)
	}
	return cs, nil
}

// addAcquisition synthesises the implicit land items: deposit, settlement balance,
// stamp duty and annual land tax
func (cc *CostCalculator) addAcquisition(cs *CostSchedule, scenario *domain.Scenario, tl domain.Timeline) {
	acq := scenario.Settings.Acquisition
	if acq.Price.LessThanOrEqual(decimal.Zero) {
		return
	}
	gstRate := scenario.Settings.GSTRate
	landTreatment := domain.TaxTaxable
	if scenario.Settings.MarginScheme {
		landTreatment = domain.TaxMarginScheme
	}
	funding := scenario.Settings.Capital.LandFunding

	deposit := round(acq.Price.Mul(acq.DepositPercent))
	balance := acq.Price.Sub(deposit)

	if gross := cs.add(acq.DepositMonth, domain.CategoryLand, deposit, landTreatment, gstRate); gross.GreaterThan(decimal.Zero) {
		cs.Earmarks = append(cs.Earmarks, Earmark{Month: acq.DepositMonth, Amount: gross, Source: funding.Deposit})
	}
	if gross := cs.add(tl.SettlementMonth, domain.CategoryLand, balance, landTreatment, gstRate); gross.GreaterThan(decimal.Zero) {
		cs.Earmarks = append(cs.Earmarks, Earmark{Month: tl.SettlementMonth, Amount: gross, Source: funding.Settlement})
	}

	jurisdiction := scenario.Site.Jurisdiction
	duty := round(cc.Taxes.Evaluate(acq.Price, jurisdiction, domain.TaxStampDuty, acq.ForeignBuyer))
	cs.add(tl.SettlementMonth, domain.CategoryStatutory, duty, domain.TaxExempt, gstRate)

	landTax := round(cc.Taxes.Evaluate(acq.Price, jurisdiction, domain.TaxLandTax, acq.ForeignBuyer))
	for m := tl.SettlementMonth + 12; m < tl.Months; m += 12 {
		cs.add(m, domain.CategoryStatutory, landTax, domain.TaxExempt, gstRate)
	}
}
