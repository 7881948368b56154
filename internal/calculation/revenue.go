package calculation

import (
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// RevenueSchedule is the month-indexed revenue recognition for a scenario
type RevenueSchedule struct {
	Gross      []decimal.Decimal // GST-inclusive receipts, including terminal value
	GST        []decimal.Decimal // liability on receipts
	Net        []decimal.Decimal // Gross - GST
	Opex       []decimal.Decimal // hold-phase operating expenses
	Terminal   []decimal.Decimal // exit valuation, also included in Gross and Net
	Commission []decimal.Decimal // selling commission generated by sales

	TotalGross decimal.Decimal

	RefinanceMonth     int // -1 when no refinance event occurs
	RefinanceValuation decimal.Decimal
	RefinanceInflow    decimal.Decimal
}

func newRevenueSchedule(months int) *RevenueSchedule {
	return &RevenueSchedule{
		Gross:          zeros(months),
		GST:            zeros(months),
		Net:            zeros(months),
		Opex:           zeros(months),
		Terminal:       zeros(months),
		Commission:     zeros(months),
		RefinanceMonth: -1,
	}
}

// SaleSpan returns the number of months a sale item settles over. An explicit
// settlement span wins; otherwise units / absorption rate, rounded up.
func SaleSpan(item domain.RevenueItem) int {
	if item.SettlementSpan > 0 {
		return item.SettlementSpan
	}
	if item.AbsorptionRate.GreaterThan(decimal.Zero) && item.Units.GreaterThan(decimal.Zero) {
		span := int(item.Units.Div(item.AbsorptionRate).Ceil().IntPart())
		if span > 0 {
			return span
		}
	}
	return 1
}

// gstComponent extracts the GST included in a GST-inclusive amount
func gstComponent(inclusive, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return inclusive.Mul(rate).Div(one.Add(rate))
}

// BuildRevenueSchedule recognises every revenue item across the timeline
func BuildRevenueSchedule(scenario *domain.Scenario, tl domain.Timeline) *RevenueSchedule {
	rs := newRevenueSchedule(tl.Months)
	settings := scenario.Settings

	totalUnits := settings.Units
	totalSellGross := decimal.Zero
	if totalUnits.LessThanOrEqual(decimal.Zero) {
		totalUnits = decimal.Zero
		for _, item := range scenario.Revenues {
			if item.Strategy == domain.StrategySell {
				totalUnits = totalUnits.Add(item.Units)
			}
		}
	}
	for _, item := range scenario.Revenues {
		if item.Strategy == domain.StrategySell {
			totalSellGross = totalSellGross.Add(item.Total())
		}
	}

	for _, item := range scenario.Revenues {
		switch item.Strategy {
		case domain.StrategyHold:
			rs.addHold(item, settings, tl)
		default:
			rs.addSale(item, settings, tl, totalUnits, totalSellGross)
		}
	}

	if settings.Hold != nil {
		rs.addRefinance(scenario, tl)
	}

	for m := range rs.Gross {
		rs.TotalGross = rs.TotalGross.Add(rs.Gross[m])
	}
	return rs
}

func (rs *RevenueSchedule) addSale(item domain.RevenueItem, settings domain.FeasibilitySettings, tl domain.Timeline, totalUnits, totalSellGross decimal.Decimal) {
	span := SaleSpan(item)
	spanD := decimal.NewFromInt(int64(span))
	start := tl.ConstructionEnd + item.SettlementOffset

	monthlyGross := item.Total().Div(spanD)
	monthlyUnits := item.Units.Div(spanD)
	landPrice := settings.Acquisition.Price

	for m := start; m < start+span && m < tl.Months; m++ {
		if m < 0 {
			continue
		}
		gst := decimal.Zero
		if item.Taxable {
			base := monthlyGross
			if settings.MarginScheme {
				base = monthlyGross.Sub(allocatedLandCost(landPrice, monthlyUnits, totalUnits, monthlyGross, totalSellGross))
				if base.LessThan(decimal.Zero) {
					base = decimal.Zero
				}
			}
			gst = gstComponent(base, settings.GSTRate)
		}
		rs.Gross[m] = rs.Gross[m].Add(monthlyGross)
		rs.GST[m] = rs.GST[m].Add(gst)
		rs.Net[m] = rs.Net[m].Add(monthlyGross.Sub(gst))
		if item.CommissionRate.GreaterThan(decimal.Zero) {
			rs.Commission[m] = rs.Commission[m].Add(monthlyGross.Mul(item.CommissionRate))
		}
	}
}

// allocatedLandCost shares land cost by units settled this month, or by value when
// the scenario carries no unit counts
func allocatedLandCost(landPrice, unitsThisMonth, totalUnits, grossThisMonth, totalGross decimal.Decimal) decimal.Decimal {
	if totalUnits.GreaterThan(decimal.Zero) && unitsThisMonth.GreaterThan(decimal.Zero) {
		return landPrice.Mul(unitsThisMonth).Div(totalUnits)
	}
	if totalGross.GreaterThan(decimal.Zero) {
		return landPrice.Mul(grossThisMonth).Div(totalGross)
	}
	return decimal.Zero
}

// rentGrowthFactor is (1+growth)^(whole years since opening)
func rentGrowthFactor(hold *domain.HoldStrategy, month, operatingStart int) decimal.Decimal {
	if hold == nil || hold.RentGrowth.IsZero() || month < operatingStart {
		return one
	}
	return powInt(one.Add(hold.RentGrowth), (month-operatingStart)/12)
}

// stabilisedNOI is the fully let annual net operating income of a hold item at month,
// excluding GST
func stabilisedNOI(item domain.RevenueItem, settings domain.FeasibilitySettings, month, operatingStart int) decimal.Decimal {
	rent := item.Total().Mul(rentGrowthFactor(settings.Hold, month, operatingStart))
	rent = rent.Mul(one.Sub(item.Vacancy))
	if item.Taxable {
		rent = rent.Sub(gstComponent(rent, settings.GSTRate))
	}
	return rent.Mul(one.Sub(item.OpexRatio))
}

// Capitalise values an income stream; a non-positive cap rate yields zero
func Capitalise(income, capRate decimal.Decimal) decimal.Decimal {
	if capRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return income.Div(capRate)
}

func (rs *RevenueSchedule) addHold(item domain.RevenueItem, settings domain.FeasibilitySettings, tl domain.Timeline) {
	for m := tl.OperatingStart; m < tl.Months; m++ {
		ramp := one
		if item.LeaseUpMonths > 0 {
			ramp = decimal.NewFromInt(int64(m - tl.OperatingStart + 1)).Div(decimal.NewFromInt(int64(item.LeaseUpMonths)))
			if ramp.GreaterThan(one) {
				ramp = one
			}
		}

		potential := item.Total().Mul(rentGrowthFactor(settings.Hold, m, tl.OperatingStart)).Div(twelve)
		gross := round(potential.Mul(ramp).Mul(one.Sub(item.Vacancy)))
		gst := decimal.Zero
		if item.Taxable {
			gst = round(gstComponent(gross, settings.GSTRate))
		}
		net := gross.Sub(gst)

		rs.Gross[m] = rs.Gross[m].Add(gross)
		rs.GST[m] = rs.GST[m].Add(gst)
		rs.Net[m] = rs.Net[m].Add(net)
		rs.Opex[m] = rs.Opex[m].Add(round(net.Mul(item.OpexRatio)))
	}

	if !tl.HasHold {
		return
	}
	terminal := tl.TerminalMonth()
	capRate := settings.Hold.TerminalCapRate
	if capRate.LessThanOrEqual(decimal.Zero) {
		capRate = item.CapRate
	}
	value := round(Capitalise(stabilisedNOI(item, settings, terminal, tl.OperatingStart), capRate))
	rs.Terminal[terminal] = rs.Terminal[terminal].Add(value)
	rs.Gross[terminal] = rs.Gross[terminal].Add(value)
	rs.Net[terminal] = rs.Net[terminal].Add(value)
}

// addRefinance values the held income at the refinance month and sizes the
// refinance inflow from the LVR
func (rs *RevenueSchedule) addRefinance(scenario *domain.Scenario, tl domain.Timeline) {
	hold := scenario.Settings.Hold
	month := hold.RefinanceMonth
	if month <= 0 || month >= tl.Months || hold.RefinanceLVR.LessThanOrEqual(decimal.Zero) {
		return
	}

	valuation := decimal.Zero
	for _, item := range scenario.Revenues {
		if item.Strategy != domain.StrategyHold {
			continue
		}
		capRate := item.CapRate
		if capRate.LessThanOrEqual(decimal.Zero) {
			capRate = hold.TerminalCapRate
		}
		valuation = valuation.Add(Capitalise(stabilisedNOI(item, scenario.Settings, month, tl.OperatingStart), capRate))
	}
	if valuation.IsZero() {
		return
	}

	rs.RefinanceMonth = month
	rs.RefinanceValuation = round(valuation)
	rs.RefinanceInflow = round(valuation.Mul(hold.RefinanceLVR))
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
