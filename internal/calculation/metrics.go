package calculation

import (
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// MaxIRRIterations bounds the Newton-Raphson solver
	MaxIRRIterations = 40
	irrScale         = 24
)

var (
	irrEpsilon = decimal.New(1, -10)
	irrGuess   = decimal.New(1, -2)
)

// IRR solves for the monthly rate r at which the cashflows have zero present value.
// Flows are indexed by month from 0. The result is undefined, never zero, when no
// root can be found.
func IRR(cashflows []decimal.Decimal) domain.RateOfReturn {
	if len(cashflows) < 2 {
		return undefinedRate("fewer than two cashflows")
	}
	var positive, negative bool
	for _, cf := range cashflows {
		switch cf.Sign() {
		case 1:
			positive = true
		case -1:
			negative = true
		}
	}
	if !positive || !negative {
		return undefinedRate("cashflows never change sign")
	}

	r := irrGuess
	for i := 0; i < MaxIRRIterations; i++ {
		npv, derivative := presentValue(cashflows, r)
		if derivative.IsZero() {
			return undefinedRate("derivative vanished")
		}
		next := r.Sub(npv.DivRound(derivative, irrScale)).Round(irrScale)
		if next.LessThanOrEqual(one.Neg()) {
			// Step halfway towards -100% instead of leaving the domain
			next = r.Sub(one).DivRound(decimal.NewFromInt(2), irrScale)
		}
		if next.Sub(r).Abs().LessThan(irrEpsilon) {
			return domain.RateOfReturn{
				Defined: true,
				Monthly: next.Round(workingScale),
				Annual:  AnnualiseMonthly(next).Round(workingScale),
			}
		}
		r = next
	}
	return undefinedRate(fmt.Sprintf("no convergence within %d iterations", MaxIRRIterations))
}

// presentValue returns NPV(r) and dNPV/dr for monthly cashflows
func presentValue(cashflows []decimal.Decimal, r decimal.Decimal) (npv, derivative decimal.Decimal) {
	base := one.Add(r)
	factor := one // (1+r)^-t
	for t, cf := range cashflows {
		if !cf.IsZero() {
			npv = npv.Add(cf.Mul(factor))
			if t > 0 {
				// d/dr cf(1+r)^-t = -t cf (1+r)^-(t+1)
				term := cf.Mul(decimal.NewFromInt(int64(t))).Mul(factor).DivRound(base, irrScale)
				derivative = derivative.Sub(term)
			}
		}
		factor = factor.DivRound(base, irrScale)
	}
	return npv, derivative
}

func undefinedRate(reason string) domain.RateOfReturn {
	return domain.RateOfReturn{Reason: reason}
}

// AnnualiseMonthly converts a monthly rate to its effective annual equivalent
func AnnualiseMonthly(monthly decimal.Decimal) decimal.Decimal {
	return powInt(one.Add(monthly), 12).Sub(one)
}

// NPV discounts monthly cashflows at an effective annual rate; month 0 is undiscounted
func NPV(cashflows []decimal.Decimal, annualRate decimal.Decimal) decimal.Decimal {
	base := one.Add(MonthlyFromAnnual(annualRate))
	total := decimal.Zero
	factor := one
	for _, cf := range cashflows {
		total = total.Add(cf.Mul(factor))
		factor = factor.DivRound(base, irrScale)
	}
	return round(total)
}

// EquityCashflows is the investor view: draws negative, distributions positive
func EquityCashflows(flows []domain.MonthlyFlow) []decimal.Decimal {
	out := make([]decimal.Decimal, len(flows))
	for i, f := range flows {
		out[i] = f.EquityDistribution.Sub(f.EquityDrawn)
	}
	return out
}

// ProjectCashflows is the unlevered view before any funding
func ProjectCashflows(flows []domain.MonthlyFlow) []decimal.Decimal {
	out := make([]decimal.Decimal, len(flows))
	for i, f := range flows {
		out[i] = f.RevenueNet.Add(f.GSTCredit).Sub(f.CostGross).Sub(f.OperatingCosts)
	}
	return out
}

// Summarise aggregates the monthly series into summary metrics
func Summarise(flows []domain.MonthlyFlow, settings domain.FeasibilitySettings) domain.SummaryMetrics {
	var s domain.SummaryMetrics
	for _, f := range flows {
		s.TotalCostNet = s.TotalCostNet.Add(f.CostNet)
		s.TotalCostGross = s.TotalCostGross.Add(f.CostGross)
		s.GSTInputCredits = s.GSTInputCredits.Add(f.CostGST)
		s.FinanceCosts = s.FinanceCosts.
			Add(f.Senior.Interest).Add(f.Senior.Fees).
			Add(f.Mezzanine.Interest).Add(f.Mezzanine.Fees).
			Add(f.InvestmentInterest)
		s.OperatingCosts = s.OperatingCosts.Add(f.OperatingCosts)
		s.GrossRealisation = s.GrossRealisation.Add(f.RevenueGross)
		s.GSTCollected = s.GSTCollected.Add(f.RevenueGST)
		s.NetRealisation = s.NetRealisation.Add(f.RevenueNet)
		s.SurplusInterest = s.SurplusInterest.Add(f.SurplusInterest)
		s.EquityContributed = s.EquityContributed.Add(f.EquityDrawn)
		s.EquityReturned = s.EquityReturned.Add(f.EquityDistribution)
		s.RefinanceProceeds = s.RefinanceProceeds.Add(f.RefinanceInflow)
		s.TerminalValue = s.TerminalValue.Add(f.TerminalValue)
		s.TotalDepreciation = s.TotalDepreciation.Add(f.Depreciation)

		s.PeakSenior = decimal.Max(s.PeakSenior, f.Senior.Balance)
		s.PeakMezzanine = decimal.Max(s.PeakMezzanine, f.Mezzanine.Balance)
		s.PeakEquity = decimal.Max(s.PeakEquity, f.EquityBalance)

		if f.Shortfall {
			s.ShortfallMonths = append(s.ShortfallMonths, f.Month)
			s.TotalShortfall = s.TotalShortfall.Add(f.FundingShortfall)
		}
	}

	s.TotalProjectCost = s.TotalCostNet.Add(s.FinanceCosts)
	s.NetProfit = s.NetRealisation.Add(s.SurplusInterest).Sub(s.TotalProjectCost).Sub(s.OperatingCosts)
	s.MarginOnCost = percentOf(s.NetProfit, s.TotalProjectCost)
	s.MarginOnRevenue = percentOf(s.NetProfit, s.NetRealisation)
	if s.EquityContributed.GreaterThan(decimal.Zero) {
		s.EquityMultiple = s.EquityReturned.DivRound(s.EquityContributed, 4)
	}

	s.EquityIRR = IRR(EquityCashflows(flows))
	project := ProjectCashflows(flows)
	s.ProjectIRR = IRR(project)
	s.ProjectNPV = NPV(project, settings.DiscountRate)

	if jv := settings.Capital.JointVenture; jv != nil && jv.PartnerShare.GreaterThan(decimal.Zero) {
		developerShare := one.Sub(jv.PartnerShare)
		s.JointVenture = &domain.JointVentureSplit{
			PartnerName:     jv.PartnerName,
			PartnerShare:    jv.PartnerShare,
			PartnerEquity:   round(s.EquityContributed.Mul(jv.PartnerShare)),
			DeveloperEquity: round(s.EquityContributed.Mul(developerShare)),
			PartnerProfit:   round(s.NetProfit.Mul(jv.PartnerShare)),
			DeveloperProfit: round(s.NetProfit.Mul(developerShare)),
		}
	}
	return s
}

// percentOf returns part/whole as a percentage with two decimals, or zero when whole is zero
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, 2)
}
