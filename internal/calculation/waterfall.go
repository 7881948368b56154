package calculation

import (
	"time"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// tierState is the running state of one debt facility
type tierState struct {
	cfg        *domain.CapitalTier
	limit      decimal.Decimal
	unlimited  bool
	balance    decimal.Decimal
	feeCharged bool
}

func newTierState(cfg *domain.CapitalTier, totalRevenue, totalCost decimal.Decimal) *tierState {
	ts := &tierState{cfg: cfg}
	if cfg == nil {
		return ts
	}
	ts.limit, ts.unlimited = TierLimit(cfg, totalRevenue, totalCost)
	return ts
}

// TierLimit resolves a facility limit once from the final aggregates. Only the
// unlimited method is unbounded; a resolved limit of zero means zero capacity.
func TierLimit(cfg *domain.CapitalTier, totalRevenue, totalCost decimal.Decimal) (decimal.Decimal, bool) {
	switch cfg.LimitMethod {
	case domain.LimitFixed:
		return cfg.Limit, false
	case domain.LimitPctRevenue:
		return round(cfg.Limit.Mul(totalRevenue)), false
	case domain.LimitPctCost:
		return round(cfg.Limit.Mul(totalCost)), false
	default:
		return decimal.Zero, true
	}
}

func (ts *tierState) configured() bool {
	return ts.cfg != nil
}

func (ts *tierState) active(month int) bool {
	return ts.cfg != nil && month >= ts.cfg.ActivationMonth
}

// headroom is the undrawn limit; callers check unlimited first
func (ts *tierState) headroom() decimal.Decimal {
	room := ts.limit.Sub(ts.balance)
	if room.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return room
}

// draw takes up to want from the facility and returns the amount drawn
func (ts *tierState) draw(want decimal.Decimal) decimal.Decimal {
	if want.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	amount := want
	if !ts.unlimited {
		amount = decimal.Min(want, ts.headroom())
	}
	ts.balance = ts.balance.Add(amount)
	return amount
}

// repay reduces the balance by up to available and returns the amount applied
func (ts *tierState) repay(available decimal.Decimal) decimal.Decimal {
	if available.LessThanOrEqual(decimal.Zero) || ts.balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	amount := decimal.Min(available, ts.balance)
	ts.balance = ts.balance.Sub(amount)
	return amount
}

// MonthlyRate returns the tier's nominal monthly rate in effect at month
func MonthlyRate(cfg *domain.CapitalTier, month int) decimal.Decimal {
	annual := cfg.Rate
	if cfg.RateMode == domain.RateSchedule {
		for _, step := range cfg.Schedule {
			if step.FromMonth <= month {
				annual = step.Rate
			}
		}
	}
	return NominalMonthly(annual)
}

// accrue charges interest on the opening balance plus any fees due this month.
// Capitalised charges are added to the balance up to the limit; the rest is
// returned as cash due.
func (ts *tierState) accrue(month int) (interest, fees, due decimal.Decimal) {
	if !ts.configured() {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	interest = round(ts.balance.Mul(MonthlyRate(ts.cfg, month)))

	if ts.active(month) {
		if !ts.feeCharged && !ts.cfg.EstablishmentFee.IsZero() {
			fee := ts.cfg.EstablishmentFee
			if ts.cfg.EstablishmentBasis == domain.FeePctOfLimit {
				fee = round(fee.Mul(ts.limit))
			}
			fees = fees.Add(fee)
			ts.feeCharged = true
		}
		if !ts.unlimited && !ts.cfg.LineFee.IsZero() {
			fees = fees.Add(round(ts.limit.Mul(ts.cfg.LineFee).Div(twelve)))
		}
	}

	charges := interest.Add(fees)
	if !ts.cfg.CapitaliseInterest {
		return interest, fees, charges
	}
	capitalised := charges
	if !ts.unlimited {
		capitalised = decimal.Min(charges, ts.headroom())
	}
	ts.balance = ts.balance.Add(capitalised)
	return interest, fees, charges.Sub(capitalised)
}

// Ledger is the state carried from one month to the next
type Ledger struct {
	Senior            *tierState
	Mezzanine         *tierState
	Surplus           decimal.Decimal
	EquityContributed decimal.Decimal
	EquityReturned    decimal.Decimal
	Investment        decimal.Decimal
	PendingCredits    map[int]decimal.Decimal
	AssetValue        decimal.Decimal
	Cumulative        decimal.Decimal
	Refinanced        bool
}

// Waterfall runs the month-by-month funding simulation
type Waterfall struct {
	scenario *domain.Scenario
	tl       domain.Timeline
	costs    *CostSchedule
	revenue  *RevenueSchedule

	equityInjections map[int]decimal.Decimal
	earmarks         map[int][]Earmark
	surplusRate      decimal.Decimal
	investmentRate   decimal.Decimal
	growthFactor     decimal.Decimal
	depreciation     decimal.Decimal
	creditLag        int
}

// NewWaterfall prepares a simulation. Limits and equity sums are resolved here,
// once, from the final aggregates.
func NewWaterfall(scenario *domain.Scenario, tl domain.Timeline, costs *CostSchedule, revenue *RevenueSchedule) *Waterfall {
	settings := scenario.Settings
	w := &Waterfall{
		scenario:         scenario,
		tl:               tl,
		costs:            costs,
		revenue:          revenue,
		equityInjections: EquityInjections(settings.Capital.Equity, settings.Acquisition.Price, costs.TotalNet),
		earmarks:         make(map[int][]Earmark),
		surplusRate:      NominalMonthly(settings.Capital.SurplusRate),
		growthFactor:     one,
		creditLag:        settings.CreditLag(),
	}
	for _, e := range costs.Earmarks {
		if e.Source != domain.SourceWaterfall {
			w.earmarks[e.Month] = append(w.earmarks[e.Month], e)
		}
	}
	if hold := settings.Hold; hold != nil {
		w.investmentRate = NominalMonthly(hold.InvestmentRate)
		w.growthFactor = one.Add(MonthlyFromAnnual(hold.CapitalGrowth))
		construction := decimal.Zero
		for _, v := range costs.ByCategory[domain.CategoryConstruction] {
			construction = construction.Add(v)
		}
		dep := hold.Depreciation
		annual := dep.BuildingShare.Mul(dep.BuildingRate).Add(dep.PlantShare.Mul(dep.PlantRate))
		w.depreciation = round(construction.Mul(annual).Div(twelve))
	}
	return w
}

// EquityInjections returns the scheduled equity contributions by month. Pari-passu
// equity has no schedule; it is drawn from each month's deficit.
func EquityInjections(equity domain.EquityStructure, landPrice, totalCost decimal.Decimal) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal)
	start := equity.StartMonth
	switch equity.Mode {
	case domain.EquityUpfront:
		out[start] = equity.Amount
	case domain.EquityPctLand:
		out[start] = round(equity.Percent.Mul(landPrice))
	case domain.EquityPctCost:
		out[start] = round(equity.Percent.Mul(totalCost))
	case domain.EquityInstalments:
		for _, inst := range equity.Instalments {
			out[inst.Month] = out[inst.Month].Add(inst.Amount)
		}
	}
	for m, v := range out {
		if v.LessThanOrEqual(decimal.Zero) {
			delete(out, m)
		}
	}
	return out
}

// Run simulates every month in order and returns the closed flows
func (w *Waterfall) Run() []domain.MonthlyFlow {
	capital := w.scenario.Settings.Capital
	ledger := &Ledger{
		Senior:         newTierState(capital.Senior, w.revenue.TotalGross, w.costs.TotalNet),
		Mezzanine:      newTierState(capital.Mezzanine, w.revenue.TotalGross, w.costs.TotalNet),
		PendingCredits: make(map[int]decimal.Decimal),
	}

	flows := make([]domain.MonthlyFlow, 0, w.tl.Months)
	for m := 0; m < w.tl.Months; m++ {
		flows = append(flows, w.step(m, ledger))
	}
	return flows
}

func (w *Waterfall) step(m int, l *Ledger) domain.MonthlyFlow {
	settings := w.scenario.Settings
	terminal := m == w.tl.TerminalMonth()

	flow := domain.MonthlyFlow{
		Month:          m,
		Date:           monthDate(settings.Timing.StartDate, m),
		Costs:          make(map[domain.CostCategory]decimal.Decimal, len(domain.CostCategories)),
		CostNet:        w.costs.Net[m],
		CostGST:        w.costs.GST[m],
		CostGross:      w.costs.Gross[m],
		RevenueGross:   w.revenue.Gross[m],
		RevenueGST:     w.revenue.GST[m],
		RevenueNet:     w.revenue.Net[m],
		OperatingCosts: w.revenue.Opex[m],
		TerminalValue:  w.revenue.Terminal[m],
	}
	for _, cat := range domain.CostCategories {
		flow.Costs[cat] = w.costs.ByCategory[cat][m]
	}

	// GST credits arrive after the lag; anything still pending is claimed at the end
	credit := l.PendingCredits[m]
	delete(l.PendingCredits, m)
	if terminal {
		for month, pending := range l.PendingCredits {
			credit = credit.Add(pending)
			delete(l.PendingCredits, month)
		}
	}
	flow.GSTCredit = credit
	if gst := w.costs.GST[m]; gst.GreaterThan(decimal.Zero) {
		if w.creditLag <= 0 || terminal {
			flow.GSTCredit = flow.GSTCredit.Add(gst)
		} else {
			l.PendingCredits[m+w.creditLag] = l.PendingCredits[m+w.creditLag].Add(gst)
		}
	}

	flow.SurplusInterest = round(l.Surplus.Mul(w.surplusRate))
	flow.InvestmentInterest = round(l.Investment.Mul(w.investmentRate))
	if m == w.revenue.RefinanceMonth {
		flow.RefinanceInflow = w.revenue.RefinanceInflow
	}

	// 1. Net period cashflow before funding
	inflow := flow.RevenueNet.Add(flow.GSTCredit).Add(flow.SurplusInterest).Add(flow.RefinanceInflow)
	outflow := flow.CostNet.Add(flow.CostGST).Add(flow.OperatingCosts).Add(flow.InvestmentInterest)
	net := inflow.Sub(outflow)

	// 2. Interest accrual on opening balances
	var seniorDue, mezzDue decimal.Decimal
	flow.Senior.Interest, flow.Senior.Fees, seniorDue = l.Senior.accrue(m)
	flow.Mezzanine.Interest, flow.Mezzanine.Fees, mezzDue = l.Mezzanine.accrue(m)
	net = net.Sub(seniorDue).Sub(mezzDue)
	flow.NetCashflow = net
	l.Cumulative = l.Cumulative.Add(net)
	flow.CumulativeCashflow = l.Cumulative

	injection := w.equityInjections[m]
	if injection.GreaterThan(decimal.Zero) {
		flow.EquityDrawn = flow.EquityDrawn.Add(injection)
		l.EquityContributed = l.EquityContributed.Add(injection)
	}

	if net.LessThan(decimal.Zero) {
		w.fund(m, net.Neg(), injection, l, &flow)
	} else {
		l.Surplus = l.Surplus.Add(injection)
		w.repay(net, terminal, l, &flow)
	}

	// Cash still banked at the end goes back through the repayment order
	if terminal && l.Surplus.GreaterThan(decimal.Zero) {
		banked := l.Surplus
		l.Surplus = decimal.Zero
		flow.SurplusDraw = flow.SurplusDraw.Add(banked)
		w.repay(banked, terminal, l, &flow)
	}

	// Refinance resets the investment facility to the refinance proceeds
	if m == w.revenue.RefinanceMonth {
		l.Investment = flow.RefinanceInflow
		l.Refinanced = true
		l.AssetValue = w.revenue.RefinanceValuation
	} else if l.Refinanced {
		l.AssetValue = round(l.AssetValue.Mul(w.growthFactor))
	} else {
		l.AssetValue = l.AssetValue.Add(flow.CostNet)
	}
	if settings.Hold != nil && m >= w.tl.OperatingStart {
		flow.Depreciation = w.depreciation
	}

	flow.Senior.Balance = l.Senior.balance
	flow.Mezzanine.Balance = l.Mezzanine.balance
	flow.SurplusBalance = l.Surplus
	flow.InvestmentBalance = l.Investment
	flow.AssetValue = l.AssetValue
	flow.EquityBalance = l.EquityContributed.Sub(l.EquityReturned)
	if flow.EquityBalance.LessThan(decimal.Zero) {
		flow.EquityBalance = decimal.Zero
	}
	return flow
}

// fund covers a deficit in strict priority order: earmarked tiers, this month's
// equity cash, pari-passu equity, surplus, mezzanine, senior, top-up equity.
// Anything left is recorded as a shortfall.
func (w *Waterfall) fund(m int, need, injection decimal.Decimal, l *Ledger, flow *domain.MonthlyFlow) {
	equity := w.scenario.Settings.Capital.Equity

	// An earmark draws its full amount; whatever the month does not need is banked
	cash := injection
	for _, e := range w.earmarks[m] {
		var got decimal.Decimal
		switch e.Source {
		case domain.SourceEquity:
			cash, got = w.earmarkEquity(e.Amount, cash, l, flow)
		case domain.SourceSenior:
			if l.Senior.active(m) {
				got = l.Senior.draw(e.Amount)
				flow.Senior.Draw = flow.Senior.Draw.Add(got)
			}
		case domain.SourceMezzanine:
			if l.Mezzanine.active(m) {
				got = l.Mezzanine.draw(e.Amount)
				flow.Mezzanine.Draw = flow.Mezzanine.Draw.Add(got)
			}
		}
		used := decimal.Min(got, decimal.Max(need, decimal.Zero))
		need = need.Sub(used)
		l.Surplus = l.Surplus.Add(got.Sub(used))
	}

	// Equity cash arriving this month pays next; the excess is banked
	if cash.GreaterThan(decimal.Zero) {
		used := decimal.Min(cash, decimal.Max(need, decimal.Zero))
		need = need.Sub(used)
		l.Surplus = l.Surplus.Add(cash.Sub(used))
	}

	if equity.Mode == domain.EquityPariPassu && need.GreaterThan(decimal.Zero) && m >= equity.StartMonth {
		share := decimal.Min(round(flow.CostGross.Mul(equity.Percent)), need)
		w.drawEquity(share, l, flow)
		need = need.Sub(share)
	}

	if need.GreaterThan(decimal.Zero) && l.Surplus.GreaterThan(decimal.Zero) {
		used := decimal.Min(l.Surplus, need)
		l.Surplus = l.Surplus.Sub(used)
		flow.SurplusDraw = flow.SurplusDraw.Add(used)
		need = need.Sub(used)
	}

	if need.GreaterThan(decimal.Zero) && l.Mezzanine.active(m) {
		got := l.Mezzanine.draw(need)
		flow.Mezzanine.Draw = flow.Mezzanine.Draw.Add(got)
		need = need.Sub(got)
	}

	if need.GreaterThan(decimal.Zero) && l.Senior.active(m) {
		got := l.Senior.draw(need)
		flow.Senior.Draw = flow.Senior.Draw.Add(got)
		need = need.Sub(got)
	}

	if need.GreaterThan(decimal.Zero) && equity.TopUpAllowed() {
		w.drawEquity(need, l, flow)
		need = decimal.Zero
	}

	if need.GreaterThan(decimal.Zero) {
		flow.FundingShortfall = need
		flow.Shortfall = true
	}
}

// earmarkEquity pays an equity-earmarked amount from the month's scheduled equity
// cash, then banked surplus, and only then from fresh equity. It returns the
// unspent scheduled cash and the amount raised.
func (w *Waterfall) earmarkEquity(amount, cash decimal.Decimal, l *Ledger, flow *domain.MonthlyFlow) (decimal.Decimal, decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return cash, decimal.Zero
	}
	fromCash := decimal.Min(cash, amount)
	rest := amount.Sub(fromCash)

	fromSurplus := decimal.Min(decimal.Max(l.Surplus, decimal.Zero), rest)
	if fromSurplus.GreaterThan(decimal.Zero) {
		l.Surplus = l.Surplus.Sub(fromSurplus)
		flow.SurplusDraw = flow.SurplusDraw.Add(fromSurplus)
	}

	w.drawEquity(rest.Sub(fromSurplus), l, flow)
	return cash.Sub(fromCash), amount
}

func (w *Waterfall) drawEquity(amount decimal.Decimal, l *Ledger, flow *domain.MonthlyFlow) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	flow.EquityDrawn = flow.EquityDrawn.Add(amount)
	l.EquityContributed = l.EquityContributed.Add(amount)
}

// repay applies positive cash: senior, mezzanine, the investment facility at the
// terminal month, then distributes the residual to equity
func (w *Waterfall) repay(available decimal.Decimal, terminal bool, l *Ledger, flow *domain.MonthlyFlow) {
	paid := l.Senior.repay(available)
	flow.Senior.Repayment = flow.Senior.Repayment.Add(paid)
	available = available.Sub(paid)

	paid = l.Mezzanine.repay(available)
	flow.Mezzanine.Repayment = flow.Mezzanine.Repayment.Add(paid)
	available = available.Sub(paid)

	if terminal && l.Investment.GreaterThan(decimal.Zero) && available.GreaterThan(decimal.Zero) {
		paid = decimal.Min(available, l.Investment)
		l.Investment = l.Investment.Sub(paid)
		flow.InvestmentRepaid = flow.InvestmentRepaid.Add(paid)
		available = available.Sub(paid)
	}

	if available.GreaterThan(decimal.Zero) {
		flow.EquityDistribution = flow.EquityDistribution.Add(available)
		l.EquityReturned = l.EquityReturned.Add(available)
	}
}

// monthDate is the calendar month for a month index
func monthDate(start time.Time, month int) time.Time {
	if start.IsZero() {
		return start
	}
	return start.AddDate(0, month, 0)
}
