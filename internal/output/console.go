package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders one set of headline metric cards per scenario
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, TitleStyle.Render("DEVELOPMENT FEASIBILITY SUMMARY"))
	fmt.Fprintln(&buf, strings.Repeat("=", 60))
	if report.ConfigPath != "" {
		fmt.Fprintf(&buf, "Configuration: %s\n", report.ConfigPath)
	}
	if len(report.Results) == 0 {
		fmt.Fprintln(&buf, "No scenarios were calculated.")
		return buf.Bytes(), nil
	}

	for _, res := range report.Results {
		fmt.Fprintln(&buf)
		writeScenarioHeader(&buf, res)
		fmt.Fprintln(&buf, metricGrid(headlineCards(res), 4))
		writeShortfall(&buf, res.Summary)
	}

	if best := bestByProfit(report.Results); best != nil && len(report.Results) > 1 {
		fmt.Fprintf(&buf, "\nMost profitable: %s (%s)\n", best.Scenario, FormatCurrency(best.Summary.NetProfit))
	}

	return buf.Bytes(), nil
}

// ConsoleVerboseFormatter renders the full feasibility report including the monthly series
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 100))
	fmt.Fprintln(&buf, TitleStyle.Render("DETAILED DEVELOPMENT FEASIBILITY ANALYSIS"))
	fmt.Fprintln(&buf, strings.Repeat("=", 100))
	if report.ConfigPath != "" {
		fmt.Fprintf(&buf, "Configuration: %s\n", report.ConfigPath)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	assumptions := report.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}
	for _, a := range assumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}

	for i, res := range report.Results {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "SCENARIO %d: %s\n", i+1, res.Scenario)
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		writeScenarioHeader(&buf, res)
		fmt.Fprintln(&buf, metricGrid(headlineCards(res), 4))
		writeShortfall(&buf, res.Summary)
		writeDetail(&buf, res)
		if len(res.Flows) > 1 {
			fmt.Fprintln(&buf, fundingChart(res.Flows))
		}
		writeMonthlyTable(&buf, res.Flows)
	}

	return buf.Bytes(), nil
}

func headlineCards(res *domain.FeasibilityResult) []string {
	m := res.Summary
	return []string{
		metricCard("Net Profit", FormatCurrency(m.NetProfit), sign(m.NetProfit)),
		metricCard("Margin on Cost", FormatPercentage(m.MarginOnCost), sign(m.MarginOnCost)),
		metricCard("Equity IRR", m.EquityIRR.String(), rateSign(m.EquityIRR)),
		metricCard("Peak Debt", FormatCurrency(peakDebt(res.Flows)), 0),
	}
}

func rateSign(r domain.RateOfReturn) int {
	if !r.Defined {
		return 0
	}
	return r.Annual.Sign()
}

func writeScenarioHeader(buf *bytes.Buffer, res *domain.FeasibilityResult) {
	tl := res.Timeline
	fmt.Fprintf(buf, "%s  strategy: %s  horizon: %d months  construction: M%d-M%d\n",
		SectionStyle.Render(res.Scenario), res.Strategy, tl.Months, tl.ConstructionStart, tl.ConstructionEnd)
}

func writeShortfall(buf *bytes.Buffer, m domain.SummaryMetrics) {
	if m.Feasible() {
		return
	}
	fmt.Fprintln(buf, WarningStyle.Render(fmt.Sprintf("FUNDING GAP: %d month(s) unfunded, total %s",
		len(m.ShortfallMonths), FormatCurrency(m.TotalShortfall))))
}

func writeDetail(buf *bytes.Buffer, res *domain.FeasibilityResult) {
	m := res.Summary

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "DEVELOPMENT COSTS (net of GST):")
	byCategory := costsByCategory(res.Flows)
	for _, cat := range domain.CostCategories {
		if v, ok := byCategory[cat]; ok && !v.IsZero() {
			fmt.Fprintf(buf, "  %-24s %18s\n", categoryLabel(cat)+":", FormatCurrency(v))
		}
	}
	fmt.Fprintf(buf, "  %-24s %18s\n", "Finance Costs:", FormatCurrency(m.FinanceCosts))
	if !m.OperatingCosts.IsZero() {
		fmt.Fprintf(buf, "  %-24s %18s\n", "Operating Costs:", FormatCurrency(m.OperatingCosts))
	}
	fmt.Fprintf(buf, "  %-24s %18s\n", "TOTAL PROJECT COST:", FormatCurrency(m.TotalProjectCost))
	fmt.Fprintf(buf, "  %-24s %18s\n", "GST Input Credits:", FormatCurrency(m.GSTInputCredits))

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "REALISATION:")
	fmt.Fprintf(buf, "  %-24s %18s\n", "Gross Realisation:", FormatCurrency(m.GrossRealisation))
	fmt.Fprintf(buf, "  %-24s %18s\n", "GST Collected:", FormatCurrency(m.GSTCollected))
	if !m.TerminalValue.IsZero() {
		fmt.Fprintf(buf, "  %-24s %18s\n", "Terminal Value:", FormatCurrency(m.TerminalValue))
	}
	if !m.SurplusInterest.IsZero() {
		fmt.Fprintf(buf, "  %-24s %18s\n", "Surplus Interest:", FormatCurrency(m.SurplusInterest))
	}
	fmt.Fprintf(buf, "  %-24s %18s\n", "NET REALISATION:", FormatCurrency(m.NetRealisation))

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "FUNDING:")
	fmt.Fprintf(buf, "  %-24s %18s\n", "Peak Senior Debt:", FormatCurrency(m.PeakSenior))
	fmt.Fprintf(buf, "  %-24s %18s\n", "Peak Mezzanine Debt:", FormatCurrency(m.PeakMezzanine))
	fmt.Fprintf(buf, "  %-24s %18s\n", "Peak Equity:", FormatCurrency(m.PeakEquity))
	fmt.Fprintf(buf, "  %-24s %18s\n", "Equity Contributed:", FormatCurrency(m.EquityContributed))
	fmt.Fprintf(buf, "  %-24s %18s\n", "Equity Returned:", FormatCurrency(m.EquityReturned))
	if !m.RefinanceProceeds.IsZero() {
		fmt.Fprintf(buf, "  %-24s %18s\n", "Refinance Proceeds:", FormatCurrency(m.RefinanceProceeds))
	}

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "RETURNS:")
	fmt.Fprintf(buf, "  %-24s %18s\n", "Net Profit:", FormatCurrency(m.NetProfit))
	fmt.Fprintf(buf, "  %-24s %18s\n", "Margin on Cost:", FormatPercentage(m.MarginOnCost))
	fmt.Fprintf(buf, "  %-24s %18s\n", "Margin on Revenue:", FormatPercentage(m.MarginOnRevenue))
	fmt.Fprintf(buf, "  %-24s %18s\n", "Equity IRR:", m.EquityIRR.String())
	fmt.Fprintf(buf, "  %-24s %18s\n", "Project IRR:", m.ProjectIRR.String())
	fmt.Fprintf(buf, "  %-24s %18s\n", "Project NPV:", FormatCurrency(m.ProjectNPV))
	fmt.Fprintf(buf, "  %-24s %18s\n", "Equity Multiple:", m.EquityMultiple.StringFixed(2)+"x")
	if !m.EquityIRR.Defined && m.EquityIRR.Reason != "" {
		fmt.Fprintf(buf, "  (equity IRR undefined: %s)\n", m.EquityIRR.Reason)
	}

	if jv := m.JointVenture; jv != nil {
		partner := jv.PartnerName
		if partner == "" {
			partner = "Partner"
		}
		fmt.Fprintln(buf)
		fmt.Fprintf(buf, "JOINT VENTURE (%s share %s):\n", partner, FormatPercentage(jv.PartnerShare.Mul(decimal.NewFromInt(100))))
		fmt.Fprintf(buf, "  %-24s %18s %18s\n", "", "Equity", "Profit")
		fmt.Fprintf(buf, "  %-24s %18s %18s\n", "Developer", FormatCurrency(jv.DeveloperEquity), FormatCurrency(jv.DeveloperProfit))
		fmt.Fprintf(buf, "  %-24s %18s %18s\n", partner, FormatCurrency(jv.PartnerEquity), FormatCurrency(jv.PartnerProfit))
	}
}

func writeMonthlyTable(buf *bytes.Buffer, flows []domain.MonthlyFlow) {
	if len(flows) == 0 {
		return
	}
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "MONTHLY CASHFLOW:")
	fmt.Fprintf(buf, "%-6s %-8s %14s %14s %14s %14s %14s %14s\n",
		"Month", "Date", "Costs", "Revenue", "Senior", "Mezzanine", "Equity", "Net")
	fmt.Fprintln(buf, strings.Repeat("-", 100))
	for _, f := range flows {
		flag := ""
		if f.Shortfall {
			flag = " SHORT"
		}
		fmt.Fprintf(buf, "%-6s %-8s %14s %14s %14s %14s %14s %14s%s\n",
			monthLabel(f.Month),
			f.Date.Format("2006-01"),
			f.CostGross.StringFixed(0),
			f.RevenueGross.StringFixed(0),
			f.Senior.Balance.StringFixed(0),
			f.Mezzanine.Balance.StringFixed(0),
			f.EquityBalance.StringFixed(0),
			f.NetCashflow.StringFixed(0),
			flag)
	}
}

// peakDebt is the highest combined senior and mezzanine balance in any month
func peakDebt(flows []domain.MonthlyFlow) decimal.Decimal {
	peak := decimal.Zero
	for _, f := range flows {
		if debt := f.Senior.Balance.Add(f.Mezzanine.Balance); debt.GreaterThan(peak) {
			peak = debt
		}
	}
	return peak
}

func costsByCategory(flows []domain.MonthlyFlow) map[domain.CostCategory]decimal.Decimal {
	totals := make(map[domain.CostCategory]decimal.Decimal)
	for _, f := range flows {
		for cat, v := range f.Costs {
			totals[cat] = totals[cat].Add(v)
		}
	}
	return totals
}

func categoryLabel(cat domain.CostCategory) string {
	s := string(cat)
	return strings.ToUpper(s[:1]) + s[1:]
}

func bestByProfit(results []*domain.FeasibilityResult) *domain.FeasibilityResult {
	var best *domain.FeasibilityResult
	for _, r := range results {
		if best == nil || r.Summary.NetProfit.GreaterThan(best.Summary.NetProfit) {
			best = r
		}
	}
	return best
}
