package output

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/rgehrsitz/devfeas/internal/domain"
)

// MonthlyCSVFormatter writes the full monthly series, one row per scenario month
type MonthlyCSVFormatter struct{}

func (c MonthlyCSVFormatter) Name() string { return "csv" }

var monthlyHeader = []string{
	"Scenario", "Month", "Date",
	"CostNet", "CostGST", "CostGross",
	"RevenueGross", "RevenueGST", "RevenueNet",
	"OperatingCosts", "TerminalValue", "GSTCredit",
	"SeniorDraw", "SeniorRepayment", "SeniorInterest", "SeniorFees", "SeniorBalance",
	"MezzanineDraw", "MezzanineRepayment", "MezzanineInterest", "MezzanineFees", "MezzanineBalance",
	"EquityDrawn", "EquityDistribution", "EquityBalance",
	"SurplusBalance", "RefinanceInflow", "InvestmentBalance",
	"NetCashflow", "CumulativeCashflow", "FundingShortfall",
}

func (c MonthlyCSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(monthlyHeader); err != nil {
		return nil, err
	}
	for _, res := range report.Results {
		for _, f := range res.Flows {
			row := []string{
				res.Scenario,
				strconv.Itoa(f.Month),
				f.Date.Format("2006-01-02"),
				f.CostNet.StringFixed(2),
				f.CostGST.StringFixed(2),
				f.CostGross.StringFixed(2),
				f.RevenueGross.StringFixed(2),
				f.RevenueGST.StringFixed(2),
				f.RevenueNet.StringFixed(2),
				f.OperatingCosts.StringFixed(2),
				f.TerminalValue.StringFixed(2),
				f.GSTCredit.StringFixed(2),
			}
			row = append(row, tierColumns(f.Senior)...)
			row = append(row, tierColumns(f.Mezzanine)...)
			row = append(row,
				f.EquityDrawn.StringFixed(2),
				f.EquityDistribution.StringFixed(2),
				f.EquityBalance.StringFixed(2),
				f.SurplusBalance.StringFixed(2),
				f.RefinanceInflow.StringFixed(2),
				f.InvestmentBalance.StringFixed(2),
				f.NetCashflow.StringFixed(2),
				f.CumulativeCashflow.StringFixed(2),
				f.FundingShortfall.StringFixed(2),
			)
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func tierColumns(t domain.TierFlow) []string {
	return []string{
		t.Draw.StringFixed(2),
		t.Repayment.StringFixed(2),
		t.Interest.StringFixed(2),
		t.Fees.StringFixed(2),
		t.Balance.StringFixed(2),
	}
}

// CSVSummarizer implements the simple summary CSV output (one row per scenario).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "summary-csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Strategy", "Months", "TotalProjectCost", "NetRealisation", "NetProfit", "MarginOnCost", "MarginOnRevenue", "EquityIRR", "ProjectIRR", "ProjectNPV", "PeakSenior", "PeakMezzanine", "PeakEquity", "ShortfallMonths"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	results := append([]*domain.FeasibilityResult(nil), report.Results...)
	sort.Slice(results, func(i, j int) bool { return results[i].Scenario < results[j].Scenario })
	for _, res := range results {
		m := res.Summary
		row := []string{
			res.Scenario,
			string(res.Strategy),
			strconv.Itoa(res.Timeline.Months),
			m.TotalProjectCost.StringFixed(2),
			m.NetRealisation.StringFixed(2),
			m.NetProfit.StringFixed(2),
			m.MarginOnCost.StringFixed(2),
			m.MarginOnRevenue.StringFixed(2),
			rateColumn(m.EquityIRR),
			rateColumn(m.ProjectIRR),
			m.ProjectNPV.StringFixed(2),
			m.PeakSenior.StringFixed(2),
			m.PeakMezzanine.StringFixed(2),
			m.PeakEquity.StringFixed(2),
			strconv.Itoa(len(m.ShortfallMonths)),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// rateColumn leaves an undefined rate blank so it is never read as zero
func rateColumn(r domain.RateOfReturn) string {
	if !r.Defined {
		return ""
	}
	return r.Annual.StringFixed(6)
}
