package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buildTestReport() *Report {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	flows := []domain.MonthlyFlow{
		{
			Month:     0,
			Date:      start,
			Costs:     map[domain.CostCategory]decimal.Decimal{domain.CategoryLand: d("1000000")},
			CostNet:   d("1000000"),
			CostGross: d("1000000"),
			Senior:    domain.TierFlow{Draw: d("600000"), Balance: d("600000")},
			Mezzanine: domain.TierFlow{Draw: d("100000"), Balance: d("100000")},
			EquityDrawn:   d("300000"),
			EquityBalance: d("300000"),
			NetCashflow:   d("-1000000"),
		},
		{
			Month:            1,
			Date:             start.AddDate(0, 1, 0),
			Costs:            map[domain.CostCategory]decimal.Decimal{domain.CategoryConstruction: d("500000")},
			CostNet:          d("500000"),
			CostGST:          d("50000"),
			CostGross:        d("550000"),
			Senior:           domain.TierFlow{Draw: d("400000"), Interest: d("3500"), Balance: d("1003500")},
			Mezzanine:        domain.TierFlow{Balance: d("100000")},
			EquityBalance:    d("300000"),
			NetCashflow:      d("-550000"),
			FundingShortfall: d("150000"),
			Shortfall:        true,
		},
		{
			Month:        2,
			Date:         start.AddDate(0, 2, 0),
			RevenueGross: d("2200000"),
			RevenueGST:   d("200000"),
			RevenueNet:   d("2000000"),
			Senior:       domain.TierFlow{Repayment: d("1003500")},
			Mezzanine:    domain.TierFlow{Repayment: d("100000")},
			EquityDistribution: d("750000"),
			NetCashflow:  d("2200000"),
		},
	}

	a := &domain.FeasibilityResult{
		RunID:    "run-a",
		Scenario: "A",
		Strategy: domain.StrategySell,
		Timeline: domain.Timeline{SettlementMonth: 0, ConstructionStart: 1, ConstructionEnd: 2, Months: 3},
		Flows:    flows,
		Summary: domain.SummaryMetrics{
			TotalCostNet:     d("1500000"),
			FinanceCosts:     d("3500"),
			TotalProjectCost: d("1503500"),
			GrossRealisation: d("2200000"),
			GSTCollected:     d("200000"),
			NetRealisation:   d("2000000"),
			NetProfit:        d("496500"),
			MarginOnCost:     d("33.02"),
			MarginOnRevenue:  d("24.83"),
			EquityIRR:        domain.RateOfReturn{Defined: true, Annual: d("0.4521")},
			ProjectIRR:       domain.RateOfReturn{Reason: "no sign change in cashflows"},
			PeakSenior:       d("1003500"),
			PeakMezzanine:    d("100000"),
			PeakEquity:       d("300000"),
			EquityMultiple:   d("2.5"),
			ShortfallMonths:  []int{1},
			TotalShortfall:   d("150000"),
			JointVenture: &domain.JointVentureSplit{
				PartnerName:     "Capital Partner",
				PartnerShare:    d("0.4"),
				DeveloperEquity: d("180000"),
				PartnerEquity:   d("120000"),
				DeveloperProfit: d("297900"),
				PartnerProfit:   d("198600"),
			},
		},
	}

	b := &domain.FeasibilityResult{
		RunID:    "run-b",
		Scenario: "B",
		Strategy: domain.StrategyHold,
		Timeline: domain.Timeline{Months: 3, HasHold: true},
		Summary: domain.SummaryMetrics{
			NetProfit:    d("650000"),
			MarginOnCost: d("40"),
			EquityIRR:    domain.RateOfReturn{Defined: true, Annual: d("0.30")},
		},
	}

	report := NewReport("project.yaml", []*domain.FeasibilityResult{a, b})
	report.GeneratedAt = time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	return report
}

func TestFormatterFunc(t *testing.T) {
	called := false
	var received *Report

	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(report *Report) ([]byte, error) {
			called = true
			received = report
			return []byte("test output"), nil
		},
	}

	report := buildTestReport()
	out, err := formatter.Format(report)

	assert.NoError(t, err)
	assert.True(t, called, "Should call the function")
	assert.Same(t, report, received, "Should pass the report")
	assert.Equal(t, []byte("test output"), out)
	assert.Equal(t, "test-formatter", formatter.Name())
}

func TestWriteFormatted(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(originalDir)

	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(report *Report) ([]byte, error) {
			return []byte("test output content"), nil
		},
	}

	filename, err := WriteFormatted(formatter, buildTestReport(), "txt")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "feasibility_report_"), filename)
	assert.Equal(t, ".txt", filepath.Ext(filename))

	content, err := os.ReadFile(filename)
	assert.NoError(t, err)
	assert.Equal(t, "test output content", string(content))
}

func TestWriteFormatted_FormatterError(t *testing.T) {
	formatter := FormatterFunc{
		ID: "error-formatter",
		F: func(report *Report) ([]byte, error) {
			return nil, fmt.Errorf("formatter error")
		},
	}

	filename, err := WriteFormatted(formatter, buildTestReport(), "txt")

	assert.Error(t, err)
	assert.Empty(t, filename, "Should return empty filename on error")
	assert.Contains(t, err.Error(), "formatter error")
}

func TestAvailableFormatterNames(t *testing.T) {
	assert.Equal(t,
		[]string{"console", "console-lite", "csv", "json", "summary-csv", "yaml"},
		AvailableFormatterNames())
}

func TestGetFormatterByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"console", "console"},
		{"verbose", "console"},
		{"console-verbose", "console"},
		{"table", "console-lite"},
		{" JSON ", "json"},
		{"yml", "yaml"},
		{"monthly-csv", "csv"},
	}
	for _, tt := range tests {
		f := GetFormatterByName(tt.name)
		if assert.NotNil(t, f, tt.name) {
			assert.Equal(t, tt.want, f.Name(), tt.name)
		}
	}

	assert.Nil(t, GetFormatterByName("html"))
	assert.Contains(t, AvailableFormatAliases(), "verbose")
}

func TestGenerateReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateReport(&buf, buildTestReport(), "json"))
	assert.Contains(t, buf.String(), `"scenario": "A"`)

	err := GenerateReport(&buf, buildTestReport(), "pdf")
	assert.EqualError(t, err, "unsupported format: pdf")
}

func TestConsoleFormatter_Format(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "DEVELOPMENT FEASIBILITY SUMMARY")
	assert.Contains(t, content, "Configuration: project.yaml")
	assert.Contains(t, content, "strategy: sell")
	assert.Contains(t, content, "Net Profit")
	assert.Contains(t, content, "$496500.00")
	assert.Contains(t, content, "33.02%")
	assert.Contains(t, content, "45.21%")
	assert.Contains(t, content, "$1103500.00", "peak debt is the combined balance in month 1")
	assert.Contains(t, content, "FUNDING GAP: 1 month(s) unfunded, total $150000.00")
	assert.Contains(t, content, "Most profitable: B ($650000.00)")
}

func TestConsoleFormatter_EmptyResults(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(&Report{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No scenarios were calculated.")
}

func TestConsoleVerboseFormatter_Format(t *testing.T) {
	out, err := ConsoleVerboseFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "DETAILED DEVELOPMENT FEASIBILITY ANALYSIS")
	assert.Contains(t, content, "KEY ASSUMPTIONS:")
	assert.Contains(t, content, DefaultAssumptions[0])
	assert.Contains(t, content, "SCENARIO 1: A")
	assert.Contains(t, content, "SCENARIO 2: B")

	assert.Regexp(t, `Land:\s+\$1000000\.00`, content)
	assert.Regexp(t, `Construction:\s+\$500000\.00`, content)
	assert.Regexp(t, `TOTAL PROJECT COST:\s+\$1503500\.00`, content)
	assert.Regexp(t, `Project IRR:\s+undefined`, content)
	assert.Regexp(t, `Equity Multiple:\s+2\.50x`, content)

	assert.Contains(t, content, "JOINT VENTURE (Capital Partner share 40.00%)")
	assert.Regexp(t, `Developer\s+\$180000\.00\s+\$297900\.00`, content)

	assert.Contains(t, content, "FUNDING PROFILE")
	assert.Contains(t, content, "Legend: ")
	assert.Contains(t, content, "MONTHLY CASHFLOW:")
	assert.Regexp(t, `M001\s+2026-02\s+550000\s+0\s+1003500\s+100000\s+300000\s+-550000 SHORT`, content)
}

func TestMonthlyCSVFormatter_Format(t *testing.T) {
	out, err := MonthlyCSVFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4, "header plus three months of scenario A; B has no flows")
	assert.Equal(t, strings.Join(monthlyHeader, ","), lines[0])

	assert.True(t, strings.HasPrefix(lines[1], "A,0,2026-01-01,1000000.00,0.00,1000000.00,"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",-550000.00,0.00,150000.00"), lines[2])

	fields := strings.Split(lines[3], ",")
	assert.Len(t, fields, len(monthlyHeader))
	assert.Equal(t, "750000.00", fields[23], "EquityDistribution")
}

func TestCSVSummarizer_Format(t *testing.T) {
	out, err := CSVSummarizer{}.Format(buildTestReport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Scenario,Strategy,Months"))
	assert.True(t, strings.HasPrefix(lines[1], "A,sell,3,1503500.00,2000000.00,496500.00,33.02,24.83,0.452100,,"), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], ",1"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "B,hold,"), lines[2])
}

func TestJSONFormatter_Format(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, `"configPath":"project.yaml"`)
	assert.Contains(t, content, `"scenario":"A"`)
	assert.Contains(t, content, `"netProfit":"496500"`)
	assert.Contains(t, content, `"defined":false`)
}

func TestYAMLFormatter_Format(t *testing.T) {
	out, err := YAMLFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	content := string(out)
	assert.NotContains(t, content, "{", "block style only")
	assert.Contains(t, content, "configPath: project.yaml")
	assert.Contains(t, content, "runId: run-a")

	var decoded struct {
		Results []struct {
			Scenario string `yaml:"scenario"`
			Summary  struct {
				NetProfit string `yaml:"netProfit"`
			} `yaml:"summary"`
		} `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "A", decoded.Results[0].Scenario)
	assert.Equal(t, "496500", decoded.Results[0].Summary.NetProfit, "decimals stay strings")
}

func TestSaveConfiguration(t *testing.T) {
	config := &domain.Configuration{Scenarios: []domain.Scenario{{Name: "saved", Site: domain.Site{Jurisdiction: "NSW"}}}}
	path := filepath.Join(t.TempDir(), "out.yaml")

	require.NoError(t, SaveConfiguration(config, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded domain.Configuration
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "saved", decoded.Scenarios[0].Name)
	assert.Equal(t, "NSW", decoded.Scenarios[0].Site.Jurisdiction)
}

func TestDefaultAssumptions_DescribeMonthlyEscalation(t *testing.T) {
	found := false
	for _, a := range DefaultAssumptions {
		if strings.HasPrefix(a, "Escalation") {
			found = true
			assert.Contains(t, a, "monthly")
			assert.NotContains(t, a, "annually")
		}
	}
	assert.True(t, found, "escalation assumption is listed")
}
