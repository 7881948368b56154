package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timeline holds the phase boundaries every component indexes off
type Timeline struct {
	SettlementMonth   int  `json:"settlementMonth"`
	ConstructionStart int  `json:"constructionStart"`
	ConstructionEnd   int  `json:"constructionEnd"` // exclusive
	OperatingStart    int  `json:"operatingStart"`
	Months            int  `json:"months"` // horizon length; terminal month is Months-1
	HasHold           bool `json:"hasHold"`
}

// TerminalMonth returns the last simulated month
func (t Timeline) TerminalMonth() int {
	return t.Months - 1
}

// TierFlow captures one debt tier's activity for a month
type TierFlow struct {
	Draw      decimal.Decimal `json:"draw"`
	Repayment decimal.Decimal `json:"repayment"`
	Interest  decimal.Decimal `json:"interest"`
	Fees      decimal.Decimal `json:"fees"`
	Balance   decimal.Decimal `json:"balance"`
}

// MonthlyFlow is one closed simulation tick
type MonthlyFlow struct {
	Month int       `json:"month"`
	Date  time.Time `json:"date"`

	Costs          map[CostCategory]decimal.Decimal `json:"costs"` // net, by category
	CostNet        decimal.Decimal                  `json:"costNet"`
	CostGST        decimal.Decimal                  `json:"costGst"`
	CostGross      decimal.Decimal                  `json:"costGross"`
	RevenueGross   decimal.Decimal                  `json:"revenueGross"`
	RevenueGST     decimal.Decimal                  `json:"revenueGst"`
	RevenueNet     decimal.Decimal                  `json:"revenueNet"`
	OperatingCosts decimal.Decimal                  `json:"operatingCosts"`
	TerminalValue  decimal.Decimal                  `json:"terminalValue"`
	GSTCredit      decimal.Decimal                  `json:"gstCredit"` // lagged input credit received this month

	Senior    TierFlow `json:"senior"`
	Mezzanine TierFlow `json:"mezzanine"`

	EquityDrawn        decimal.Decimal `json:"equityDrawn"`
	EquityDistribution decimal.Decimal `json:"equityDistribution"`
	EquityBalance      decimal.Decimal `json:"equityBalance"` // contributed less capital returned
	SurplusDraw        decimal.Decimal `json:"surplusDraw"`
	SurplusInterest    decimal.Decimal `json:"surplusInterest"`
	SurplusBalance     decimal.Decimal `json:"surplusBalance"`

	RefinanceInflow    decimal.Decimal `json:"refinanceInflow"`
	InvestmentInterest decimal.Decimal `json:"investmentInterest"`
	InvestmentRepaid   decimal.Decimal `json:"investmentRepaid"`
	InvestmentBalance  decimal.Decimal `json:"investmentBalance"`

	NetCashflow        decimal.Decimal `json:"netCashflow"`
	CumulativeCashflow decimal.Decimal `json:"cumulativeCashflow"`
	AssetValue         decimal.Decimal `json:"assetValue"`
	Depreciation       decimal.Decimal `json:"depreciation"`

	FundingShortfall decimal.Decimal `json:"fundingShortfall"`
	Shortfall        bool            `json:"shortfall"`
}

// RateOfReturn is an IRR result. Defined is false when the solver found no root;
// callers must treat that as distinct from a zero return.
type RateOfReturn struct {
	Defined bool            `json:"defined"`
	Monthly decimal.Decimal `json:"monthly"`
	Annual  decimal.Decimal `json:"annual"`
	Reason  string          `json:"reason,omitempty"`
}

// String renders the annual rate as a percentage or "undefined"
func (r RateOfReturn) String() string {
	if !r.Defined {
		return "undefined"
	}
	return r.Annual.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// JointVentureSplit divides equity flows and profit between the developer and partner
type JointVentureSplit struct {
	PartnerName     string          `json:"partnerName"`
	PartnerShare    decimal.Decimal `json:"partnerShare"`
	DeveloperEquity decimal.Decimal `json:"developerEquity"`
	PartnerEquity   decimal.Decimal `json:"partnerEquity"`
	DeveloperProfit decimal.Decimal `json:"developerProfit"`
	PartnerProfit   decimal.Decimal `json:"partnerProfit"`
}

// SummaryMetrics aggregates a monthly series
type SummaryMetrics struct {
	TotalCostNet      decimal.Decimal `json:"totalCostNet"` // development cost excluding finance
	TotalCostGross    decimal.Decimal `json:"totalCostGross"`
	GSTInputCredits   decimal.Decimal `json:"gstInputCredits"`
	FinanceCosts      decimal.Decimal `json:"financeCosts"`
	OperatingCosts    decimal.Decimal `json:"operatingCosts"`
	TotalProjectCost  decimal.Decimal `json:"totalProjectCost"` // net development cost + finance costs
	GrossRealisation  decimal.Decimal `json:"grossRealisation"`
	GSTCollected      decimal.Decimal `json:"gstCollected"`
	NetRealisation    decimal.Decimal `json:"netRealisation"`
	SurplusInterest   decimal.Decimal `json:"surplusInterest"`
	NetProfit         decimal.Decimal `json:"netProfit"`
	MarginOnCost      decimal.Decimal `json:"marginOnCost"`    // percent
	MarginOnRevenue   decimal.Decimal `json:"marginOnRevenue"` // percent
	EquityIRR         RateOfReturn    `json:"equityIrr"`
	ProjectIRR        RateOfReturn    `json:"projectIrr"`
	ProjectNPV        decimal.Decimal `json:"projectNpv"`
	EquityContributed decimal.Decimal `json:"equityContributed"`
	EquityReturned    decimal.Decimal `json:"equityReturned"`
	EquityMultiple    decimal.Decimal `json:"equityMultiple"`
	PeakSenior        decimal.Decimal `json:"peakSenior"`
	PeakMezzanine     decimal.Decimal `json:"peakMezzanine"`
	PeakEquity        decimal.Decimal `json:"peakEquity"`
	RefinanceProceeds decimal.Decimal `json:"refinanceProceeds"`
	TerminalValue     decimal.Decimal `json:"terminalValue"`
	TotalDepreciation decimal.Decimal `json:"totalDepreciation"`
	ShortfallMonths   []int           `json:"shortfallMonths,omitempty"`
	TotalShortfall    decimal.Decimal `json:"totalShortfall"`

	JointVenture *JointVentureSplit `json:"jointVenture,omitempty"`
}

// Feasible reports whether every month was fully funded
func (m SummaryMetrics) Feasible() bool {
	return len(m.ShortfallMonths) == 0
}

// FeasibilityResult is the engine output for one scenario
type FeasibilityResult struct {
	RunID    string         `json:"runId"`
	Scenario string         `json:"scenario"`
	Strategy Strategy       `json:"strategy"`
	Timeline Timeline       `json:"timeline"`
	Flows    []MonthlyFlow  `json:"flows"`
	Summary  SummaryMetrics `json:"summary"`
}
