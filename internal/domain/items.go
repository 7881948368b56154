package domain

import (
	"github.com/shopspring/decimal"
)

// CostCategory groups line items for reporting and anchoring
type CostCategory string

const (
	CategoryLand         CostCategory = "land"
	CategoryConsultants  CostCategory = "consultants"
	CategoryConstruction CostCategory = "construction"
	CategoryStatutory    CostCategory = "statutory"
	CategoryMisc         CostCategory = "misc"
	CategorySelling      CostCategory = "selling"
	CategoryFinance      CostCategory = "finance"
)

// CostCategories lists every category in reporting order
var CostCategories = []CostCategory{
	CategoryLand,
	CategoryConsultants,
	CategoryConstruction,
	CategoryStatutory,
	CategoryMisc,
	CategorySelling,
	CategoryFinance,
}

// Valid reports whether the category is known
func (c CostCategory) Valid() bool {
	for _, known := range CostCategories {
		if c == known {
			return true
		}
	}
	return false
}

// InputBasis describes how a line item's Amount is interpreted
type InputBasis string

const (
	BasisFixed           InputBasis = "fixed"            // Amount is a currency total
	BasisPctRevenue      InputBasis = "pct_revenue"      // Amount is a fraction of gross realisation
	BasisPctConstruction InputBasis = "pct_construction" // Amount is a fraction of the construction sum
	BasisRateUnits       InputBasis = "rate_units"       // Amount is a rate per unit
	BasisRateArea        InputBasis = "rate_area"        // Amount is a rate per square metre of site area
)

// DistributionShape selects how a total is spread across its span
type DistributionShape string

const (
	ShapeUpfront   DistributionShape = "upfront"
	ShapeEnd       DistributionShape = "end"
	ShapeLinear    DistributionShape = "linear"
	ShapeSCurve    DistributionShape = "s_curve"
	ShapeBellCurve DistributionShape = "bell_curve"
	ShapeMilestone DistributionShape = "milestone"
)

// TaxTreatment is the GST treatment of a cost
type TaxTreatment string

const (
	TaxTaxable      TaxTreatment = "taxable"
	TaxExempt       TaxTreatment = "exempt"
	TaxInputTaxed   TaxTreatment = "input_taxed"
	TaxMarginScheme TaxTreatment = "margin_scheme"
)

// LineItem is a single cost entry. Amount is resolved against its Basis only when
// the engine evaluates a scenario.
type LineItem struct {
	Name          string                  `yaml:"name" json:"name"`
	Category      CostCategory            `yaml:"category" json:"category"`
	Basis         InputBasis              `yaml:"basis" json:"basis"`
	Amount        decimal.Decimal         `yaml:"amount" json:"amount"`
	StartOffset   int                     `yaml:"start_offset" json:"start_offset"`
	Span          int                     `yaml:"span" json:"span"`
	Shape         DistributionShape       `yaml:"shape" json:"shape"`
	Milestones    map[int]decimal.Decimal `yaml:"milestones,omitempty" json:"milestones,omitempty"`
	Escalation    *decimal.Decimal        `yaml:"escalation,omitempty" json:"escalation,omitempty"` // annual rate; nil uses the settings matrix
	TaxTreatment  TaxTreatment            `yaml:"tax_treatment" json:"tax_treatment"`
	RevenueLinked bool                    `yaml:"revenue_linked,omitempty" json:"revenue_linked,omitempty"`
}

// Strategy is the exit strategy of a revenue item
type Strategy string

const (
	StrategySell Strategy = "sell"
	StrategyHold Strategy = "hold"
)

// RecognitionMode selects lump sum or quantity x rate revenue
type RecognitionMode string

const (
	ModeLumpSum  RecognitionMode = "lump_sum"
	ModeQuantity RecognitionMode = "quantity"
)

// RevenueItem is a single income source. For sell items Price is a GST-inclusive
// sale price (per unit in quantity mode); for hold items it is annual rent.
type RevenueItem struct {
	Name     string          `yaml:"name" json:"name"`
	Strategy Strategy        `yaml:"strategy" json:"strategy"`
	Mode     RecognitionMode `yaml:"mode" json:"mode"`
	Units    decimal.Decimal `yaml:"units" json:"units"`
	Price    decimal.Decimal `yaml:"price" json:"price"`
	Taxable  bool            `yaml:"taxable" json:"taxable"`

	// Sell
	AbsorptionRate   decimal.Decimal `yaml:"absorption_rate,omitempty" json:"absorption_rate,omitempty"` // units per month
	SettlementOffset int             `yaml:"settlement_offset,omitempty" json:"settlement_offset,omitempty"`
	SettlementSpan   int             `yaml:"settlement_span,omitempty" json:"settlement_span,omitempty"`
	CommissionRate   decimal.Decimal `yaml:"commission_rate,omitempty" json:"commission_rate,omitempty"`

	// Hold
	OpexRatio     decimal.Decimal `yaml:"opex_ratio,omitempty" json:"opex_ratio,omitempty"`
	Vacancy       decimal.Decimal `yaml:"vacancy,omitempty" json:"vacancy,omitempty"`
	LeaseUpMonths int             `yaml:"lease_up_months,omitempty" json:"lease_up_months,omitempty"`
	CapRate       decimal.Decimal `yaml:"cap_rate,omitempty" json:"cap_rate,omitempty"`
}

// Total returns the undiscounted headline value: units x price in quantity mode, price otherwise
func (r RevenueItem) Total() decimal.Decimal {
	if r.Mode == ModeQuantity {
		return r.Units.Mul(r.Price)
	}
	return r.Price
}
