package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateMode selects a single rate or a dated schedule of rates for a tier
type RateMode string

const (
	RateSingle   RateMode = "single"
	RateSchedule RateMode = "schedule"
)

// LimitMethod selects how a debt tier's facility limit is derived
type LimitMethod string

const (
	LimitUnlimited  LimitMethod = "unlimited"
	LimitFixed      LimitMethod = "fixed"
	LimitPctRevenue LimitMethod = "pct_revenue" // LVR-derived
	LimitPctCost    LimitMethod = "pct_cost"    // LTC-derived
)

// FeeMethod selects a fixed establishment fee or one expressed against the limit
type FeeMethod string

const (
	FeeFixed      FeeMethod = "fixed"
	FeePctOfLimit FeeMethod = "pct_limit"
)

// ScheduledRate applies an annual rate from FromMonth onwards
type ScheduledRate struct {
	FromMonth int             `yaml:"from_month" json:"from_month"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
}

// CapitalTier is one debt facility in the capital stack
type CapitalTier struct {
	Name               string          `yaml:"name,omitempty" json:"name,omitempty"`
	RateMode           RateMode        `yaml:"rate_mode" json:"rate_mode"`
	Rate               decimal.Decimal `yaml:"rate" json:"rate"` // annual, nominal
	Schedule           []ScheduledRate `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	EstablishmentFee   decimal.Decimal `yaml:"establishment_fee,omitempty" json:"establishment_fee,omitempty"`
	EstablishmentBasis FeeMethod       `yaml:"establishment_basis,omitempty" json:"establishment_basis,omitempty"`
	LineFee            decimal.Decimal `yaml:"line_fee,omitempty" json:"line_fee,omitempty"` // annual rate on limit
	LimitMethod        LimitMethod     `yaml:"limit_method" json:"limit_method"`
	Limit              decimal.Decimal `yaml:"limit,omitempty" json:"limit,omitempty"` // amount for fixed, fraction otherwise
	ActivationMonth    int             `yaml:"activation_month,omitempty" json:"activation_month,omitempty"`
	CapitaliseInterest bool            `yaml:"capitalise_interest" json:"capitalise_interest"`
}

// EquityMode selects how equity is contributed
type EquityMode string

const (
	EquityUpfront     EquityMode = "upfront"
	EquityInstalments EquityMode = "instalments"
	EquityPctLand     EquityMode = "pct_land"
	EquityPctCost     EquityMode = "pct_cost"
	EquityPariPassu   EquityMode = "pari_passu"
)

// Instalment is a dated equity contribution
type Instalment struct {
	Month  int             `yaml:"month" json:"month"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// EquityStructure describes the equity contribution mode and its parameters
type EquityStructure struct {
	Mode        EquityMode      `yaml:"mode" json:"mode"`
	Amount      decimal.Decimal `yaml:"amount,omitempty" json:"amount,omitempty"`
	Percent     decimal.Decimal `yaml:"percent,omitempty" json:"percent,omitempty"`
	Instalments []Instalment    `yaml:"instalments,omitempty" json:"instalments,omitempty"`
	StartMonth  int             `yaml:"start_month,omitempty" json:"start_month,omitempty"`
	AllowTopUp  *bool           `yaml:"allow_top_up,omitempty" json:"allow_top_up,omitempty"`
}

// TopUpAllowed reports whether equity may fund deficits the debt tiers cannot.
// Top-up is allowed unless explicitly disabled.
func (e EquityStructure) TopUpAllowed() bool {
	return e.AllowTopUp == nil || *e.AllowTopUp
}

// FundingSource names a tier that land payments can be earmarked to
type FundingSource string

const (
	SourceWaterfall FundingSource = ""
	SourceEquity    FundingSource = "equity"
	SourceSenior    FundingSource = "senior"
	SourceMezzanine FundingSource = "mezzanine"
)

// LandFunding earmarks the deposit and settlement payments to a tier
type LandFunding struct {
	Deposit    FundingSource `yaml:"deposit,omitempty" json:"deposit,omitempty"`
	Settlement FundingSource `yaml:"settlement,omitempty" json:"settlement,omitempty"`
}

// JointVenture splits equity flows with a partner
type JointVenture struct {
	PartnerName  string          `yaml:"partner_name,omitempty" json:"partner_name,omitempty"`
	PartnerShare decimal.Decimal `yaml:"partner_share" json:"partner_share"`
}

// CapitalStack is the layered set of funding sources for a project
type CapitalStack struct {
	Senior       *CapitalTier    `yaml:"senior,omitempty" json:"senior,omitempty"`
	Mezzanine    *CapitalTier    `yaml:"mezzanine,omitempty" json:"mezzanine,omitempty"`
	Equity       EquityStructure `yaml:"equity" json:"equity"`
	JointVenture *JointVenture   `yaml:"joint_venture,omitempty" json:"joint_venture,omitempty"`
	SurplusRate  decimal.Decimal `yaml:"surplus_rate,omitempty" json:"surplus_rate,omitempty"` // annual reinvestment rate
	LandFunding  LandFunding     `yaml:"land_funding,omitempty" json:"land_funding,omitempty"`
}

// Acquisition holds land purchase terms
type Acquisition struct {
	Price           decimal.Decimal `yaml:"price" json:"price"`
	DepositPercent  decimal.Decimal `yaml:"deposit_percent" json:"deposit_percent"`
	DepositMonth    int             `yaml:"deposit_month,omitempty" json:"deposit_month,omitempty"`
	SettlementMonth int             `yaml:"settlement_month" json:"settlement_month"`
	ForeignBuyer    bool            `yaml:"foreign_buyer,omitempty" json:"foreign_buyer,omitempty"`
}

// DepreciationSplit divides construction cost into building and plant pools
type DepreciationSplit struct {
	BuildingShare decimal.Decimal `yaml:"building_share" json:"building_share"`
	BuildingRate  decimal.Decimal `yaml:"building_rate" json:"building_rate"` // annual, straight line
	PlantShare    decimal.Decimal `yaml:"plant_share" json:"plant_share"`
	PlantRate     decimal.Decimal `yaml:"plant_rate" json:"plant_rate"`
}

// HoldStrategy configures the lease/hold phase and its refinance event
type HoldStrategy struct {
	RefinanceMonth  int               `yaml:"refinance_month" json:"refinance_month"`
	RefinanceLVR    decimal.Decimal   `yaml:"refinance_lvr" json:"refinance_lvr"`
	InvestmentRate  decimal.Decimal   `yaml:"investment_rate" json:"investment_rate"`
	HoldYears       int               `yaml:"hold_years" json:"hold_years"`
	TerminalCapRate decimal.Decimal   `yaml:"terminal_cap_rate" json:"terminal_cap_rate"`
	CapitalGrowth   decimal.Decimal   `yaml:"capital_growth,omitempty" json:"capital_growth,omitempty"`
	RentGrowth      decimal.Decimal   `yaml:"rent_growth,omitempty" json:"rent_growth,omitempty"`
	Depreciation    DepreciationSplit `yaml:"depreciation,omitempty" json:"depreciation,omitempty"`
}

// Timing holds the project clock
type Timing struct {
	StartDate         time.Time `yaml:"start_date" json:"start_date"`
	DurationMonths    int       `yaml:"duration_months" json:"duration_months"`
	ConstructionDelay int       `yaml:"construction_delay" json:"construction_delay"`
}

// FeasibilitySettings is the validated settings object for one scenario
type FeasibilitySettings struct {
	Acquisition  Acquisition                      `yaml:"acquisition" json:"acquisition"`
	Timing       Timing                           `yaml:"timing" json:"timing"`
	Escalation   map[CostCategory]decimal.Decimal `yaml:"escalation,omitempty" json:"escalation,omitempty"`
	Hold         *HoldStrategy                    `yaml:"hold,omitempty" json:"hold,omitempty"`
	DiscountRate decimal.Decimal                  `yaml:"discount_rate" json:"discount_rate"`
	GSTRate      decimal.Decimal                  `yaml:"gst_rate" json:"gst_rate"`
	GSTCreditLag *int                             `yaml:"gst_credit_lag,omitempty" json:"gst_credit_lag,omitempty"`
	Units        decimal.Decimal                  `yaml:"units" json:"units"`
	MarginScheme bool                             `yaml:"margin_scheme" json:"margin_scheme"`
	Capital      CapitalStack                     `yaml:"capital" json:"capital"`
}

// CreditLag returns the GST input credit lag in months, defaulting to one
func (s FeasibilitySettings) CreditLag() int {
	if s.GSTCreditLag == nil {
		return 1
	}
	return *s.GSTCreditLag
}

// Site is the location record supplied by the site collaborator
type Site struct {
	Name         string          `yaml:"name" json:"name"`
	Address      string          `yaml:"address,omitempty" json:"address,omitempty"`
	Area         decimal.Decimal `yaml:"area" json:"area"` // square metres
	Jurisdiction string          `yaml:"jurisdiction" json:"jurisdiction"`
}

// Scenario bundles everything the engine needs for one run
type Scenario struct {
	Name        string              `yaml:"name" json:"name"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
	Site        Site                `yaml:"site" json:"site"`
	Settings    FeasibilitySettings `yaml:"settings" json:"settings"`
	Costs       []LineItem          `yaml:"costs" json:"costs"`
	Revenues    []RevenueItem       `yaml:"revenues" json:"revenues"`
}

// Strategy reports hold when any revenue item is held, sell otherwise
func (s *Scenario) Strategy() Strategy {
	for _, r := range s.Revenues {
		if r.Strategy == StrategyHold {
			return StrategyHold
		}
	}
	return StrategySell
}

// Configuration is a scenario file: one or more scenarios plus optional tax overrides
type Configuration struct {
	Scenarios []Scenario        `yaml:"scenarios" json:"scenarios"`
	TaxTables *TaxConfiguration `yaml:"tax_tables,omitempty" json:"tax_tables,omitempty"`
}
