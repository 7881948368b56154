package domain

import (
	"github.com/shopspring/decimal"
)

// TaxType identifies a statutory tax levied on property
type TaxType string

const (
	TaxStampDuty TaxType = "stamp_duty"
	TaxLandTax   TaxType = "land_tax"
)

// BracketMethod selects how a bracket's rate is applied
type BracketMethod string

const (
	MethodSliding BracketMethod = "sliding" // base + rate x (amount - previous limit)
	MethodFlat    BracketMethod = "flat"    // rate x amount
)

// TaxBracket is one step of a tiered schedule. A zero UpperLimit on the final
// bracket means the bracket is unbounded.
type TaxBracket struct {
	UpperLimit decimal.Decimal `yaml:"upper_limit" json:"upper_limit"`
	Rate       decimal.Decimal `yaml:"rate" json:"rate"`
	Base       decimal.Decimal `yaml:"base" json:"base"`
	Method     BracketMethod   `yaml:"method,omitempty" json:"method,omitempty"`
}

// TaxSchedule is an ordered bracket table plus a foreign purchaser surcharge
type TaxSchedule struct {
	Brackets         []TaxBracket    `yaml:"brackets" json:"brackets"`
	ForeignSurcharge decimal.Decimal `yaml:"foreign_surcharge,omitempty" json:"foreign_surcharge,omitempty"`
}

// JurisdictionTaxes holds every schedule for one jurisdiction
type JurisdictionTaxes map[TaxType]TaxSchedule

// TaxConfiguration is the full tax table: jurisdiction -> tax type -> schedule
type TaxConfiguration struct {
	Jurisdictions map[string]JurisdictionTaxes `yaml:"jurisdictions" json:"jurisdictions"`
	FallbackRates map[TaxType]decimal.Decimal  `yaml:"fallback_rates,omitempty" json:"fallback_rates,omitempty"`
}
