package calculation

import (
	"strings"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX TABLE ASSUMPTIONS:
//
// 1. Stamp duty: VIC, NSW and QLD general transfer duty schedules (2024-25 levels),
//    no concessions (first home, off-the-plan) applied.
// 2. Foreign purchaser surcharge: VIC 8%, NSW 9%, QLD 8% of dutiable value.
// 3. Land tax: VIC general rates only; other jurisdictions use the fallback rate.
// 4. Fallback: 5.5% stamp duty, 1% land tax when no schedule is configured.

// EvaluateBrackets applies an ascending bracket table to amount. The bracket whose
// upper limit first reaches the amount is used; amounts beyond every limit use the
// final bracket.
func EvaluateBrackets(amount decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	if len(brackets) == 0 || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	previousLimit := decimal.Zero
	for i, bracket := range brackets {
		last := i == len(brackets)-1
		unbounded := last && bracket.UpperLimit.IsZero()
		if unbounded || amount.LessThanOrEqual(bracket.UpperLimit) || last {
			if bracket.Method == domain.MethodFlat {
				return amount.Mul(bracket.Rate)
			}
			return bracket.Base.Add(bracket.Rate.Mul(amount.Sub(previousLimit)))
		}
		previousLimit = bracket.UpperLimit
	}
	return decimal.Zero
}

// TaxEvaluator resolves statutory tax liabilities by jurisdiction and tax type
type TaxEvaluator struct {
	Config domain.TaxConfiguration
	Logger Logger
}

// NewTaxEvaluator creates an evaluator over the embedded default tables
func NewTaxEvaluator() *TaxEvaluator {
	return &TaxEvaluator{Config: DefaultTaxConfiguration(), Logger: NopLogger{}}
}

// NewTaxEvaluatorWithConfig merges overrides onto the default tables. A jurisdiction
// schedule in the override replaces the default schedule of the same tax type.
func NewTaxEvaluatorWithConfig(overrides *domain.TaxConfiguration) *TaxEvaluator {
	return &TaxEvaluator{Config: MergeTaxConfiguration(DefaultTaxConfiguration(), overrides), Logger: NopLogger{}}
}

// Schedule looks up a schedule. Jurisdiction codes are case-insensitive.
func (te *TaxEvaluator) Schedule(jurisdiction string, taxType domain.TaxType) (domain.TaxSchedule, bool) {
	taxes, ok := te.Config.Jurisdictions[strings.ToUpper(jurisdiction)]
	if !ok {
		return domain.TaxSchedule{}, false
	}
	schedule, ok := taxes[taxType]
	if !ok || len(schedule.Brackets) == 0 {
		return domain.TaxSchedule{}, false
	}
	return schedule, true
}

// Evaluate returns the liability for amount. It never fails: a missing schedule
// falls back to the flat fallback rate for the tax type.
func (te *TaxEvaluator) Evaluate(amount decimal.Decimal, jurisdiction string, taxType domain.TaxType, foreign bool) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	schedule, ok := te.Schedule(jurisdiction, taxType)
	if !ok {
		rate := te.FallbackRate(taxType)
		te.logger().Warnf("no %s schedule for jurisdiction %q, using fallback rate %s", taxType, jurisdiction, rate.String())
		return amount.Mul(rate)
	}

	liability := EvaluateBrackets(amount, schedule.Brackets)
	if foreign && schedule.ForeignSurcharge.GreaterThan(decimal.Zero) {
		liability = liability.Add(amount.Mul(schedule.ForeignSurcharge))
	}
	return liability
}

// FallbackRate returns the configured fallback for taxType or the built-in default
func (te *TaxEvaluator) FallbackRate(taxType domain.TaxType) decimal.Decimal {
	if rate, ok := te.Config.FallbackRates[taxType]; ok {
		return rate
	}
	if rate, ok := defaultFallbackRates()[taxType]; ok {
		return rate
	}
	return decimal.NewFromFloat(0.055)
}

func (te *TaxEvaluator) logger() Logger {
	if te.Logger == nil {
		return NopLogger{}
	}
	return te.Logger
}

// MergeTaxConfiguration overlays overrides onto base without mutating either
func MergeTaxConfiguration(base domain.TaxConfiguration, overrides *domain.TaxConfiguration) domain.TaxConfiguration {
	merged := domain.TaxConfiguration{
		Jurisdictions: make(map[string]domain.JurisdictionTaxes, len(base.Jurisdictions)),
		FallbackRates: make(map[domain.TaxType]decimal.Decimal, len(base.FallbackRates)),
	}
	for code, taxes := range base.Jurisdictions {
		copied := make(domain.JurisdictionTaxes, len(taxes))
		for taxType, schedule := range taxes {
			copied[taxType] = schedule
		}
		merged.Jurisdictions[code] = copied
	}
	for taxType, rate := range base.FallbackRates {
		merged.FallbackRates[taxType] = rate
	}
	if overrides == nil {
		return merged
	}

	for code, taxes := range overrides.Jurisdictions {
		code = strings.ToUpper(code)
		target, ok := merged.Jurisdictions[code]
		if !ok {
			target = make(domain.JurisdictionTaxes, len(taxes))
			merged.Jurisdictions[code] = target
		}
		for taxType, schedule := range taxes {
			target[taxType] = schedule
		}
	}
	for taxType, rate := range overrides.FallbackRates {
		merged.FallbackRates[taxType] = rate
	}
	return merged
}

func defaultFallbackRates() map[domain.TaxType]decimal.Decimal {
	return map[domain.TaxType]decimal.Decimal{
		domain.TaxStampDuty: decimal.NewFromFloat(0.055),
		domain.TaxLandTax:   decimal.NewFromFloat(0.01),
	}
}

func sliding(limit int64, rate float64, base int64) domain.TaxBracket {
	return domain.TaxBracket{
		UpperLimit: decimal.NewFromInt(limit),
		Rate:       decimal.NewFromFloat(rate),
		Base:       decimal.NewFromInt(base),
		Method:     domain.MethodSliding,
	}
}

// DefaultTaxConfiguration returns the embedded tables
func DefaultTaxConfiguration() domain.TaxConfiguration {
	return domain.TaxConfiguration{
		Jurisdictions: map[string]domain.JurisdictionTaxes{
			"VIC": {
				domain.TaxStampDuty: {
					Brackets: []domain.TaxBracket{
						sliding(25000, 0.014, 0),
						sliding(130000, 0.024, 350),
						sliding(480000, 0.05, 2870),
						sliding(960000, 0.06, 20370),
						{Rate: decimal.NewFromFloat(0.055), Method: domain.MethodFlat},
					},
					ForeignSurcharge: decimal.NewFromFloat(0.08),
				},
				domain.TaxLandTax: {
					Brackets: []domain.TaxBracket{
						sliding(50000, 0, 0),
						sliding(100000, 0, 500),
						sliding(300000, 0.003, 975),
						sliding(600000, 0.006, 1575),
						sliding(1000000, 0.009, 3375),
						sliding(1800000, 0.0165, 6975),
						sliding(3000000, 0.0265, 20175),
						{Rate: decimal.NewFromFloat(0.0265), Base: decimal.NewFromInt(51975), Method: domain.MethodSliding},
					},
					ForeignSurcharge: decimal.NewFromFloat(0.04),
				},
			},
			"NSW": {
				domain.TaxStampDuty: {
					Brackets: []domain.TaxBracket{
						sliding(17000, 0.0125, 0),
						sliding(36000, 0.015, 212),
						sliding(97000, 0.0175, 497),
						sliding(364000, 0.035, 1564),
						sliding(1212000, 0.045, 10909),
						{Rate: decimal.NewFromFloat(0.055), Base: decimal.NewFromInt(49069), Method: domain.MethodSliding},
					},
					ForeignSurcharge: decimal.NewFromFloat(0.09),
				},
			},
			"QLD": {
				domain.TaxStampDuty: {
					Brackets: []domain.TaxBracket{
						sliding(5000, 0, 0),
						sliding(75000, 0.015, 0),
						sliding(540000, 0.035, 1050),
						sliding(1000000, 0.045, 17325),
						{Rate: decimal.NewFromFloat(0.0575), Base: decimal.NewFromInt(38025), Method: domain.MethodSliding},
					},
					ForeignSurcharge: decimal.NewFromFloat(0.08),
				},
			},
		},
		FallbackRates: defaultFallbackRates(),
	}
}
