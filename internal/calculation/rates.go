package calculation

import (
	"github.com/shopspring/decimal"
)

// workingScale bounds the decimal places carried between months. Multiplication is
// exact in decimal, so unrounded recurrences grow without limit.
const workingScale = 12

var (
	one         = decimal.NewFromInt(1)
	twelve      = decimal.NewFromInt(12)
	hundred     = decimal.NewFromInt(100)
	rootEpsilon = decimal.New(1, -15)
)

// MonthlyFromAnnual converts an effective annual rate to the equivalent monthly
// compounding rate: (1+annual)^(1/12) - 1.
func MonthlyFromAnnual(annual decimal.Decimal) decimal.Decimal {
	if annual.IsZero() {
		return decimal.Zero
	}
	return nthRoot(one.Add(annual), 12).Sub(one)
}

// NominalMonthly splits a nominal annual rate into twelve equal monthly rates.
// Debt facilities quote rates this way.
func NominalMonthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(twelve)
}

// nthRoot solves x^n = a by Newton iteration in decimal arithmetic. a must be positive.
func nthRoot(a decimal.Decimal, n int) decimal.Decimal {
	if a.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	nd := decimal.NewFromInt(int64(n))
	x := one
	for i := 0; i < 64; i++ {
		xPow := powInt(x, n-1)
		next := x.Sub(xPow.Mul(x).Sub(a).Div(nd.Mul(xPow)))
		if next.Sub(x).Abs().LessThan(rootEpsilon) {
			return next
		}
		x = next
	}
	return x
}

// powInt raises base to a non-negative integer power by repeated squaring
func powInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := one
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exp >>= 1
	}
	return result
}

// CompoundFactors returns (1+monthly)^m for m in [0, months), built by recurrence
func CompoundFactors(monthly decimal.Decimal, months int) []decimal.Decimal {
	factors := make([]decimal.Decimal, months)
	growth := one.Add(monthly)
	current := one
	for m := 0; m < months; m++ {
		factors[m] = current
		current = current.Mul(growth).Round(workingScale + 6)
	}
	return factors
}

// round trims a working value to workingScale decimal places
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(workingScale)
}
