package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	logisticSteepness = 10.0
	gaussianSigma     = 0.2
)

// cumulativeFunc maps a fractional position in [0,1] to a cumulative weight
type cumulativeFunc func(x float64) float64

// cumulativeShapes is the strategy table for curve-shaped distributions
var cumulativeShapes = map[domain.DistributionShape]cumulativeFunc{
	domain.ShapeSCurve: func(x float64) float64 {
		return 1 / (1 + math.Exp(-logisticSteepness*(x-0.5)))
	},
	domain.ShapeBellCurve: func(x float64) float64 {
		return 0.5 * (1 + math.Erf((x-0.5)/(gaussianSigma*math.Sqrt2)))
	},
}

// curveWeights returns F(t/span) for t in [0, span] as decimals. The increments
// F(t+1)-F(t) telescope, so their sum is exactly F(span)-F(0).
func curveWeights(shape domain.DistributionShape, span int) ([]decimal.Decimal, error) {
	cdf, ok := cumulativeShapes[shape]
	if !ok {
		return nil, fmt.Errorf("shape %q has no cumulative function", shape)
	}
	weights := make([]decimal.Decimal, span+1)
	for t := 0; t <= span; t++ {
		weights[t] = decimal.NewFromFloat(cdf(float64(t) / float64(span)))
	}
	return weights, nil
}

// Distribute returns the increment of total that falls in period (0-based) of a
// span-period profile. Periods outside [0, span) receive nothing.
func Distribute(total decimal.Decimal, period, span int, shape domain.DistributionShape, milestones map[int]decimal.Decimal) (decimal.Decimal, error) {
	if span < 1 {
		return decimal.Zero, fmt.Errorf("span must be at least 1, got %d", span)
	}
	if period < 0 || period >= span {
		return decimal.Zero, nil
	}

	switch shape {
	case domain.ShapeUpfront:
		if period == 0 {
			return total, nil
		}
		return decimal.Zero, nil
	case domain.ShapeEnd:
		if period == span-1 {
			return total, nil
		}
		return decimal.Zero, nil
	case domain.ShapeLinear, "":
		return total.Div(decimal.NewFromInt(int64(span))), nil
	case domain.ShapeSCurve, domain.ShapeBellCurve:
		weights, err := curveWeights(shape, span)
		if err != nil {
			return decimal.Zero, err
		}
		return curveIncrement(total, period, weights), nil
	case domain.ShapeMilestone:
		pct, ok := milestones[period]
		if !ok {
			return decimal.Zero, nil
		}
		return total.Mul(pct), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown distribution shape %q", shape)
	}
}

func curveIncrement(total decimal.Decimal, period int, weights []decimal.Decimal) decimal.Decimal {
	span := len(weights) - 1
	denominator := weights[span].Sub(weights[0])
	if denominator.IsZero() {
		return total.Div(decimal.NewFromInt(int64(span)))
	}
	return total.Mul(weights[period+1].Sub(weights[period])).Div(denominator)
}

// Profile distributes total across the whole span at once. The engine uses it so
// curve weights are computed once per line item rather than once per month.
func Profile(total decimal.Decimal, span int, shape domain.DistributionShape, milestones map[int]decimal.Decimal) ([]decimal.Decimal, error) {
	if span < 1 {
		return nil, fmt.Errorf("span must be at least 1, got %d", span)
	}
	profile := make([]decimal.Decimal, span)

	if shape == domain.ShapeSCurve || shape == domain.ShapeBellCurve {
		weights, err := curveWeights(shape, span)
		if err != nil {
			return nil, err
		}
		for t := 0; t < span; t++ {
			profile[t] = curveIncrement(total, t, weights)
		}
		return profile, nil
	}

	for t := 0; t < span; t++ {
		inc, err := Distribute(total, t, span, shape, milestones)
		if err != nil {
			return nil, err
		}
		profile[t] = inc
	}
	return profile, nil
}
