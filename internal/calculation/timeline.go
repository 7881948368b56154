package calculation

import (
	"fmt"

	"github.com/rgehrsitz/devfeas/internal/domain"
)

// MaxHorizonMonths bounds a single simulation run
const MaxHorizonMonths = 1200

// BuildTimeline derives the phase boundaries for a scenario. Every other component
// reads phase boundaries from the returned Timeline.
func BuildTimeline(scenario *domain.Scenario) (domain.Timeline, error) {
	settings := scenario.Settings
	tl := domain.Timeline{
		SettlementMonth:   settings.Acquisition.SettlementMonth,
		ConstructionStart: settings.Acquisition.SettlementMonth + settings.Timing.ConstructionDelay,
	}

	tl.ConstructionEnd = tl.ConstructionStart
	for _, item := range scenario.Costs {
		if item.Category != domain.CategoryConstruction {
			continue
		}
		end := tl.ConstructionStart + item.StartOffset + item.Span
		if end > tl.ConstructionEnd {
			tl.ConstructionEnd = end
		}
	}
	tl.OperatingStart = tl.ConstructionEnd

	hold := settings.Hold
	if hold != nil && hold.HoldYears > 0 {
		tl.HasHold = true
		tl.Months = tl.ConstructionEnd + hold.HoldYears*12
	} else {
		tl.Months = settings.Timing.DurationMonths
		tl.Months = maxInt(tl.Months, lastScheduledMonth(scenario, tl)+1)
	}

	// The horizon always contains settlement and the first operating month
	tl.Months = maxInt(tl.Months, tl.SettlementMonth+1)
	tl.Months = maxInt(tl.Months, tl.ConstructionEnd+1)

	if tl.Months > MaxHorizonMonths {
		return tl, fmt.Errorf("simulation horizon of %d months exceeds the %d month limit", tl.Months, MaxHorizonMonths)
	}
	return tl, nil
}

// Anchor returns the month a line item's StartOffset is measured from
func Anchor(item domain.LineItem, tl domain.Timeline) int {
	switch item.Category {
	case domain.CategoryConstruction:
		return tl.ConstructionStart
	case domain.CategorySelling:
		return tl.ConstructionEnd
	default:
		return 0
	}
}

// lastScheduledMonth finds the last month any authored cost or sale settlement touches
func lastScheduledMonth(scenario *domain.Scenario, tl domain.Timeline) int {
	last := 0
	for _, item := range scenario.Costs {
		if item.RevenueLinked {
			continue
		}
		last = maxInt(last, Anchor(item, tl)+item.StartOffset+item.Span-1)
	}
	for _, rev := range scenario.Revenues {
		if rev.Strategy != domain.StrategySell {
			continue
		}
		last = maxInt(last, tl.ConstructionEnd+rev.SettlementOffset+SaleSpan(rev)-1)
	}
	return last
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
