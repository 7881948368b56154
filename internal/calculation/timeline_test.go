package calculation

import (
	"testing"

	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimeline_Sell(t *testing.T) {
	tl, err := BuildTimeline(sellScenario())
	require.NoError(t, err)

	assert.Equal(t, 2, tl.SettlementMonth)
	assert.Equal(t, 3, tl.ConstructionStart)
	assert.Equal(t, 15, tl.ConstructionEnd)
	assert.Equal(t, 15, tl.OperatingStart)
	assert.Equal(t, 24, tl.Months)
	assert.False(t, tl.HasHold)
	assert.Equal(t, 23, tl.TerminalMonth())
}

func TestBuildTimeline_ExtendsToCoverSales(t *testing.T) {
	s := sellScenario()
	s.Settings.Timing.DurationMonths = 6

	tl, err := BuildTimeline(s)
	require.NoError(t, err)
	assert.Equal(t, 18, tl.Months, "last sale settles in month 17")
}

func TestBuildTimeline_Hold(t *testing.T) {
	tl, err := BuildTimeline(holdScenario())
	require.NoError(t, err)

	assert.True(t, tl.HasHold)
	assert.Equal(t, 15, tl.OperatingStart)
	assert.Equal(t, 15+36, tl.Months)
}

func TestBuildTimeline_HorizonLimit(t *testing.T) {
	s := holdScenario()
	s.Settings.Hold.HoldYears = 200

	_, err := BuildTimeline(s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestAnchor(t *testing.T) {
	tl := domain.Timeline{ConstructionStart: 4, ConstructionEnd: 16}

	assert.Equal(t, 4, Anchor(domain.LineItem{Category: domain.CategoryConstruction}, tl))
	assert.Equal(t, 16, Anchor(domain.LineItem{Category: domain.CategorySelling}, tl))
	assert.Equal(t, 0, Anchor(domain.LineItem{Category: domain.CategoryConsultants}, tl))
}
