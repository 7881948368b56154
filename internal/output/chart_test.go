package output

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineChart_Render(t *testing.T) {
	values := []decimal.Decimal{
		decimal.NewFromInt(0),
		decimal.NewFromInt(500000),
		decimal.NewFromInt(1200000),
		decimal.NewFromInt(0),
	}
	chart := newLineChart("DEBT").add("Debt", values, ColorDanger)
	out := chart.render()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 1+chart.height+1, "title, grid rows, x axis")
	assert.Contains(t, lines[0], "DEBT")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "└")
	assert.NotContains(t, out, "Legend", "single series has no legend")
}

func TestLineChart_Empty(t *testing.T) {
	assert.Contains(t, newLineChart("x").render(), "No data to display")
}

func TestLineChart_Bounds(t *testing.T) {
	flat := newLineChart("").add("flat", []decimal.Decimal{decimal.NewFromInt(5), decimal.NewFromInt(5)}, ColorPrimary)
	lo, hi, ok := flat.bounds()
	require.True(t, ok)
	assert.Equal(t, 4.0, lo)
	assert.Equal(t, 6.0, hi)

	ranged := newLineChart("").add("r", []decimal.Decimal{decimal.NewFromInt(0), decimal.NewFromInt(100)}, ColorPrimary)
	lo, hi, _ = ranged.bounds()
	assert.Equal(t, -10.0, lo)
	assert.Equal(t, 110.0, hi)
}

func TestChartValue(t *testing.T) {
	assert.Equal(t, "$1.5M", chartValue(1500000))
	assert.Equal(t, "-$250K", chartValue(-250000))
	assert.Equal(t, "$12", chartValue(12))
}
