package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/devfeas/internal/domain"
	"github.com/shopspring/decimal"
)

// chartSeries is one plotted line
type chartSeries struct {
	name   string
	points []float64
	color  lipgloss.Color
}

// lineChart plots monthly series on a character grid with a currency Y axis
type lineChart struct {
	title  string
	series []chartSeries
	width  int
	height int
}

const chartAxisWidth = 10

func newLineChart(title string) *lineChart {
	return &lineChart{title: title, width: 72, height: 12}
}

func (c *lineChart) add(name string, values []decimal.Decimal, color lipgloss.Color) *lineChart {
	points := make([]float64, len(values))
	for i, v := range values {
		points[i] = v.InexactFloat64()
	}
	c.series = append(c.series, chartSeries{name: name, points: points, color: color})
	return c
}

func (c *lineChart) render() string {
	lo, hi, ok := c.bounds()
	if !ok {
		return MetricLabelStyle.Render("No data to display")
	}

	var sb strings.Builder
	if c.title != "" {
		sb.WriteString(TitleStyle.Render(c.title))
		sb.WriteString("\n")
	}

	plotWidth := c.width - chartAxisWidth
	grid := make([][]rune, c.height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", plotWidth))
	}

	for idx, s := range c.series {
		mark := seriesMark(idx)
		prevX, prevY := -1, -1
		for i, p := range s.points {
			x := scale(i, len(s.points), plotWidth)
			y := c.height - 1 - int((p-lo)/(hi-lo)*float64(c.height-1))
			if prevX >= 0 {
				drawLine(grid, prevX, prevY, x, y, mark)
			} else {
				plot(grid, x, y, mark)
			}
			prevX, prevY = x, y
		}
	}

	axis := lipgloss.NewStyle().Foreground(ColorMuted).Width(chartAxisWidth).Align(lipgloss.Right)
	for i, row := range grid {
		value := hi - float64(i)/float64(c.height-1)*(hi-lo)
		sb.WriteString(axis.Render(chartValue(value)))
		sb.WriteString(" │ ")
		sb.WriteString(string(row))
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat(" ", chartAxisWidth))
	sb.WriteString(" └")
	sb.WriteString(strings.Repeat("─", plotWidth))
	sb.WriteString("\n")

	if len(c.series) > 1 {
		var items []string
		for i, s := range c.series {
			items = append(items, lipgloss.NewStyle().Foreground(s.color).Render(string(seriesMark(i)))+" "+s.name)
		}
		sb.WriteString(MetricLabelStyle.Render("Legend: ") + strings.Join(items, "  "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// bounds returns the plotted range with 10% padding. A flat series is widened so
// it plots mid-height.
func (c *lineChart) bounds() (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.series {
		for _, p := range s.points {
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	if hi == lo {
		return lo - 1, hi + 1, true
	}
	pad := (hi - lo) * 0.1
	return lo - pad, hi + pad, true
}

func scale(i, n, width int) int {
	if n <= 1 {
		return 0
	}
	return int(float64(i) / float64(n-1) * float64(width-1))
}

func seriesMark(index int) rune {
	marks := []rune{'●', '■', '▲', '♦'}
	return marks[index%len(marks)]
}

func plot(grid [][]rune, x, y int, mark rune) {
	if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && grid[y][x] == ' ' {
		grid[y][x] = mark
	}
}

// drawLine joins two grid points (Bresenham)
func drawLine(grid [][]rune, x0, y0, x1, y1 int, mark rune) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		plot(grid, x0, y0, mark)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func chartValue(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1000000:
		return fmt.Sprintf("%s$%.1fM", sign, v/1000000)
	case v >= 1000:
		return fmt.Sprintf("%s$%.0fK", sign, v/1000)
	}
	return fmt.Sprintf("%s$%.0f", sign, v)
}

// fundingChart plots debt and equity balances month by month
func fundingChart(flows []domain.MonthlyFlow) string {
	debt := make([]decimal.Decimal, len(flows))
	equity := make([]decimal.Decimal, len(flows))
	for i, f := range flows {
		debt[i] = f.Senior.Balance.Add(f.Mezzanine.Balance)
		equity[i] = f.EquityBalance
	}
	return newLineChart("FUNDING PROFILE").
		add("Debt balance", debt, ColorDanger).
		add("Equity balance", equity, ColorPrimary).
		render()
}
