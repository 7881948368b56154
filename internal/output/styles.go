package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	ColorPrimary = lipgloss.Color("#2E86AB")
	ColorSuccess = lipgloss.Color("#3BB273")
	ColorDanger  = lipgloss.Color("#E15554")
	ColorMuted   = lipgloss.Color("#7D7D7D")
	ColorBorder  = lipgloss.Color("#4D4D4D")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	MetricLabelStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	MetricValueStyle    = lipgloss.NewStyle().Bold(true)
	MetricPositiveStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	MetricNegativeStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)

	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// metricCard renders a label over a value in a bordered box. sign picks the value
// colour: positive, negative or plain when zero.
func metricCard(label, value string, sign int) string {
	style := MetricValueStyle
	switch {
	case sign > 0:
		style = MetricPositiveStyle
	case sign < 0:
		style = MetricNegativeStyle
	}
	return cardStyle.Render(MetricLabelStyle.Render(label) + "\n" + style.Render(value))
}

// metricGrid lays cards out left to right, wrapping after columns cards
func metricGrid(cards []string, columns int) string {
	if len(cards) == 0 {
		return ""
	}

	rows := []string{}
	currentRow := []string{}
	for i, card := range cards {
		currentRow = append(currentRow, card)
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, currentRow...))
			currentRow = []string{}
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal that is already a percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

func sign(d decimal.Decimal) int {
	return d.Sign()
}

func monthLabel(month int) string {
	return fmt.Sprintf("M%03d", month)
}
