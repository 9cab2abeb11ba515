// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#7C9EF5")
	// IncomeColor marks inflows.
	IncomeColor = lipgloss.Color("#4ECDC4")
	// ExpenseColor marks outflows.
	ExpenseColor = lipgloss.Color("#FF6B6B")
	// PendingColor marks not-yet-confirmed transactions.
	PendingColor = lipgloss.Color("#FFE66D")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// SectionTitleStyle is used for time-bucket section headings.
	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor)

	// TotalStyle formats per-currency section totals.
	TotalStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// IncomeStyle formats positive contributions.
	IncomeStyle = lipgloss.NewStyle().
			Foreground(IncomeColor)

	// ExpenseStyle formats negative contributions.
	ExpenseStyle = lipgloss.NewStyle().
			Foreground(ExpenseColor)

	// PendingStyle marks pending rows.
	PendingStyle = lipgloss.NewStyle().
			Foreground(PendingColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(IncomeColor)

	// ErrorStyle formats errors or failure messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ExpenseColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)
)

// RenderAmount styles a signed amount: income colors for positive values,
// expense colors for negative.
func RenderAmount(amount decimal.Decimal, currency string) string {
	text := amount.StringFixed(2) + " " + currency
	if amount.Sign() < 0 {
		return ExpenseStyle.Render(text)
	}
	return IncomeStyle.Render(text)
}
