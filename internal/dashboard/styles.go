package dashboard

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pingnodes/internal/monitor"
	"github.com/rileyhilliard/pingnodes/internal/ui"
)

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	ColorAccent = lipgloss.Color("#FF2E97") // Neon pink
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	ColumnHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Bold(true)

	AddressStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorError)

	RuleStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)
)

// stateSymbol returns the indicator for a monitor's lifecycle state. The
// starting state is animated by the spinner and handled by the caller.
func stateSymbol(s monitor.State) string {
	switch s {
	case monitor.StateRunning:
		return lipgloss.NewStyle().Foreground(ui.ColorSuccess).Render(ui.SymbolSuccess)
	case monitor.StateFailed:
		return ErrorStyle.Render(ui.SymbolFail)
	case monitor.StateTerminated:
		return MutedStyle.Render(ui.SymbolComplete)
	default:
		return MutedStyle.Render(ui.SymbolPending)
	}
}
