package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Latency thresholds in milliseconds for coloring.
const (
	LatencyWarning  = 100.0
	LatencyCritical = 250.0
)

// LatencyColor maps a latency in ms to green, yellow, or red.
func LatencyColor(ms float64) lipgloss.Color {
	switch {
	case ms >= LatencyCritical:
		return ColorError
	case ms >= LatencyWarning:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// RateColor maps a success rate (0 to 1) to a color.
func RateColor(rate float64) lipgloss.Color {
	switch {
	case rate >= 0.99:
		return ColorSuccess
	case rate >= 0.9:
		return ColorWarning
	default:
		return ColorError
	}
}
