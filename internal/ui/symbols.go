package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Unicode symbols for monitor states.
const (
	SymbolSuccess  = "✓" // Monitor running
	SymbolFail     = "✗" // Monitor failed to start
	SymbolPending  = "○" // Monitor starting
	SymbolComplete = "●" // Monitor stopped
)

var (
	glyphOK   = lipgloss.NewStyle().Foreground(ColorSuccess)
	glyphLost = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

// RenderGlyphs colors a history of '!' (reply) and '.' (lost) glyphs.
// Runs of the same glyph share one style span.
func RenderGlyphs(glyphs string) string {
	var b strings.Builder
	for i := 0; i < len(glyphs); {
		j := i
		for j < len(glyphs) && glyphs[j] == glyphs[i] {
			j++
		}
		run := glyphs[i:j]
		if glyphs[i] == '!' {
			b.WriteString(glyphOK.Render(run))
		} else {
			b.WriteString(glyphLost.Render(run))
		}
		i = j
	}
	return b.String()
}
