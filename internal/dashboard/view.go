package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/monitor"
	"github.com/rileyhilliard/pingnodes/internal/ui"
	"github.com/rileyhilliard/pingnodes/internal/util"
)

// Width below which the sparkline column is dropped.
const BreakpointSparkline = 120

// sparklineWidth is how many samples the sparkline shows.
const sparklineWidth = 20

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with run-wide counts.
func (m Model) renderHeader() string {
	running, failed := 0, 0
	for _, r := range m.rows {
		switch r.state {
		case monitor.StateRunning:
			running++
		case monitor.StateFailed:
			failed++
		}
	}

	uptime := m.lastUpdate.Sub(m.started).Truncate(time.Second)
	info := fmt.Sprintf(" | %s | %d running", util.CountOf(len(m.rows), "endpoint", "endpoints"), running)
	if failed > 0 {
		info += fmt.Sprintf(" | %d failed", failed)
	}
	info += fmt.Sprintf(" | up %s", uptime)
	if m.paused {
		info += " | paused"
	}

	return HeaderStyle.Render(TitleStyle.Render("pingnodes") + LabelStyle.Render(info))
}

// renderTable renders one line per endpoint, aligned in columns.
func (m Model) renderTable() string {
	if len(m.rows) == 0 {
		return LabelStyle.Render("No endpoints configured")
	}

	addrWidth := len("ENDPOINT")
	countWidth := len("OK/LOST/ALL")
	for _, r := range m.rows {
		addrWidth = max(addrWidth, len(r.address))
		countWidth = max(countWidth, len(counts(r.snap)))
	}
	glyphWidth := 0
	for _, r := range m.rows {
		glyphWidth = max(glyphWidth, len(r.snap.Glyphs))
	}
	glyphWidth = max(glyphWidth, len("HISTORY"))
	spark := m.showSpark && (m.width == 0 || m.width >= BreakpointSparkline)

	var lines []string
	header := "  " + pad("ENDPOINT", addrWidth) + "  " + pad("OK/LOST/ALL", countWidth) + "  " +
		pad("RATE", 8) + "  " + pad("HISTORY", glyphWidth) + "  " + "LAST / MIN / AVG / MAX ms"
	if spark {
		header += "  TREND"
	}
	lines = append(lines, ColumnHeaderStyle.Render(header))

	for _, r := range m.rows {
		lines = append(lines, m.renderRow(r, addrWidth, countWidth, glyphWidth, spark))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, addrWidth, countWidth, glyphWidth int, spark bool) string {
	symbol := stateSymbol(r.state)
	if r.state == monitor.StateStarting {
		symbol = m.spinner.View()
	}

	var b strings.Builder
	b.WriteString(symbol)
	b.WriteString(" ")
	b.WriteString(AddressStyle.Render(pad(r.address, addrWidth)))
	b.WriteString("  ")
	b.WriteString(pad(counts(r.snap), countWidth))
	b.WriteString("  ")
	rate := fmt.Sprintf("%.2f%%", r.snap.SuccessRate()*100)
	b.WriteString(lipgloss.NewStyle().Foreground(ui.RateColor(r.snap.SuccessRate())).Render(pad(rate, 8)))
	b.WriteString("  ")
	b.WriteString(ui.RenderGlyphs(r.snap.Glyphs))
	b.WriteString(strings.Repeat(" ", glyphWidth-len(r.snap.Glyphs)))
	b.WriteString("  ")

	if r.state == monitor.StateFailed {
		b.WriteString(ErrorStyle.Render(errors.Short(r.err)))
		return b.String()
	}

	b.WriteString(latencies(r.snap))
	if spark {
		b.WriteString("  ")
		b.WriteString(ui.RenderSparkline(r.snap.Recent, sparklineWidth))
	}
	if r.relay != "" && m.width >= BreakpointSparkline {
		b.WriteString("  ")
		b.WriteString(MutedStyle.Render("via " + r.relay))
	}
	return b.String()
}

// renderFooter renders the key help.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.View(keys))
}

func counts(s monitor.Snapshot) string {
	return fmt.Sprintf("%d/%d/%d", s.Success, s.Failure, s.Total)
}

func latencies(s monitor.Snapshot) string {
	parts := []string{
		monitor.FormatLatency(s.Last),
		monitor.FormatLatency(s.Min),
		monitor.FormatLatency(s.Avg),
		monitor.FormatLatency(s.Max),
	}
	if s.Last.Valid {
		parts[0] = lipgloss.NewStyle().Foreground(ui.LatencyColor(s.Last.Float64)).Render(parts[0])
	} else {
		parts[0] = ErrorStyle.Render(parts[0])
	}
	return strings.Join(parts, MutedStyle.Render(" / "))
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
