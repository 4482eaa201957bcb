package dashboard

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	"github.com/rileyhilliard/pingnodes/internal/monitor"
	"github.com/rileyhilliard/pingnodes/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// steadyExecutor answers every probe with the same result.
type steadyExecutor struct {
	result probe.Result
}

func (s steadyExecutor) Probe(context.Context) probe.Result { return s.result }
func (s steadyExecutor) Close() error                       { return nil }

// fakeSource is a fixed list of monitors.
type fakeSource []*monitor.Monitor

func (f fakeSource) Monitors() []*monitor.Monitor { return f }

func (f fakeSource) Statuses() []string {
	lines := make([]string, len(f))
	for i, m := range f {
		lines[i] = m.Status()
	}
	return lines
}

func newMonitor(t *testing.T, addr string, index int, res probe.Result) *monitor.Monitor {
	t.Helper()
	ep, err := monitor.NewEndpoint(context.Background(), addr, index, nil)
	require.NoError(t, err)
	return monitor.New(ep, steadyExecutor{result: res}, monitor.Options{
		Interval: time.Millisecond,
		LogDir:   t.TempDir(),
		Logger:   logger.Noop(),
	})
}

// runBriefly runs the monitors until each has recorded a few probes.
func runBriefly(t *testing.T, monitors ...*monitor.Monitor) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, m := range monitors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Run(ctx)
		}()
	}
	require.Eventually(t, func() bool {
		for _, m := range monitors {
			if m.Snapshot().Total < 3 {
				return false
			}
		}
		return true
	}, 2*time.Second, time.Millisecond)
	cancel()
	wg.Wait()
}

func reply(ms float64) probe.Result {
	return probe.Result{Outcome: probe.Success(ms), Raw: "time=1 ms"}
}

func TestModel_View(t *testing.T) {
	up := newMonitor(t, "192.0.2.1", 0, reply(12.5))
	down := newMonitor(t, "192.0.2.2", 1, probe.Result{Outcome: probe.Failure()})
	runBriefly(t, up, down)

	m := NewModel(fakeSource{up, down}, time.Second)
	view := m.View()

	assert.Contains(t, view, "pingnodes")
	assert.Contains(t, view, "2 endpoints")
	assert.Contains(t, view, "192.0.2.1")
	assert.Contains(t, view, "192.0.2.2")
	assert.Contains(t, view, "100.00%")
	assert.Contains(t, view, "0.00%")
	assert.Contains(t, view, "12.5 / 12.5 / 12.5 / 12.5")
	assert.Contains(t, view, "!!!")
	assert.Contains(t, view, "...")
	assert.Contains(t, view, "- / - / - / -")
}

func TestModel_Empty(t *testing.T) {
	m := NewModel(fakeSource{}, time.Second)
	assert.Contains(t, m.View(), "No endpoints configured")
}

func TestModel_QuitKey(t *testing.T) {
	m := NewModel(fakeSource{}, time.Second)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	require.NotNil(t, cmd)
	assert.True(t, updated.(Model).Quitting())
	assert.Empty(t, updated.View())
}

func TestModel_CtrlC(t *testing.T) {
	m := NewModel(fakeSource{}, time.Second)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.True(t, updated.(Model).Quitting())
}

func TestModel_ToggleKeys(t *testing.T) {
	m := NewModel(fakeSource{}, time.Second)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	m = updated.(Model)
	assert.True(t, m.help.ShowAll)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	assert.False(t, m.showSpark)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(Model)
	assert.True(t, m.paused)
	assert.Contains(t, m.View(), "paused")
}

func TestModel_PauseFreezesRows(t *testing.T) {
	mon := newMonitor(t, "192.0.2.1", 0, reply(5))
	m := NewModel(fakeSource{mon}, time.Second)
	require.Equal(t, 0, m.rows[0].snap.Total)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(Model)
	runBriefly(t, mon)

	updated, cmd := m.Update(tickMsg(time.Now()))
	m = updated.(Model)
	assert.NotNil(t, cmd, "ticks keep coming while paused")
	assert.Equal(t, 0, m.rows[0].snap.Total)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(Model)
	assert.GreaterOrEqual(t, m.rows[0].snap.Total, 3)
}

func TestModel_WindowSize(t *testing.T) {
	m := NewModel(fakeSource{}, time.Second)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, 80, updated.(Model).width)
	assert.Equal(t, 24, updated.(Model).height)
}

func TestModel_StartingUsesSpinner(t *testing.T) {
	mon := newMonitor(t, "192.0.2.1", 0, reply(5))
	m := NewModel(fakeSource{mon}, time.Second)

	assert.Equal(t, monitor.StateStarting, m.rows[0].state)
	view := m.View()
	assert.True(t, strings.ContainsAny(view, "◐◓◑◒"))
}

func TestPlain_Render(t *testing.T) {
	mon := newMonitor(t, "192.0.2.1", 0, reply(5))
	runBriefly(t, mon)

	var buf bytes.Buffer
	p := NewPlain(fakeSource{mon}, time.Second, &buf, false)
	require.NoError(t, p.Render())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "192.0.2.1\t"))
	assert.Contains(t, out, "\t(100.00%)\t")
	assert.NotContains(t, out, "\x1b[2J", "no clear sequence when not a terminal")
}

func TestPlain_RunStopsOnCancel(t *testing.T) {
	mon := newMonitor(t, "192.0.2.1", 0, reply(5))
	var buf bytes.Buffer
	p := NewPlain(fakeSource{mon}, time.Millisecond, &buf, false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "192.0.2.1"), 2)
}
