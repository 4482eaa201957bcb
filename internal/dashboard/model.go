package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pingnodes/internal/monitor"
	"github.com/rileyhilliard/pingnodes/internal/ui"
)

// Source is what the dashboard displays. *monitor.Fleet satisfies it.
type Source interface {
	Monitors() []*monitor.Monitor
	Statuses() []string
}

// row is one endpoint as captured at the last refresh.
type row struct {
	address string
	relay   string
	state   monitor.State
	err     error
	snap    monitor.Snapshot
}

// Model is the Bubble Tea model for the live status screen.
type Model struct {
	source   Source
	interval time.Duration
	rows     []row

	width      int
	height     int
	started    time.Time
	lastUpdate time.Time

	paused    bool
	showSpark bool
	quitting  bool

	help    help.Model
	spinner spinner.Model
	now     func() time.Time
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// NewModel creates a dashboard model refreshing once per interval.
func NewModel(source Source, interval time.Duration) Model {
	if interval <= 0 {
		interval = monitor.DefaultInterval
	}
	m := Model{
		source:    source,
		interval:  interval,
		showSpark: true,
		help:      help.New(),
		spinner:   ui.NewSpinner(),
		now:       time.Now,
	}
	m.started = m.now()
	m.refresh()
	return m
}

// Init starts the refresh timer and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.spinner.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, keys.Spark):
			m.showSpark = !m.showSpark
		case key.Matches(msg, keys.Freeze):
			m.paused = !m.paused
			if !m.paused {
				m.refresh()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		if !m.paused {
			m.refresh()
		}
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}

// refresh copies the current state of every monitor.
func (m *Model) refresh() {
	monitors := m.source.Monitors()
	rows := make([]row, len(monitors))
	for i, mon := range monitors {
		ep := mon.Endpoint()
		r := row{
			address: ep.Address,
			state:   mon.State(),
			err:     mon.Err(),
			snap:    mon.Snapshot(),
		}
		if ep.Relay != nil {
			r.relay = ep.Relay.String()
		}
		rows[i] = r
	}
	m.rows = rows
	m.lastUpdate = m.now()
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
