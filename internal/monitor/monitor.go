package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	"github.com/rileyhilliard/pingnodes/internal/probe"
)

// DefaultInterval is the pause between probes of one endpoint.
const DefaultInterval = time.Second

// State is the lifecycle state of a Monitor.
type State int

const (
	// StateStarting covers setup: opening the log file and the executor.
	StateStarting State = iota
	// StateRunning means the probe loop is active.
	StateRunning
	// StateTerminated means the loop stopped after cancellation.
	StateTerminated
	// StateFailed means setup failed and no probe was run.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options tune a Monitor. Zero values fall back to defaults.
type Options struct {
	Interval     time.Duration
	HistoryWidth int
	LogDir       string
	// Start names the log file; all monitors of a run share it.
	Start  time.Time
	Logger logger.Logger
	// Now stamps log records. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.HistoryWidth <= 0 {
		o.HistoryWidth = DefaultHistorySize
	}
	if o.LogDir == "" {
		o.LogDir = "."
	}
	if o.Start.IsZero() {
		o.Start = time.Now()
	}
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Monitor probes one endpoint in a loop and keeps its statistics.
type Monitor struct {
	endpoint Endpoint
	exec     probe.Executor
	opts     Options
	stats    *Stats

	mu      sync.RWMutex
	state   State
	err     error
	logPath string
}

// New creates a monitor. Nothing happens until Run.
func New(endpoint Endpoint, exec probe.Executor, opts Options) *Monitor {
	opts = opts.withDefaults()
	return &Monitor{
		endpoint: endpoint,
		exec:     exec,
		opts:     opts,
		stats:    NewStats(opts.HistoryWidth),
	}
}

// Run sets up the log file and executor, then probes once per interval until
// ctx is done. It returns the setup error if setup failed, nil otherwise.
func (m *Monitor) Run(ctx context.Context) error {
	log := m.opts.Logger

	logFile, err := OpenLogFile(m.opts.LogDir, m.opts.Start, m.endpoint.Index)
	if err != nil {
		return m.fail(err)
	}
	defer logFile.Close()
	m.mu.Lock()
	m.logPath = logFile.Path()
	m.mu.Unlock()

	defer func() {
		if err := m.exec.Close(); err != nil {
			log.Debug("%s: close: %s", m.endpoint.Address, errors.Short(err))
		}
	}()

	if opener, ok := m.exec.(probe.Opener); ok {
		if err := opener.Open(ctx); err != nil {
			return m.fail(err)
		}
	}

	m.setState(StateRunning)
	log.Debug("%s: monitor running, logging to %s", m.endpoint.Address, logFile.Path())

	logFailed := false
	for {
		res := m.exec.Probe(ctx)
		// A probe cut short by shutdown says nothing about the endpoint.
		if ctx.Err() != nil && !res.Outcome.OK() {
			break
		}

		m.stats.Record(res.Outcome)
		if err := logFile.Record(m.opts.Now(), res); err != nil && !logFailed {
			logFailed = true
			log.Warn("%s: %s", m.endpoint.Address, errors.Short(err))
		}

		select {
		case <-ctx.Done():
		case <-time.After(m.opts.Interval):
			continue
		}
		break
	}

	m.setState(StateTerminated)
	return nil
}

func (m *Monitor) fail(err error) error {
	m.mu.Lock()
	m.state = StateFailed
	m.err = err
	m.mu.Unlock()
	m.opts.Logger.Error("%s: %s", m.endpoint.Address, errors.Short(err))
	return err
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Endpoint returns the monitored endpoint.
func (m *Monitor) Endpoint() Endpoint {
	return m.endpoint
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Err returns the setup error of a failed monitor.
func (m *Monitor) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// LogPath returns the log file path once setup opened it.
func (m *Monitor) LogPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logPath
}

// Snapshot returns a copy of the current statistics.
func (m *Monitor) Snapshot() Snapshot {
	return m.stats.Snapshot()
}

// Outcomes returns every outcome recorded so far.
func (m *Monitor) Outcomes() []probe.Outcome {
	return m.stats.Outcomes()
}

// Status renders the status line. It has no side effects.
func (m *Monitor) Status() string {
	return FormatStatus(m.endpoint.Address, m.stats.Snapshot(), m.Err())
}
