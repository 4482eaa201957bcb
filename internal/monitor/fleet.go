package monitor

import (
	"context"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	"github.com/rileyhilliard/pingnodes/internal/probe"
	"golang.org/x/sync/errgroup"
)

// ExecutorFactory builds the probe executor for one endpoint.
type ExecutorFactory func(ep Endpoint) probe.Executor

// NewExecutorFactory returns the factory used outside tests: a relay
// executor with its own session for endpoints that have a relay, a local
// one otherwise. dial may be nil for the real SSH dialer.
func NewExecutorFactory(timeout time.Duration, dial probe.DialFunc, log logger.Logger) ExecutorFactory {
	if log == nil {
		log = logger.Default()
	}
	return func(ep Endpoint) probe.Executor {
		cmd := probe.Command{
			Platform: probe.LocalPlatform(),
			Family:   ep.Family(),
			Address:  ep.Address,
			Timeout:  timeout,
		}
		if ep.Relay == nil {
			return probe.NewLocal(cmd, probe.WithLocalLogger(log))
		}
		session := probe.NewSession(ep.Relay.Host, ep.Relay.User, dial, log)
		return probe.NewRelay(session, cmd, log)
	}
}

// FleetConfig describes a run.
type FleetConfig struct {
	// Addresses in configured order; an endpoint's index is its position.
	Addresses []string
	// Relay applies to every endpoint when set.
	Relay *Relay

	Options   Options
	Validator Validator
}

// Fleet runs one monitor per endpoint.
type Fleet struct {
	monitors []*Monitor
	log      logger.Logger
}

// NewFleet validates every address before building anything, so a
// configuration error leaves no monitor and no log file behind.
func NewFleet(ctx context.Context, cfg FleetConfig, factory ExecutorFactory) (*Fleet, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No nodes to ping",
			"Add at least one address to the node list file.")
	}

	endpoints := make([]Endpoint, 0, len(cfg.Addresses))
	for i, addr := range cfg.Addresses {
		ep, err := cfg.Validator.NewEndpoint(ctx, addr, i, cfg.Relay)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}

	opts := cfg.Options
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	opts = opts.withDefaults()

	f := &Fleet{log: opts.Logger}
	for _, ep := range endpoints {
		f.monitors = append(f.monitors, New(ep, factory(ep), opts))
	}
	return f, nil
}

// Run starts every monitor and waits until all have stopped. A monitor
// whose setup fails is logged and left failed; the others keep running.
func (f *Fleet) Run(ctx context.Context) error {
	var g errgroup.Group
	for _, m := range f.monitors {
		g.Go(func() error {
			if err := m.Run(ctx); err != nil {
				f.log.Warn("monitor %d (%s) stopped: %s", m.Endpoint().Index, m.Endpoint().Address, errors.Short(err))
			}
			return nil
		})
	}
	return g.Wait()
}

// Monitors returns the monitors in configured order.
func (f *Fleet) Monitors() []*Monitor {
	out := make([]*Monitor, len(f.monitors))
	copy(out, f.monitors)
	return out
}

// Statuses returns one status line per endpoint, in configured order.
func (f *Fleet) Statuses() []string {
	lines := make([]string, len(f.monitors))
	for i, m := range f.monitors {
		lines[i] = m.Status()
	}
	return lines
}

// Failed returns the monitors whose setup failed.
func (f *Fleet) Failed() []*Monitor {
	var failed []*Monitor
	for _, m := range f.monitors {
		if m.State() == StateFailed {
			failed = append(failed, m)
		}
	}
	return failed
}
