package cli

import (
	"context"
	"os"

	"github.com/rileyhilliard/pingnodes/internal/config"
	"github.com/rileyhilliard/pingnodes/internal/dashboard"
	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	"github.com/rileyhilliard/pingnodes/internal/monitor"
	"github.com/rileyhilliard/pingnodes/pkg/sshutil"
	"golang.org/x/sync/errgroup"
)

// ExitAllFailed is the exit status when no monitor got past setup, e.g.
// every relay session was refused. The reasons are already on screen.
const ExitAllFailed = 2

// RunOptions overrides the collaborators of a run. Zero values use the
// real ones.
type RunOptions struct {
	// Out receives the display. Defaults to os.Stdout.
	Out       *os.File
	Logger    logger.Logger
	Factory   monitor.ExecutorFactory
	Validator monitor.Validator
}

// Run pings every node in cfg until ctx is done or the user quits the
// dashboard. Configuration errors are returned before any monitor starts
// or any log file is created. If every monitor failed its setup the result
// is an ExitError with ExitAllFailed.
func Run(ctx context.Context, cfg *config.Config, opts RunOptions) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}

	nodes, err := config.LoadNodes(cfg.Nodes)
	if err != nil {
		return err
	}

	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	var relay *monitor.Relay
	if cfg.HasRelay() {
		relay = &monitor.Relay{Host: cfg.JumpHost, User: cfg.JumpUser}
		sshutil.StrictHostKeyChecking = cfg.StrictHostKeyChecking
		defer sshutil.CloseAgent()
	}

	factory := opts.Factory
	if factory == nil {
		factory = monitor.NewExecutorFactory(cfg.ProbeTimeout, nil, log)
	}

	fleet, err := monitor.NewFleet(ctx, monitor.FleetConfig{
		Addresses: nodes,
		Relay:     relay,
		Options: monitor.Options{
			Interval:     cfg.Interval,
			HistoryWidth: cfg.HistoryWidth,
			LogDir:       cfg.LogDir,
			Logger:       log,
		},
		Validator: opts.Validator,
	}, factory)
	if err != nil {
		return err
	}
	log.Debug("pinging %d nodes every %s, logs in %s", len(nodes), cfg.Interval, cfg.LogDir)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		return fleet.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return dashboard.Run(ctx, cancel, fleet, dashboard.RunOptions{
			Interval: cfg.Interval,
			Plain:    cfg.Plain,
			Out:      opts.Out,
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if failed := fleet.Failed(); len(failed) == len(fleet.Monitors()) {
		log.Error("all %d monitors failed to start, first: %s", len(failed), errors.Short(failed[0].Err()))
		return errors.NewExitError(ExitAllFailed)
	}
	return nil
}
