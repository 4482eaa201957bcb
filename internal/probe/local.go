package probe

import (
	"context"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/exec"
	"github.com/rileyhilliard/pingnodes/internal/logger"
)

// Local probes by running ping on this machine.
type Local struct {
	command    Command
	runner     exec.Runner
	classifier Classifier
	log        logger.Logger
}

// LocalOption configures a Local executor.
type LocalOption func(*Local)

// WithRunner replaces the process runner, mostly for tests.
func WithRunner(r exec.Runner) LocalOption {
	return func(l *Local) { l.runner = r }
}

// WithLocalLogger sets the logger used for diagnostics.
func WithLocalLogger(log logger.Logger) LocalOption {
	return func(l *Local) { l.log = log }
}

// NewLocal creates a local executor for cmd. The platform of cmd should
// normally be LocalPlatform().
func NewLocal(cmd Command, opts ...LocalOption) *Local {
	l := &Local{
		command:    cmd,
		runner:     exec.Local,
		classifier: ExitStatusClassifier{},
		log:        logger.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Probe implements Executor.
func (l *Local) Probe(ctx context.Context) Result {
	timeout := l.command.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout+ExecSlack)
	defer cancel()

	stdout, _, exitCode, err := l.runner.Run(ctx, l.command.Argv())
	if err != nil {
		l.log.Debug("probe %s: %s", l.command.Address, errors.Short(err))
		return Result{Outcome: Failure(), Err: err}
	}

	v := l.classifier.Classify(string(stdout), exitCode)
	if v.Err != nil {
		l.log.Warn("probe %s: reply without latency: %s", l.command.Address, errors.Short(v.Err))
	}
	return fromVerdict(v)
}

// Close implements Executor. There is nothing to release.
func (l *Local) Close() error {
	return nil
}
