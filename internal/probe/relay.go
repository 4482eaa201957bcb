package probe

import (
	"context"
	stderrors "errors"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
)

// maxConsecutiveTimeouts is how many probes in a row may time out on the
// relay before the connection is assumed dead and redialed.
const maxConsecutiveTimeouts = 3

// Relay probes by running ping on a relay host over SSH.
type Relay struct {
	session    *Session
	command    Command
	classifier Classifier
	log        logger.Logger
	timeouts   int
}

// NewRelay creates a relay executor. The command's platform is filled in
// from the session once it is open.
func NewRelay(session *Session, cmd Command, log logger.Logger) *Relay {
	if log == nil {
		log = logger.Default()
	}
	return &Relay{
		session:    session,
		command:    cmd,
		classifier: TextClassifier{},
		log:        log,
	}
}

// Open establishes the relay session. A failure here is fatal for the
// monitor that owns this executor.
func (r *Relay) Open(ctx context.Context) error {
	if err := r.session.Open(ctx); err != nil {
		return err
	}
	r.log.Debug("relay %s: connected, platform %s", r.session.Target(), r.session.Platform())
	return nil
}

// Probe implements Executor.
func (r *Relay) Probe(ctx context.Context) Result {
	timeout := r.command.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout+ExecSlack)
	defer cancel()

	cmd := r.command
	cmd.Platform = r.session.Platform()

	stdout, exitCode, err := r.session.Exec(probeCtx, cmd.String())
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			r.timeouts++
			if r.timeouts >= maxConsecutiveTimeouts {
				r.session.MarkBroken(err)
				r.timeouts = 0
			}
		} else if !stderrors.Is(err, ErrSessionDown) {
			r.log.Debug("probe %s via %s: %s", cmd.Address, r.session.Target(), errors.Short(err))
		}
		return Result{Outcome: Failure(), Err: err}
	}
	r.timeouts = 0

	v := r.classifier.Classify(string(stdout), exitCode)
	if v.Err != nil {
		r.log.Warn("probe %s via %s: reply without latency: %s", cmd.Address, r.session.Target(), errors.Short(v.Err))
	}
	return fromVerdict(v)
}

// Close implements Executor.
func (r *Relay) Close() error {
	return r.session.Close()
}
