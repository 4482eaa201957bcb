package probe

import (
	"context"
	"time"
)

// ExecSlack is added to the probe timeout to get the deadline for the whole
// ping process, so ping can report its own timeout before being killed.
const ExecSlack = time.Second

// Result is what one probe produced. Raw is the result line worth logging
// and is empty for failures. Err keeps any fault the executor absorbed into
// a failed outcome, for diagnostics only.
type Result struct {
	Outcome Outcome
	Raw     string
	Err     error
}

// Executor runs probes against one endpoint.
type Executor interface {
	// Probe runs a single ping. It never fails; faults become a failed Outcome.
	Probe(ctx context.Context) Result
	// Close releases whatever the executor holds open.
	Close() error
}

// Opener is implemented by executors that need setup before the first probe.
// An error from Open means the executor can't be used at all.
type Opener interface {
	Open(ctx context.Context) error
}

func fromVerdict(v Verdict) Result {
	return Result{Outcome: v.Outcome, Raw: v.Line, Err: v.Err}
}
