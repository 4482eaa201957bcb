// Package exec runs local probe processes.
package exec

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rileyhilliard/pingnodes/internal/errors"
)

// Runner runs one command and captures its output. The local probe
// strategy takes a Runner so tests can stand in for the real ping binary.
type Runner interface {
	Run(ctx context.Context, argv []string) (stdout, stderr []byte, exitCode int, err error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, argv []string) ([]byte, []byte, int, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, argv []string) ([]byte, []byte, int, error) {
	return f(ctx, argv)
}

// Local is the Runner backed by os/exec.
var Local Runner = RunnerFunc(CaptureContext)

// CaptureContext runs argv directly (no shell) and captures stdout and stderr.
// A non-zero exit is reported through exitCode with a nil error. The error is
// only set when the process couldn't be started or was killed because ctx
// ended; exitCode is -1 in both cases.
func CaptureContext(ctx context.Context, argv []string) (stdout, stderr []byte, exitCode int, err error) {
	if len(argv) == 0 {
		return nil, nil, -1, errors.New(errors.ErrProbe,
			"Empty probe command",
			"This is a bug - the probe command should never be empty.")
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	command.Stdout = &stdoutBuf
	command.Stderr = &stderrBuf

	runErr := command.Run()
	if ctx.Err() != nil {
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), -1, errors.WrapWithCode(ctx.Err(), errors.ErrProbe,
			"Probe didn't finish in time",
			"Raise --timeout if the network is slow.")
	}
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, nil, -1, errors.WrapWithCode(runErr, errors.ErrProbe,
			"Couldn't start "+argv[0],
			"Make sure "+argv[0]+" is installed and on your PATH.")
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}
