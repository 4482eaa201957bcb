package sshutil

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// Exec runs a command on the remote host and returns the output.
// Exit code is -1 if the command couldn't be executed at all.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	return c.ExecContext(context.Background(), cmd)
}

// ExecContext runs a command in a fresh session on the existing connection.
// If ctx ends first the session is closed and ctx.Err() is returned with
// exit code -1; the connection itself stays open. Opening the session is
// bounded by ctx as well, since a dead connection can stall it.
func (c *Client) ExecContext(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	type result struct {
		stdout, stderr []byte
		exitCode       int
		err            error
	}

	var (
		mu      sync.Mutex
		session *ssh.Session
	)
	done := make(chan result, 1)

	go func() {
		s, err := c.Client.NewSession()
		if err != nil {
			done <- result{exitCode: -1, err: errors.WrapWithCode(err, errors.ErrSSH,
				"Failed to create SSH session",
				"Connection may have been closed. It will be re-established.")}
			return
		}
		mu.Lock()
		session = s
		mu.Unlock()
		defer s.Close()

		if c.forwardAgent.Load() {
			if err := agent.RequestAgentForwarding(s); err != nil && c.forwardAgent.CompareAndSwap(true, false) {
				logger.Default().Warn("relay %s refused agent forwarding, continuing without it: %v", c.Host, err)
			}
		}

		var stdoutBuf, stderrBuf bytes.Buffer
		s.Stdout = &stdoutBuf
		s.Stderr = &stderrBuf

		runErr := s.Run(cmd)
		switch e := runErr.(type) {
		case nil:
			done <- result{stdout: stdoutBuf.Bytes(), stderr: stderrBuf.Bytes()}
		case *ssh.ExitError:
			done <- result{stdout: stdoutBuf.Bytes(), stderr: stderrBuf.Bytes(), exitCode: e.ExitStatus()}
		case *ssh.ExitMissingError:
			// The command ran but the server sent no status.
			done <- result{stdout: stdoutBuf.Bytes(), stderr: stderrBuf.Bytes(), exitCode: -1}
		default:
			done <- result{exitCode: -1, err: errors.WrapWithCode(runErr, errors.ErrSSH,
				fmt.Sprintf("Failed to execute command on relay: %s", cmd),
				"The connection may have dropped.")}
		}
	}()

	select {
	case <-ctx.Done():
		mu.Lock()
		if session != nil {
			_ = session.Close()
		}
		mu.Unlock()
		return nil, nil, -1, ctx.Err()
	case r := <-done:
		return r.stdout, r.stderr, r.exitCode, r.err
	}
}
