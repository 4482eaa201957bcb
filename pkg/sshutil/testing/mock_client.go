// Package testing provides an in-memory SSH client for relay tests.
package testing

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/rileyhilliard/pingnodes/pkg/sshutil"
)

// ErrClosed is returned by every call on a closed MockClient.
var ErrClosed = errors.New("connection closed")

// CommandResponse defines a canned response for a command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
	// Delay holds the response back, or until the caller's context ends.
	Delay time.Duration
}

// MockClient simulates a relay connection. Responses are looked up by
// exact command first, then by regex pattern. Queued responses for a
// pattern are consumed before its standing response.
type MockClient struct {
	mu       sync.Mutex
	host     string
	address  string
	closed   bool
	commands map[string]CommandResponse
	queued   map[string][]CommandResponse
	calls    []string
}

var _ sshutil.SSHClient = (*MockClient)(nil)

// NewMockClient creates a mock relay that answers `uname -s` with Linux.
func NewMockClient(host string) *MockClient {
	m := &MockClient{
		host:     host,
		address:  host + ":22",
		commands: make(map[string]CommandResponse),
		queued:   make(map[string][]CommandResponse),
	}
	m.commands["uname -s"] = CommandResponse{Stdout: []byte("Linux\n")}
	return m
}

// ExecContext returns the response registered for cmd. Unknown commands
// behave like a shell that can't find them (exit 127).
func (m *MockClient) ExecContext(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, nil, -1, ErrClosed
	}
	m.calls = append(m.calls, cmd)
	resp := m.lookup(cmd)
	m.mu.Unlock()

	if resp.Delay > 0 {
		timer := time.NewTimer(resp.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, nil, -1, ctx.Err()
		case <-timer.C:
		}
	}

	if resp.Error != nil {
		return nil, nil, -1, resp.Error
	}
	return resp.Stdout, resp.Stderr, resp.ExitCode, nil
}

// lookup must be called with m.mu held.
func (m *MockClient) lookup(cmd string) CommandResponse {
	for _, key := range m.matchingKeys(cmd) {
		if q := m.queued[key]; len(q) > 0 {
			m.queued[key] = q[1:]
			return q[0]
		}
	}
	for _, key := range m.matchingKeys(cmd) {
		if resp, ok := m.commands[key]; ok {
			return resp
		}
	}
	return CommandResponse{Stderr: []byte("sh: command not found\n"), ExitCode: 127}
}

func (m *MockClient) matchingKeys(cmd string) []string {
	keys := []string{cmd}
	seen := map[string]bool{cmd: true}
	add := func(pattern string) {
		if seen[pattern] {
			return
		}
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			keys = append(keys, pattern)
			seen[pattern] = true
		}
	}
	for pattern := range m.queued {
		add(pattern)
	}
	for pattern := range m.commands {
		add(pattern)
	}
	return keys
}

// SetCommandResponse registers a standing response for a command pattern.
// The pattern can be an exact string or a regex.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[pattern] = resp
}

// QueueResponses registers one-shot responses for a pattern, used in order.
func (m *MockClient) QueueResponses(pattern string, resps ...CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[pattern] = append(m.queued[pattern], resps...)
}

// Calls returns every command run so far, in order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}

// GetAddress returns the host:port address.
func (m *MockClient) GetAddress() string {
	return m.address
}
