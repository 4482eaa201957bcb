package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/config"
	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	"github.com/rileyhilliard/pingnodes/internal/monitor"
	"github.com/rileyhilliard/pingnodes/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoExecutor replies to every probe with a fixed latency.
type echoExecutor struct {
	address string
}

func (e echoExecutor) Probe(context.Context) probe.Result {
	return probe.Result{
		Outcome: probe.Success(12.5),
		Raw:     "64 bytes from " + e.address + ": icmp_seq=1 ttl=64 time=12.5 ms",
	}
}

func (e echoExecutor) Close() error { return nil }

func echoFactory(ep monitor.Endpoint) probe.Executor {
	return echoExecutor{address: ep.Address}
}

// refusedExecutor is an echoExecutor whose relay session never opens.
type refusedExecutor struct {
	echoExecutor
}

func (refusedExecutor) Open(context.Context) error {
	return errors.New(errors.ErrSSH, "Couldn't open relay session to ops@198.51.100.7", "")
}

// testRunConfig writes a node list and returns a config pointing at it
// with logs going to a temp dir.
func testRunConfig(t *testing.T, nodes string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "nodes.txt")
	require.NoError(t, os.WriteFile(nodesPath, []byte(nodes), 0644))

	cfg := config.DefaultConfig()
	cfg.Nodes = nodesPath
	cfg.LogDir = filepath.Join(dir, "logs")
	cfg.Interval = 100 * time.Millisecond
	cfg.Plain = true
	return cfg
}

func testRunOptions(t *testing.T) (RunOptions, *os.File) {
	t.Helper()
	out, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return RunOptions{Out: out, Logger: logger.Noop(), Factory: echoFactory}, out
}

func logFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	return matches
}

func TestRun_PlainUntilCancelled(t *testing.T) {
	cfg := testRunConfig(t, "# lab\n192.0.2.1\n2001:db8::1\n")
	opts, out := testRunOptions(t)

	ctx, cancel := context.WithTimeout(context.Background(), 350*time.Millisecond)
	defer cancel()

	require.NoError(t, Run(ctx, cfg, opts))

	data, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "192.0.2.1\t")
	assert.Contains(t, string(data), "2001:db8::1\t")
	assert.Contains(t, string(data), "12.5 / 12.5 / 12.5 / 12.5")

	assert.Len(t, logFiles(t, cfg.LogDir), 2)
}

func TestRun_BadAddressCreatesNoLogs(t *testing.T) {
	cfg := testRunConfig(t, "192.0.2.1\nnot-an-ip\n")
	opts, _ := testRunOptions(t)
	opts.Validator = monitor.Validator{Resolver: noHosts{}}

	err := Run(context.Background(), cfg, opts)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Empty(t, logFiles(t, cfg.LogDir))
}

func TestRun_RelayWithoutUser(t *testing.T) {
	cfg := testRunConfig(t, "192.0.2.1\n")
	cfg.JumpHost = "bastion.example.com"
	opts, _ := testRunOptions(t)

	err := Run(context.Background(), cfg, opts)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Empty(t, logFiles(t, cfg.LogDir))
}

func TestRun_EmptyNodeList(t *testing.T) {
	cfg := testRunConfig(t, "# nothing yet\n")
	opts, _ := testRunOptions(t)

	err := Run(context.Background(), cfg, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No nodes to ping")
}

func TestRun_MissingNodeFile(t *testing.T) {
	cfg := testRunConfig(t, "")
	cfg.Nodes = filepath.Join(t.TempDir(), "missing.txt")
	opts, _ := testRunOptions(t)

	err := Run(context.Background(), cfg, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Node list not found")
}

func TestRun_AllMonitorsFailedExitCode(t *testing.T) {
	cfg := testRunConfig(t, "192.0.2.1\n192.0.2.2\n")
	opts, _ := testRunOptions(t)
	log := logger.NewBufferLogger()
	opts.Logger = log
	opts.Factory = func(ep monitor.Endpoint) probe.Executor {
		return refusedExecutor{echoExecutor{address: ep.Address}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	err := Run(ctx, cfg, opts)
	require.Error(t, err)
	code, ok := errors.GetExitCode(err)
	require.True(t, ok)
	assert.Equal(t, ExitAllFailed, code)
	assert.True(t, log.Contains("error", "all 2 monitors failed to start"))
}

func TestRun_SomeMonitorsFailedIsNotAnError(t *testing.T) {
	cfg := testRunConfig(t, "192.0.2.1\n192.0.2.2\n")
	opts, _ := testRunOptions(t)
	opts.Factory = func(ep monitor.Endpoint) probe.Executor {
		if ep.Index == 1 {
			return refusedExecutor{echoExecutor{address: ep.Address}}
		}
		return echoExecutor{address: ep.Address}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	assert.NoError(t, Run(ctx, cfg, opts))
}

// noHosts resolves nothing.
type noHosts struct{}

func (noHosts) LookupHost(context.Context, string) ([]string, error) {
	return nil, fmt.Errorf("no such host")
}
