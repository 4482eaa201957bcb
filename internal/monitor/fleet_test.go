package monitor

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	"github.com/rileyhilliard/pingnodes/internal/probe"
	"github.com/rileyhilliard/pingnodes/pkg/sshutil"
	sshtesting "github.com/rileyhilliard/pingnodes/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fleetConfig(t *testing.T, addrs ...string) FleetConfig {
	t.Helper()
	return FleetConfig{
		Addresses: addrs,
		Options:   testOptions(t),
		Validator: testValidator(),
	}
}

func TestNewFleet_RejectsBadAddressWithoutLogFiles(t *testing.T) {
	cfg := fleetConfig(t, "192.0.2.1", "not-an-ip")
	built := 0

	_, err := NewFleet(context.Background(), cfg, func(Endpoint) probe.Executor {
		built++
		return &scriptedExecutor{}
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Equal(t, 0, built)
	entries, err := os.ReadDir(cfg.Options.LogDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewFleet_RelayWithoutUser(t *testing.T) {
	cfg := fleetConfig(t, "192.0.2.1")
	cfg.Relay = &Relay{Host: "198.51.100.7"}

	_, err := NewFleet(context.Background(), cfg, func(Endpoint) probe.Executor { return &scriptedExecutor{} })

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestNewFleet_Empty(t *testing.T) {
	_, err := NewFleet(context.Background(), fleetConfig(t), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFleet_RunAndStatuses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	var mu sync.Mutex
	finished := 0
	done := func() {
		mu.Lock()
		defer mu.Unlock()
		finished++
		if finished == 2 {
			once.Do(cancel)
		}
	}

	scripts := map[string][]probe.Result{
		"192.0.2.1":   {success(10), failure(), success(30)},
		"2001:db8::1": {success(1)},
	}
	fleet, err := NewFleet(ctx, fleetConfig(t, "192.0.2.1", "2001:db8::1"), func(ep Endpoint) probe.Executor {
		return &scriptedExecutor{results: scripts[ep.Address], done: done}
	})
	require.NoError(t, err)

	before := fleet.Statuses()
	assert.Equal(t, []string{
		"192.0.2.1\t0/0/0\t(100.00%)\t\t- / - / - / -",
		"2001:db8::1\t0/0/0\t(100.00%)\t\t- / - / - / -",
	}, before)

	require.NoError(t, fleet.Run(ctx))

	assert.Equal(t, []string{
		"192.0.2.1\t2/1/3\t(66.67%)\t!.!\t30.0 / 10.0 / 20.0 / 30.0",
		"2001:db8::1\t1/0/1\t(100.00%)\t!\t1.0 / 1.0 / 1.0 / 1.0",
	}, fleet.Statuses())
	assert.Empty(t, fleet.Failed())

	monitors := fleet.Monitors()
	require.Len(t, monitors, 2)
	assert.Equal(t, 0, monitors[0].Endpoint().Index)
	assert.Equal(t, 1, monitors[1].Endpoint().Index)
	assert.Equal(t, probe.FamilyV6, monitors[1].Endpoint().Family())
}

// A relay that can't be reached fails only the monitors that use it.
func TestFleet_RelayFailureIsIsolated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	good := sshtesting.NewMockClient("relay")
	good.SetCommandResponse("^ping ", sshtesting.CommandResponse{
		Stdout: []byte("PING 192.0.2.1\n64 bytes from 192.0.2.1: icmp_seq=1 ttl=57 time=12.3 ms\n"),
	})
	dial := func(target string, _ time.Duration) (sshutil.SSHClient, error) {
		if target == "ops@198.51.100.7" {
			return good, nil
		}
		return nil, errors.New(errors.ErrSSH, "Can't reach relay", "")
	}

	opts := testOptions(t)
	log := logger.NewBufferLogger()
	opts.Logger = log
	factory := NewExecutorFactory(100*time.Millisecond, dial, log)

	v := testValidator()
	goodEp, err := v.NewEndpoint(ctx, "192.0.2.1", 0, &Relay{Host: "198.51.100.7", User: "ops"})
	require.NoError(t, err)
	badEp, err := v.NewEndpoint(ctx, "192.0.2.2", 1, &Relay{Host: "198.51.100.8", User: "ops"})
	require.NoError(t, err)

	fleet := &Fleet{log: log}
	for _, ep := range []Endpoint{goodEp, badEp} {
		fleet.monitors = append(fleet.monitors, New(ep, factory(ep), opts))
	}

	runDone := make(chan error, 1)
	go func() { runDone <- fleet.Run(ctx) }()

	require.Eventually(t, func() bool {
		return fleet.monitors[0].Snapshot().Success >= 2 && fleet.monitors[1].State() == StateFailed
	}, 3*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-runDone)

	assert.Equal(t, StateTerminated, fleet.monitors[0].State())
	assert.Equal(t, StateFailed, fleet.monitors[1].State())
	assert.True(t, errors.IsCode(fleet.monitors[1].Err(), errors.ErrSSH))
	assert.Len(t, fleet.Failed(), 1)
	assert.Contains(t, fleet.Statuses()[1], "failed:")
	assert.True(t, log.Contains("warn", "monitor 1 (192.0.2.2) stopped"))
	assert.True(t, good.IsClosed())
}

func TestNewExecutorFactory(t *testing.T) {
	factory := NewExecutorFactory(time.Second, nil, logger.Noop())

	local := factory(Endpoint{Address: "192.0.2.1"})
	_, isLocal := local.(*probe.Local)
	assert.True(t, isLocal)

	relay := factory(Endpoint{Address: "192.0.2.1", Relay: &Relay{Host: "198.51.100.7", User: "ops"}})
	_, isRelay := relay.(*probe.Relay)
	assert.True(t, isRelay)
}
