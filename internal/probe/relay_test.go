package probe

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	sshtesting "github.com/rileyhilliard/pingnodes/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relayCommand() Command {
	return Command{Family: FamilyV4, Address: "192.0.2.1", Timeout: 100 * time.Millisecond}
}

func openRelay(t *testing.T, clients ...*sshtesting.MockClient) (*Relay, *fakeDialer) {
	t.Helper()
	d := &fakeDialer{clients: clients}
	s, _ := newTestSession(d)
	r := NewRelay(s, relayCommand(), logger.Noop())
	require.NoError(t, r.Open(context.Background()))
	return r, d
}

func TestRelay_Success(t *testing.T) {
	client := sshtesting.NewMockClient("relay")
	client.SetCommandResponse("^ping ", sshtesting.CommandResponse{Stdout: []byte(replyOutput)})
	r, _ := openRelay(t, client)

	res := r.Probe(context.Background())

	assert.True(t, res.Outcome.OK())
	assert.Equal(t, 12.3, res.Outcome.Latency().Float64)
	assert.Equal(t, "64 bytes from 192.0.2.1: icmp_seq=1 ttl=57 time=12.3 ms", res.Raw)
	assert.Equal(t, []string{"uname -s", "ping -c 1 -W 1 192.0.2.1"}, client.Calls())
}

func TestRelay_UsesRelayPlatform(t *testing.T) {
	client := sshtesting.NewMockClient("relay")
	client.SetCommandResponse("uname -s", sshtesting.CommandResponse{Stdout: []byte("Darwin\n")})
	client.SetCommandResponse("^ping ", sshtesting.CommandResponse{Stdout: []byte(replyOutput)})
	r, _ := openRelay(t, client)

	r.Probe(context.Background())

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "ping -c 1 -W 100 192.0.2.1", calls[1])
}

func TestRelay_IgnoresExitStatus(t *testing.T) {
	client := sshtesting.NewMockClient("relay")
	client.SetCommandResponse("^ping ", sshtesting.CommandResponse{Stdout: []byte(replyOutput), ExitCode: 1})
	r, _ := openRelay(t, client)

	assert.True(t, r.Probe(context.Background()).Outcome.OK())
}

func TestRelay_Unreachable(t *testing.T) {
	client := sshtesting.NewMockClient("relay")
	client.SetCommandResponse("^ping ", sshtesting.CommandResponse{Stdout: []byte(unreachableOutput)})
	r, _ := openRelay(t, client)

	res := r.Probe(context.Background())
	assert.False(t, res.Outcome.OK())
	assert.Empty(t, res.Raw)
}

func TestRelay_OpenFailure(t *testing.T) {
	d := &fakeDialer{}
	s, _ := newTestSession(d)
	r := NewRelay(s, relayCommand(), logger.Noop())

	err := r.Open(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
}

func TestRelay_TransportFaultBecomesFailure(t *testing.T) {
	first := sshtesting.NewMockClient("relay")
	first.SetCommandResponse("^ping ", sshtesting.CommandResponse{Error: stderrors.New("EOF")})
	second := sshtesting.NewMockClient("relay")
	second.SetCommandResponse("^ping ", sshtesting.CommandResponse{Stdout: []byte(replyOutput)})
	r, _ := openRelay(t, first, second)

	res := r.Probe(context.Background())
	assert.False(t, res.Outcome.OK())
	assert.Error(t, res.Err)

	// The next probe redials and succeeds.
	res = r.Probe(context.Background())
	assert.True(t, res.Outcome.OK())
}

func TestRelay_RepeatedTimeoutsForceRedial(t *testing.T) {
	stuck := sshtesting.NewMockClient("relay")
	stuck.SetCommandResponse("^ping ", sshtesting.CommandResponse{Delay: time.Hour})
	r, _ := openRelay(t, stuck)
	r.command.Timeout = time.Millisecond

	ctx := context.Background()
	for i := 0; i < maxConsecutiveTimeouts; i++ {
		res := r.Probe(ctx)
		assert.False(t, res.Outcome.OK())
	}

	assert.True(t, stuck.IsClosed())
	assert.False(t, connected(r.session))
}

func TestRelay_Close(t *testing.T) {
	client := sshtesting.NewMockClient("relay")
	r, _ := openRelay(t, client)

	require.NoError(t, r.Close())
	assert.True(t, client.IsClosed())
}
