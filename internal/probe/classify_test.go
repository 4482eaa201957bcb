package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	replyOutput = "PING 192.0.2.1 (192.0.2.1) 56(84) bytes of data.\n" +
		"64 bytes from 192.0.2.1: icmp_seq=1 ttl=57 time=12.3 ms\n"
	unreachableOutput = "PING 192.0.2.1 (192.0.2.1) 56(84) bytes of data.\n" +
		"From 192.0.2.254 icmp_seq=1 Destination Host Unreachable\n"
	noLatencyOutput = "PING 192.0.2.1 (192.0.2.1) 56(84) bytes of data.\n" +
		"64 bytes from 192.0.2.1: icmp_seq=1 ttl=57\n"
)

func TestExitStatusClassifier(t *testing.T) {
	c := ExitStatusClassifier{}

	t.Run("success", func(t *testing.T) {
		v := c.Classify(replyOutput, 0)
		require.NoError(t, v.Err)
		assert.True(t, v.Outcome.OK())
		assert.Equal(t, 12.3, v.Outcome.Latency().Float64)
		assert.Equal(t, "64 bytes from 192.0.2.1: icmp_seq=1 ttl=57 time=12.3 ms", v.Line)
	})

	t.Run("nonzero exit fails even with a reply", func(t *testing.T) {
		v := c.Classify(replyOutput, 1)
		assert.False(t, v.Outcome.OK())
		assert.Empty(t, v.Line)
		assert.NoError(t, v.Err)
	})

	t.Run("exit 0 without latency is downgraded", func(t *testing.T) {
		v := c.Classify(noLatencyOutput, 0)
		assert.False(t, v.Outcome.OK())
		assert.ErrorIs(t, v.Err, ErrNoLatency)
	})
}

func TestTextClassifier(t *testing.T) {
	c := TextClassifier{}

	tests := []struct {
		name     string
		stdout   string
		exitCode int
		ok       bool
		parseErr bool
	}{
		{"reply", replyOutput, 0, true, false},
		{"reply ignores exit status", replyOutput, 1, true, false},
		{"empty output", "", 0, false, false},
		{"header only", "PING 192.0.2.1 (192.0.2.1) 56(84) bytes of data.\n", 0, false, false},
		{"unreachable", unreachableOutput, 0, false, false},
		{"unreachable lowercase", "PING x\nnetwork is unreachable\n", 2, false, false},
		{"reply without latency", noLatencyOutput, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.stdout, tt.exitCode)
			assert.Equal(t, tt.ok, v.Outcome.OK())
			if tt.parseErr {
				assert.ErrorIs(t, v.Err, ErrNoLatency)
			} else {
				assert.NoError(t, v.Err)
			}
		})
	}
}
