package probe

import (
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/rileyhilliard/pingnodes/internal/errors"
)

// ErrNoLatency is the cause of every latency parse failure.
var ErrNoLatency = stderrors.New("no latency in ping output")

// Latency markers. Windows prints "time<1ms" for sub-millisecond replies.
var latencyMarkers = []string{"time=", "time<"}

// ParseLatency extracts the round trip time in milliseconds from a ping
// result line such as
//
//	64 bytes from 192.0.2.1: icmp_seq=1 ttl=57 time=12.3 ms
//
// The value is the text between the marker and the next "ms".
func ParseLatency(line string) (float64, error) {
	start := -1
	for _, marker := range latencyMarkers {
		if i := strings.Index(line, marker); i >= 0 {
			start = i + len(marker)
			break
		}
	}
	if start < 0 {
		return 0, parseError(line, "no time= marker")
	}

	end := strings.Index(line[start:], "ms")
	if end < 0 {
		return 0, parseError(line, "no ms unit after time=")
	}

	raw := strings.TrimSpace(line[start : start+end])
	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, parseError(line, "latency "+strconv.Quote(raw)+" is not a number")
	}
	return ms, nil
}

func parseError(line, reason string) error {
	return errors.WrapWithCode(ErrNoLatency, errors.ErrParse,
		"Couldn't read latency from "+strconv.Quote(line)+": "+reason, "")
}

// ResultLine picks the per-packet result line out of ping's stdout. It
// prefers the first line carrying a latency marker and falls back to the
// second line, which is where ping puts the reply on every platform we
// target. Empty output yields "".
func ResultLine(output string) string {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	for _, line := range lines {
		if hasLatencyMarker(line) {
			return strings.TrimSpace(line)
		}
	}
	if len(lines) > 1 {
		return strings.TrimSpace(lines[1])
	}
	return ""
}

func hasLatencyMarker(line string) bool {
	for _, marker := range latencyMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
