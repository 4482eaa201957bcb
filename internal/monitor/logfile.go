package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/probe"
)

// TimestampLayout is used for log file names and log line prefixes.
const TimestampLayout = "2006-01-02_15-04-05"

// FailureMarker is logged in place of a result line for failed probes.
const FailureMarker = "-----"

// LogFile is the per-endpoint, per-run probe log. Each record is one line
// written with a single Write on an append-only file.
type LogFile struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	closed bool
}

// LogPath returns <dir>/<start>_<index>.log.
func LogPath(dir string, start time.Time, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.log", start.Format(TimestampLayout), index))
}

// OpenLogFile creates the log directory if needed and opens the log for the
// endpoint at index. An existing file for the same second is appended to.
func OpenLogFile(dir string, start time.Time, index int) (*LogFile, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLog,
			"Can't create log directory "+dir,
			"Check your permissions or pick another --log-dir.")
	}

	path := LogPath(dir, start, index)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLog,
			"Can't open log file "+path,
			"Check your permissions or pick another --log-dir.")
	}

	return &LogFile{file: f, path: path}, nil
}

// Path returns the file's path.
func (l *LogFile) Path() string {
	return l.path
}

// Record writes one probe result stamped with at.
func (l *LogFile) Record(at time.Time, res probe.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errors.New(errors.ErrLog,
			"Log file is closed",
			"This is unexpected - the monitor wrote after shutting down.")
	}

	if _, err := l.file.WriteString(FormatLogLine(at, res)); err != nil {
		return errors.WrapWithCode(err, errors.ErrLog,
			"Can't write log file "+l.path,
			"Check free disk space.")
	}
	return nil
}

// Close closes the file. Closing twice is a no-op.
func (l *LogFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// FormatLogLine renders a record, newline included.
func FormatLogLine(at time.Time, res probe.Result) string {
	body := FailureMarker
	if res.Outcome.OK() {
		body = sanitizeLine(res.Raw)
	}
	return at.Format(TimestampLayout) + " " + body + "\n"
}

// ParseLogLine splits a record back into its timestamp and body. ok is
// false for malformed lines. A failure record has body FailureMarker.
func ParseLogLine(line string) (at time.Time, body string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	stamp, body, found := strings.Cut(line, " ")
	if !found {
		return time.Time{}, "", false
	}
	at, err := time.ParseInLocation(TimestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, "", false
	}
	return at, body, true
}

// sanitizeLine keeps a record on one line.
func sanitizeLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
