// Package dashboard renders the live status of a pingnodes run, either as a
// full-screen Bubble Tea program or as plain status lines.
package dashboard

import (
	"context"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// DebugLogFile receives log output while the full-screen dashboard owns
// the terminal.
const DebugLogFile = "pingnodes-debug.log"

// RunOptions configures the display.
type RunOptions struct {
	Interval time.Duration
	// Plain forces status lines even on a terminal.
	Plain bool
	// Out defaults to os.Stdout.
	Out *os.File
}

// Run displays source until ctx is done or the user quits. Quitting from
// the dashboard calls cancel so the monitors stop too. On a non-terminal
// output, or with Plain set, status lines are printed instead.
func Run(ctx context.Context, cancel context.CancelFunc, source Source, opts RunOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}

	isTTY := term.IsTerminal(int(out.Fd()))
	if opts.Plain || !isTTY {
		return NewPlain(source, interval, out, isTTY).Run(ctx)
	}

	logFile, err := tea.LogToFile(DebugLogFile, "pingnodes")
	if err == nil {
		defer func() {
			log.SetOutput(os.Stderr)
			logFile.Close()
		}()
	}

	program := tea.NewProgram(
		NewModel(source, interval),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	)

	_, err = program.Run()
	// The user quit (or the program ended): stop the monitors.
	cancel()
	if err != nil && ctx.Err() != nil {
		// Cancelled from outside, e.g. SIGINT.
		err = nil
	}
	if err == nil {
		// Leave the last frame on the normal screen.
		_ = NewPlain(source, interval, out, false).Render()
	}
	return err
}
