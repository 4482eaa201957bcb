package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muesli/termenv"
)

// Plain prints the raw status lines once per interval, clearing the screen
// first when the output is a terminal.
type Plain struct {
	source   Source
	interval time.Duration
	out      io.Writer
	term     *termenv.Output
}

// NewPlain creates a plain renderer writing to out. clear enables clearing
// the screen between frames.
func NewPlain(source Source, interval time.Duration, out io.Writer, clear bool) *Plain {
	p := &Plain{source: source, interval: interval, out: out}
	if clear {
		p.term = termenv.NewOutput(out)
	}
	return p
}

// Render writes one frame.
func (p *Plain) Render() error {
	if p.term != nil {
		p.term.ClearScreen()
	}
	lines := p.source.Statuses()
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(p.out, strings.Join(lines, "\n"))
	return err
}

// Run renders immediately and then once per interval until ctx is done, with
// a final frame on the way out.
func (p *Plain) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Render(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return p.Render()
		case <-ticker.C:
		}
	}
}
