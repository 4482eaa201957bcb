package probe

import "github.com/guregu/null/v5"

// Glyphs used in the per-endpoint success history.
const (
	GlyphSuccess = '!'
	GlyphFailure = '.'
)

// Outcome is the result of one probe: a success with a latency in
// milliseconds, or a failure with no latency at all.
type Outcome struct {
	ok      bool
	latency null.Float
}

// Success returns a successful outcome with the given latency in ms.
func Success(ms float64) Outcome {
	return Outcome{ok: true, latency: null.FloatFrom(ms)}
}

// Failure returns a failed outcome.
func Failure() Outcome {
	return Outcome{}
}

// OK reports whether the probe got an answer.
func (o Outcome) OK() bool {
	return o.ok
}

// Latency is valid only for successful outcomes.
func (o Outcome) Latency() null.Float {
	return o.latency
}

// Glyph returns '!' for a success and '.' for a failure.
func (o Outcome) Glyph() byte {
	if o.ok {
		return GlyphSuccess
	}
	return GlyphFailure
}

func (o Outcome) String() string {
	return string(o.Glyph())
}
