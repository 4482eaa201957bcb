package monitor

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v5"
	"github.com/rileyhilliard/pingnodes/internal/errors"
)

// MissingValue stands in for a latency that doesn't exist yet.
const MissingValue = "-"

// FormatStatus renders the one-line status of an endpoint:
//
//	addr<TAB>S/F/T<TAB>(PP.PP%)<TAB>GLYPHS<TAB>last / min / avg / max
//
// When failure is set the latency column is replaced by its reason.
func FormatStatus(address string, snap Snapshot, failure error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\t%d/%d/%d\t(%.2f%%)\t%s\t",
		address, snap.Success, snap.Failure, snap.Total, snap.SuccessRate()*100, snap.Glyphs)

	if failure != nil {
		b.WriteString("failed: ")
		b.WriteString(errors.Short(failure))
		return b.String()
	}

	b.WriteString(strings.Join([]string{
		FormatLatency(snap.Last),
		FormatLatency(snap.Min),
		FormatLatency(snap.Avg),
		FormatLatency(snap.Max),
	}, " / "))
	return b.String()
}

// FormatLatency prints a latency with one decimal place, or MissingValue.
func FormatLatency(v null.Float) string {
	if !v.Valid {
		return MissingValue
	}
	return fmt.Sprintf("%.1f", v.Float64)
}
