package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guregu/null/v5"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

// sparklineGap marks a sample with no value.
const sparklineGap = ' '

// sparklineBlockRunes provides indexed access to block characters.
var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline draws the most recent width latencies. Levels are scaled
// between the smallest and largest valid value; invalid samples (lost
// probes) are drawn as gaps. The color follows the newest valid latency.
func RenderSparkline(data []null.Float, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	// Use only the most recent 'width' data points
	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal, ok := findMinMax(data)
	if !ok {
		return strings.Repeat(string(sparklineGap), len(data))
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal
	var last float64

	for _, v := range data {
		if !v.Valid {
			sb.WriteRune(sparklineGap)
			continue
		}
		last = v.Float64

		var level int
		if valueRange == 0 {
			// All values are the same, use middle level
			level = numLevels / 2
		} else {
			normalized := (v.Float64 - minVal) / valueRange
			level = int(normalized * float64(numLevels-1))
			if level < 0 {
				level = 0
			} else if level >= numLevels {
				level = numLevels - 1
			}
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	style := lipgloss.NewStyle().Foreground(LatencyColor(last))
	return style.Render(sb.String())
}

func findMinMax(data []null.Float) (minVal, maxVal float64, ok bool) {
	for _, v := range data {
		if !v.Valid {
			continue
		}
		if !ok {
			minVal, maxVal, ok = v.Float64, v.Float64, true
			continue
		}
		if v.Float64 < minVal {
			minVal = v.Float64
		}
		if v.Float64 > maxVal {
			maxVal = v.Float64
		}
	}
	return minVal, maxVal, ok
}
