// Package ui provides the small terminal rendering pieces shared by the
// pingnodes dashboard.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Replies, low latency
//	ColorError     (red)    - Lost probes, high latency, failed monitors
//	ColorWarning   (yellow) - Elevated latency
//	ColorInfo      (cyan)   - Headers and accents
//	ColorMuted     (gray)   - Secondary text
//
// # Sparkline
//
// RenderSparkline draws recent latencies as block characters. Lost probes
// show as a gap so they stand out from slow replies:
//
//	ui.RenderSparkline(snap.Recent, 30)  // ▂▃▂ ▅▂▁
//
// # Glyphs
//
// RenderGlyphs colors a '!' / '.' history string, green and red.
package ui
