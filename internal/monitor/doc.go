// Package monitor runs the per-endpoint probe loops of a pingnodes run.
//
// # Key Components
//
//	Endpoint  - A validated address, optionally reached through a relay
//	Monitor   - Probes one endpoint once per interval and keeps its Stats
//	Stats     - Running counts and latencies, read through Snapshot copies
//	History   - Ring buffer of recent outcomes for glyphs and sparklines
//	LogFile   - One append-only log per endpoint per run
//	Fleet     - Validates all endpoints, then runs one Monitor each
//
// # Lifecycle
//
// A Monitor opens its log file, then its executor (for relays this dials the
// SSH session), and only then starts probing. If either step fails the
// monitor ends in StateFailed and the rest of the fleet carries on. Once
// running, every probe fault is recorded as a failed outcome; the loop only
// stops when its context is cancelled.
//
// # Status line
//
//	192.0.2.1	2/1/3	(66.67%)	!.!	30.0 / 10.0 / 20.0 / 30.0
//
// The columns are success/failure/total counts, the success rate, the last
// outcomes as '!' and '.', and last / min / avg / max latency in ms.
package monitor
