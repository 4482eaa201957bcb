// Package probe runs single reachability probes against an endpoint and
// classifies their output.
//
// An Executor runs one ping per call to Probe, either as a local process or
// over a persistent SSH session to a relay host. Every fault an executor hits
// while probing is folded into a failed Outcome; only relay session setup
// reports an error of its own.
package probe
