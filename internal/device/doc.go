// Package device holds the per-family polling adapters that conditions
// sample.
//
// An adapter exposes only what the condition engine needs: the current and
// previous sample of each signal and a consumption map keyed by signal. The
// consumption map is owned by the adapter instance, never by a process-wide
// table, so two hubs never share arbitration state.
//
// Reading real hardware is not this package's job. Producers (a window
// message pump, a gamepad poller, a speech recogniser callback) push readings
// in through Set, Press, Release and Pulse.
package device
