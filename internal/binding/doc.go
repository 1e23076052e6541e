// Package binding loads declarative condition files and builds the
// conditions they describe.
//
// A bindings file lists the device families to configure and the tracked
// conditions, in priority order. Three formats decode into the same File:
//
//   - CUE (.cue), unified with an embedded schema before decoding
//   - YAML (.yaml, .yml)
//   - TOML (.toml)
//
// Validate reports every rule violation with an E1xx code. Build validates
// and then constructs the conditions against a device hub; construction
// errors carry the failing spec's field path.
package binding
