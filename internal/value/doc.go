// Package value provides the tagged reading types sampled from input
// devices and the comparators used by value conditions.
//
// This package has no internal imports. Every other package that handles a
// device reading goes through Value so that a threshold and the reading it
// is compared against can be checked for kind compatibility once, when a
// condition is constructed, rather than on every tick.
//
// Key constraints:
//   - Value is sealed: Scalar, Point, Vector2 and Bool are the only variants
//   - Variants are plain value types, so copying a Value never aliases state
//   - Ordering comparators on 2D values compare magnitudes
package value
