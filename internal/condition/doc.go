// Package condition implements the per-condition state machine and its
// combinators.
//
// A Condition tracks whether its validity test holds (Idle or Met) and when
// that state began. On each tick it decides whether to fire by checking, in
// order, the focus gate, the consumption gate, the dwell gate and the
// cooldown gate. Four variants exist:
//
//   - Edge: a binary signal's pressed, press-started, released or
//     release-started transition.
//   - ValueCond: a continuous reading compared against a threshold.
//   - All: every child fired in the same tick, optionally in order.
//   - Any: the first child that fires.
//
// Evaluation never blocks and never notifies subscribers. The tick driver
// (or Poll) calls Notify with the fired arguments, so a child evaluated
// inside a combinator is silent.
package condition
