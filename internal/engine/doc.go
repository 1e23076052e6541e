// Package engine drives condition evaluation one tick at a time.
//
// ARCHITECTURE:
//
// Single-Writer Tick Loop:
// All evaluation happens in one goroutine, the one calling Tick (directly
// or through Run). Input producers stage readings on device adapters from
// any goroutine; those readings become visible only at the next Refresh,
// which Tick performs before evaluating anything.
//
// Tick Flow:
//  1. Clock.Next() issues the frame number
//  2. TimeSource and FocusSource are read once
//  3. Every device adapter is refreshed (previous = current, current = staged)
//  4. Deferred registry mutations are applied
//  5. The registry is iterated in position order; each condition is
//     evaluated with its own consumption settings and, if it fired, its
//     event gets an ID and is dispatched to the condition's subscribers
//
// Position is priority. Conditions earlier in the registry see a signal
// before it is consumed by conditions later in it.
//
// Registry mutation from inside a fire handler is detected and reported as
// a CONCURRENT_MODIFICATION runtime error. Handlers that need to add or
// remove conditions call Defer.
package engine
