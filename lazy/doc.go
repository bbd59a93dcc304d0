// Package lazy provides process-wide, lazily-initialized storage cells.
//
// A Slot defers running its producer until the first call to Get, and
// guarantees the producer runs at most once for the lifetime of the slot
// no matter how many goroutines race on first access.
//
// CONTRACT:
//
// Exactly-Once Execution:
// The producer runs at most once. Under contention exactly one caller
// claims the initializing role; every other caller blocks until that
// initialization completes and then shares its result (single-flight).
//
// Publication:
// All effects of the producer happen before any Get return that observes
// the initialized state. Callers never need synchronization of their own
// beyond calling Get.
//
// Poisoning:
// If the producer panics, the slot is poisoned: the panic value is
// recorded and every subsequent Get panics with the same *PoisonError.
// A poisoned slot never re-runs its producer. This makes producer failure
// deterministic rather than letting the slot retry with an ambiguous
// partial state.
//
// Slots are independent. Accessing one slot never triggers or blocks on
// another slot's initialization.
package lazy
