// Package reactive is a fine-grained reactive dependency graph: signals
// hold mutable state, computeds derive cached values from them, and
// effects re-run side effects when anything they read changes.
//
// Dependency tracking is automatic and dynamic. Reading a signal while a
// computed or effect is executing subscribes that subscriber to the
// signal; the subscription set is rebuilt from scratch on every run, so a
// branch that stops reading a signal stops reacting to it.
//
// Propagation is push-dirty, pull-value. A write marks subscribers stale
// and schedules dirty effects, but computeds only recompute when they are
// next read. Writes inside a Batch coalesce into a single flush, and a
// flush always runs to a fixed point before control returns to the
// caller.
//
// The engine is single-threaded and cooperative. A ReactiveSystem must
// only be used from one goroutine at a time; tracking is strictly
// synchronous, so any value read after an effect body suspends (for
// example on a channel receive in a spawned goroutine) is not tracked.
// That cutoff is part of the contract, not an accident. Disposing a
// scope tombstones its effects, so a continuation that arrives after
// disposal is a no-op rather than a resurrection.
package reactive
