package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// WriteableSignal is the atomic reactive cell: a value, a version
// counter that strictly increases on every accepted write, and the set
// of subscribers currently reading it. The signal never owns its
// subscribers; they detach themselves when they stop reading it.
type WriteableSignal[T any] struct {
	rs      *ReactiveSystem
	id      uint64
	value   T
	version uint64
	equals  func(a, b T) bool
	subs    mapset.Set[subscriber]
}

// Signal creates a writeable signal with == as its equality check.
func Signal[T comparable](rs *ReactiveSystem, initial T) *WriteableSignal[T] {
	return SignalEq(rs, initial, func(a, b T) bool { return a == b })
}

// SignalEq creates a writeable signal with a custom equality check.
// equals deciding two values are the same suppresses the version bump
// and all notifications. A nil equals treats every write as a change.
func SignalEq[T any](rs *ReactiveSystem, initial T, equals func(a, b T) bool) *WriteableSignal[T] {
	s := &WriteableSignal[T]{
		rs:      rs,
		id:      rs.nextID(),
		value:   initial,
		version: 1,
		equals:  equals,
		subs:    mapset.NewThreadUnsafeSet[subscriber](),
	}
	for _, in := range rs.inspectors {
		in.SignalCreated(s.id)
	}
	return s
}

func (s *WriteableSignal[T]) nodeID() uint64                      { return s.id }
func (s *WriteableSignal[T]) refresh()                            {} // signals are always current
func (s *WriteableSignal[T]) subscribers() mapset.Set[subscriber] { return s.subs }

// Value returns the current value. Called during a computed or effect
// run it also registers the subscription; called outside any execution
// context it is a plain read.
func (s *WriteableSignal[T]) Value() T {
	s.rs.track(s)
	return s.value
}

// Peek returns the current value without ever subscribing.
func (s *WriteableSignal[T]) Peek() T {
	return s.value
}

// Version returns the signal's version counter.
func (s *WriteableSignal[T]) Version() uint64 {
	return s.version
}

// SetValue writes v. An equal value is a no-op. A changed value bumps
// the version, marks subscribers dirty and either flushes immediately or
// defers to the enclosing batch. The value itself is visible to reads in
// the same synchronous turn regardless of batching.
func (s *WriteableSignal[T]) SetValue(v T) {
	if s.equals != nil && s.equals(s.value, v) {
		return
	}
	if s.rs.derivationDepth > 0 {
		s.rs.routeError(newErrorRecord(KindWriteDuringDerivation, s.id, ErrWriteDuringDerivation))
	}
	s.value = v
	s.version++
	for _, in := range s.rs.inspectors {
		in.SignalUpdated(s.id, s.version)
	}
	s.subs.Each(func(sub subscriber) bool {
		sub.markStale(stateDirty)
		return false
	})
	s.rs.sched.writeHappened(s.rs)
}

// SetValueFunc writes the result of update applied to the current
// value. Inside a batch the current value already reflects earlier
// writes from the same batch, never a stale snapshot.
func (s *WriteableSignal[T]) SetValueFunc(update func(prev T) T) {
	s.SetValue(update(s.value))
}
