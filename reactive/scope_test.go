package reactive_test

import (
	"testing"

	"github.com/flexium/flexium-go/reactive"
	"github.com/stretchr/testify/assert"
)

// should return both the body's value and a working disposer
func TestRootReturnsValueAndDisposer(t *testing.T) {
	rs := newTestSystem(t)

	s := reactive.Signal(rs, 0)
	runs := 0
	got, dispose := reactive.Root(rs, func(dispose func()) int {
		reactive.Effect(rs, func() error {
			s.Value()
			runs++
			return nil
		})
		return 42
	})
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, runs)

	dispose()
	s.SetValue(1)
	assert.Equal(t, 1, runs)
}

// should stop re-running owned effects permanently after disposal
func TestDisposalIsTerminal(t *testing.T) {
	rs := newTestSystem(t)

	s := reactive.Signal(rs, 0)
	runs := 0
	_, dispose := reactive.Root(rs, func(dispose func()) any {
		reactive.Effect(rs, func() error {
			s.Value()
			runs++
			return nil
		})
		return nil
	})
	dispose()
	dispose() // idempotent

	s.SetValue(1)
	s.SetValue(2)
	assert.Equal(t, 1, runs)
}

// should dispose children in creation order and callbacks in reverse
func TestDisposalOrdering(t *testing.T) {
	rs := newTestSystem(t)

	var log []string
	_, dispose := reactive.Root(rs, func(dispose func()) any {
		reactive.Root(rs, func(dispose func()) any {
			rs.CurrentScope().OnDispose(func() { log = append(log, "child-a") })
			return nil
		})
		reactive.Root(rs, func(dispose func()) any {
			rs.CurrentScope().OnDispose(func() { log = append(log, "child-b") })
			return nil
		})
		rs.CurrentScope().OnDispose(func() { log = append(log, "own-1") })
		rs.CurrentScope().OnDispose(func() { log = append(log, "own-2") })
		return nil
	})

	dispose()
	assert.Equal(t, []string{"child-a", "child-b", "own-2", "own-1"}, log)
}

// should run effect cleanups before scope OnDispose callbacks in reverse creation order
func TestDisposalRunsEffectCleanups(t *testing.T) {
	rs := newTestSystem(t)

	var log []string
	_, dispose := reactive.Root(rs, func(dispose func()) any {
		reactive.Effect(rs, func() error {
			return rs.OnCleanup(func() { log = append(log, "cleanup-first") })
		})
		reactive.Effect(rs, func() error {
			return rs.OnCleanup(func() { log = append(log, "cleanup-second") })
		})
		return nil
	})

	dispose()
	assert.Equal(t, []string{"cleanup-second", "cleanup-first"}, log)
}

// should attach nested roots to the disposing parent
func TestNestedRootDisposedWithParent(t *testing.T) {
	rs := newTestSystem(t)

	s := reactive.Signal(rs, 0)
	innerRuns := 0
	_, disposeOuter := reactive.Root(rs, func(dispose func()) any {
		reactive.Root(rs, func(dispose func()) any {
			reactive.Effect(rs, func() error {
				s.Value()
				innerRuns++
				return nil
			})
			return nil
		})
		return nil
	})

	disposeOuter()
	s.SetValue(1)
	assert.Equal(t, 1, innerRuns)
}

// should run an OnDispose registered after disposal immediately
func TestOnDisposeAfterDisposalRunsImmediately(t *testing.T) {
	rs := newTestSystem(t)

	var scope *reactive.Scope
	_, dispose := reactive.Root(rs, func(dispose func()) any {
		scope = rs.CurrentScope()
		return nil
	})
	dispose()
	assert.True(t, scope.Disposed())

	ran := false
	scope.OnDispose(func() { ran = true })
	assert.True(t, ran)
}

// should not re-run an effect that was disposed while queued in a batch
func TestDisposeWhileQueuedInBatch(t *testing.T) {
	rs := newTestSystem(t)

	s := reactive.Signal(rs, 0)
	runs := 0
	_, dispose := reactive.Root(rs, func(dispose func()) any {
		reactive.Effect(rs, func() error {
			s.Value()
			runs++
			return nil
		})
		return nil
	})

	rs.Batch(func() {
		s.SetValue(1)
		dispose()
	})
	assert.Equal(t, 1, runs)
}

// should let a continuation captured before disposal fire afterwards as a plain no-op
func TestLateContinuationAfterDispose(t *testing.T) {
	rs := newTestSystem(t)

	src := reactive.Signal(rs, 0)
	out := reactive.Signal(rs, 0)
	runs := 0
	var resume func()
	_, dispose := reactive.Root(rs, func(dispose func()) any {
		reactive.Effect(rs, func() error {
			src.Value()
			runs++
			// stands in for an async callback completing after the
			// owning scope is long gone
			resume = func() {
				out.SetValue(src.Value() + 1)
			}
			return nil
		})
		return nil
	})
	assert.Equal(t, 1, runs)

	dispose()
	resume()

	// the late write itself lands, but the read did not re-subscribe
	// the disposed effect and nothing re-ran
	assert.Equal(t, 1, out.Value())
	assert.Equal(t, 1, runs)

	src.SetValue(5)
	assert.Equal(t, 1, runs)
}

// should expose the active scope to code running inside Root
func TestCurrentScope(t *testing.T) {
	rs := newTestSystem(t)

	outer := rs.CurrentScope()
	assert.NotNil(t, outer)

	var inner *reactive.Scope
	_, dispose := reactive.Root(rs, func(dispose func()) any {
		inner = rs.CurrentScope()
		return nil
	})
	defer dispose()

	assert.NotNil(t, inner)
	assert.NotEqual(t, outer.ID(), inner.ID())
	assert.Equal(t, outer.ID(), rs.CurrentScope().ID())
}
