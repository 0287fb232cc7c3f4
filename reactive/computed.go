package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// ReadonlySignal is a cached derivation over signals and other
// computeds. It is lazy: a write to a dependency only marks it stale,
// and the getter re-runs the next time the value is read. A clean read
// costs nothing but the cache lookup.
//
// Getters are contractually pure: no signal writes, no cleanup
// registration. The getter receives the previous cached value, which is
// the zero value on the first run.
type ReadonlySignal[T any] struct {
	rs      *ReactiveSystem
	id      uint64
	getter  func(oldValue T) T
	value   T
	version uint64
	equals  func(a, b T) bool
	state   nodeState

	// computing guards against cycles: reading a computed while its own
	// getter is on the stack is fatal.
	computing bool

	sources sourceList
	subs    mapset.Set[subscriber]
}

// Computed creates a lazy derivation with == as its equality check.
// The getter does not run until the first read.
func Computed[T comparable](rs *ReactiveSystem, getter func(oldValue T) T) *ReadonlySignal[T] {
	return ComputedEq(rs, getter, func(a, b T) bool { return a == b })
}

// ComputedEq creates a lazy derivation with a custom equality check
// deciding whether a recomputation actually changed the value. A nil
// equals treats every recomputation as a change.
func ComputedEq[T any](rs *ReactiveSystem, getter func(oldValue T) T, equals func(a, b T) bool) *ReadonlySignal[T] {
	return &ReadonlySignal[T]{
		rs:     rs,
		id:     rs.nextID(),
		getter: getter,
		equals: equals,
		state:  stateDirty,
		subs:   mapset.NewThreadUnsafeSet[subscriber](),
	}
}

func (c *ReadonlySignal[T]) nodeID() uint64                      { return c.id }
func (c *ReadonlySignal[T]) subscribers() mapset.Set[subscriber] { return c.subs }

// Value returns the derived value, recomputing first if any dependency
// changed since the last read. Like a signal read it registers the
// active subscriber, so computeds chain to arbitrary depth.
func (c *ReadonlySignal[T]) Value() T {
	c.refresh()
	c.rs.track(c)
	return c.value
}

// Peek returns the derived value without subscribing. It still
// recomputes if stale; laziness, not staleness, is what Peek skips.
func (c *ReadonlySignal[T]) Peek() T {
	c.refresh()
	return c.value
}

// Version returns the computed's version counter, bumped only when a
// recomputation produced a different value.
func (c *ReadonlySignal[T]) Version() uint64 {
	c.refresh()
	return c.version
}

func (c *ReadonlySignal[T]) markStale(st nodeState) {
	if c.state >= st {
		return
	}
	wasClean := c.state == stateClean
	c.state = st
	if wasClean {
		// Downstream can't know yet whether our value will actually
		// change, so they only get a verify-first marker.
		c.subs.Each(func(sub subscriber) bool {
			sub.markStale(stateCheck)
			return false
		})
	}
}

func (c *ReadonlySignal[T]) addSource(dep dependency) {
	c.sources.add(dep)
}

// refresh settles the computed to a clean state. A check state means
// some transitive dependency changed; refreshing the sources in read
// order either upgrades us to dirty (a direct dependency really did
// change value) or proves the cache is still valid without running the
// getter at all. This is what makes the diamond shape glitch-free: by
// the time any reader observes us, every dependency has settled.
func (c *ReadonlySignal[T]) refresh() {
	if c.computing {
		panic(ErrCyclicDependency)
	}
	if c.state == stateCheck {
		for _, dep := range c.sources.deps {
			dep.refresh()
			if c.state == stateDirty {
				break
			}
		}
	}
	if c.state == stateDirty {
		c.recompute()
	}
	c.state = stateClean
}

func (c *ReadonlySignal[T]) recompute() {
	c.computing = true
	c.rs.derivationDepth++
	defer func() {
		c.rs.derivationDepth--
		c.computing = false
		if c.rs.derivationDepth == 0 {
			// Pick up any (contract-violating) writes the getter made.
			c.rs.sched.writeHappened(c.rs)
		}
	}()

	c.sources.detach(c)

	old := c.value
	var next T
	c.rs.withSubscriber(c, func() {
		next = c.getter(old)
	})
	c.value = next

	if c.version == 0 || c.equals == nil || !c.equals(old, next) {
		c.version++
		// Only a real value change dirties downstream; otherwise their
		// check markers simply resolve back to clean.
		c.subs.Each(func(sub subscriber) bool {
			sub.markStale(stateDirty)
			return false
		})
	}
}
