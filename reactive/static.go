package reactive

// Source is any readable node usable as an explicit dependency in the
// Static variants: a WriteableSignal or a ReadonlySignal.
type Source interface {
	observe()
}

func (s *WriteableSignal[T]) observe() { _ = s.Value() }
func (c *ReadonlySignal[T]) observe()  { _ = c.Value() }

// StaticEffect is the explicit-dependency-array compatibility wrapper
// over Effect: the dependency set is fixed to deps, and the body runs
// untracked so nothing it happens to read can sneak into the set.
func StaticEffect(rs *ReactiveSystem, fn ErrFn, deps ...Source) (stop func()) {
	body := func() error { return fn() }
	return Effect(rs, func() error {
		for _, dep := range deps {
			dep.observe()
		}
		return Untrack(rs, body)
	})
}

// StaticComputed is the explicit-dependency-array wrapper over
// Computed: it recomputes exactly when one of deps changes, regardless
// of what the getter reads.
func StaticComputed[T comparable](rs *ReactiveSystem, getter func(oldValue T) T, deps ...Source) *ReadonlySignal[T] {
	return Computed(rs, func(oldValue T) T {
		for _, dep := range deps {
			dep.observe()
		}
		return Untrack(rs, func() T { return getter(oldValue) })
	})
}
