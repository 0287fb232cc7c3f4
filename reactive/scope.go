package reactive

// Scope is a node in the ownership/disposal tree. Every effect belongs
// to exactly one scope and dies with it; scopes nest, and disposing a
// parent disposes the whole subtree. Signals and computeds are not
// owned: a computed nobody can reach anymore is simply garbage.
type Scope struct {
	id       uint64
	sys      *ReactiveSystem
	parent   *Scope
	children []*Scope
	effects  []*effectRunner
	cleanups []func()
	disposed bool
}

// Root creates a scope, runs fn inside it and returns fn's result along
// with the scope's disposer. Effects created during fn's synchronous
// execution attach to the new scope. The disposer is idempotent, and fn
// also receives it for self-disposal patterns.
//
// fn runs untracked: a root boundary never becomes a dependency of
// whatever computation happened to be active outside it.
func Root[T any](rs *ReactiveSystem, fn func(dispose func()) T) (T, func()) {
	s := &Scope{
		id:     rs.nextID(),
		sys:    rs,
		parent: rs.activeScope,
	}
	if s.parent == nil {
		s.parent = rs.root
	}
	s.parent.children = append(s.parent.children, s)

	prev := rs.activeScope
	rs.activeScope = s
	rs.PauseTracking()
	defer func() {
		rs.ResumeTracking()
		rs.activeScope = prev
	}()

	return fn(s.Dispose), s.Dispose
}

// CurrentScope returns the scope active at the call site. Outside every
// Root this is the system's root scope, which lives as long as the
// system itself.
func (rs *ReactiveSystem) CurrentScope() *Scope {
	if rs.activeScope != nil {
		return rs.activeScope
	}
	return rs.root
}

// ID returns the scope's node identity.
func (s *Scope) ID() uint64 { return s.id }

// Disposed reports whether Dispose has run.
func (s *Scope) Disposed() bool { return s.disposed }

// OnDispose registers fn to run when the scope is disposed, after its
// children and owned effects are gone. Registering on an already
// disposed scope runs fn immediately.
func (s *Scope) OnDispose(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Dispose tears the scope down exactly once: child scopes first,
// depth-first in creation order, then every owned effect's cleanup
// chain in reverse registration order, then the scope's own OnDispose
// callbacks in reverse order. Afterwards no notification can reach any
// node that lived here.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.unlinkChild(s)
	}

	children := s.children
	s.children = nil
	for _, child := range children {
		child.parent = nil // already unlinked wholesale
		child.Dispose()
	}

	effects := s.effects
	s.effects = nil
	for i := len(effects) - 1; i >= 0; i-- {
		effects[i].dispose()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	for _, in := range s.sys.inspectors {
		in.ScopeDisposed(s.id)
	}
}

func (s *Scope) unlinkEffect(e *effectRunner) {
	for i, x := range s.effects {
		if x == e {
			s.effects = append(s.effects[:i], s.effects[i+1:]...)
			return
		}
	}
}

func (s *Scope) unlinkChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
