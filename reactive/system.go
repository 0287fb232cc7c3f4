package reactive

// OnErrorFunc receives every error that escapes per-effect handling.
// Passing nil to CreateReactiveSystem means such errors panic, since a
// failure nobody observes must still be process-visible.
type OnErrorFunc func(rec ErrorRecord)

// ReactiveSystem owns one reactive graph: the execution-context stack
// used for automatic dependency capture, the batch/flush scheduler, the
// root ownership scope and the error channel. Each system is
// single-threaded; create one per goroutine (or use Default).
type ReactiveSystem struct {
	idCounter uint64

	// activeSub is the subscriber currently executing, if any. Reads
	// register against it. nil means reads are untracked.
	activeSub subscriber

	// pauseStack holds subscribers displaced by PauseTracking.
	pauseStack []subscriber

	// derivationDepth is > 0 while a computed getter is running; writes
	// inside that window are reported as derivation-purity violations.
	derivationDepth int

	activeScope *Scope
	root        *Scope

	sched   scheduler
	onError OnErrorFunc

	inspectors []Inspector
}

// SystemOption configures a ReactiveSystem at creation time.
type SystemOption func(*ReactiveSystem)

// WithMaxFlushPasses overrides the fixed-point guard. A flush that still
// has dirty effects after n passes is aborted with ErrFlushOverrun.
func WithMaxFlushPasses(n int) SystemOption {
	return func(rs *ReactiveSystem) {
		if n > 0 {
			rs.sched.maxPasses = n
		}
	}
}

// CreateReactiveSystem builds a new, empty reactive graph. onError
// receives errors that no effect-local handler claimed; it may be nil.
func CreateReactiveSystem(onError OnErrorFunc, opts ...SystemOption) *ReactiveSystem {
	rs := &ReactiveSystem{onError: onError}
	rs.sched.maxPasses = defaultMaxFlushPasses
	rs.root = &Scope{id: rs.nextID(), sys: rs}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *ReactiveSystem) nextID() uint64 {
	rs.idCounter++
	return rs.idCounter
}

// track registers dep against the currently executing subscriber, if
// any. Reads outside any execution context create no subscription.
func (rs *ReactiveSystem) track(dep dependency) {
	if rs.activeSub == nil {
		return
	}
	dep.subscribers().Add(rs.activeSub)
	rs.activeSub.addSource(dep)
}

// withSubscriber runs fn with sub as the active execution context,
// restoring the previous context afterwards even if fn panics.
func (rs *ReactiveSystem) withSubscriber(sub subscriber, fn func()) {
	prev := rs.activeSub
	rs.activeSub = sub
	defer func() { rs.activeSub = prev }()
	fn()
}

// PauseTracking suspends dependency capture until ResumeTracking. Calls
// nest; each pause must be paired with a resume.
func (rs *ReactiveSystem) PauseTracking() {
	rs.pauseStack = append(rs.pauseStack, rs.activeSub)
	rs.activeSub = nil
}

// ResumeTracking restores the execution context saved by the matching
// PauseTracking call.
func (rs *ReactiveSystem) ResumeTracking() {
	last := len(rs.pauseStack) - 1
	rs.activeSub = rs.pauseStack[last]
	rs.pauseStack = rs.pauseStack[:last]
}

// Untrack runs fn with no active execution context and returns its
// result. Reads inside fn create no subscriptions.
func Untrack[T any](rs *ReactiveSystem, fn func() T) T {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	return fn()
}

// OnCleanup registers fn to run before the currently executing effect
// re-runs and when it is disposed, in reverse registration order.
// Returns ErrCleanupOutsideEffect when no effect is executing; computed
// getters are pure and may not register cleanup.
func (rs *ReactiveSystem) OnCleanup(fn func()) error {
	e, ok := rs.activeSub.(*effectRunner)
	if !ok {
		return ErrCleanupOutsideEffect
	}
	e.cleanups = append(e.cleanups, fn)
	return nil
}

// routeError delivers rec to the system handler, falling back to a
// panic so that an unhandled failure is never silently swallowed.
func (rs *ReactiveSystem) routeError(rec ErrorRecord) {
	if rs.onError != nil {
		rs.onError(rec)
		return
	}
	panic(rec.Err)
}
