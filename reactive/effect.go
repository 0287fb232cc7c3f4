package reactive

import (
	"fmt"
)

// ErrFn is an effect body. Returning a non-nil error routes it through
// the effect's error handling without touching the dependency graph.
type ErrFn func() error

// EffectOption configures a single effect.
type EffectOption func(*effectRunner)

// WithOnError gives the effect a local error handler. A handled failure
// never disturbs sibling effects or the enclosing flush.
func WithOnError(handler func(rec ErrorRecord)) EffectOption {
	return func(e *effectRunner) {
		e.onError = handler
	}
}

// effectRunner is a side-effecting subscriber. It runs once eagerly at
// creation and re-runs whenever its current dependency set changes.
type effectRunner struct {
	rs    *ReactiveSystem
	id    uint64
	fn    ErrFn
	state nodeState

	// queued is true while the effect sits in the scheduler's pending
	// set, so a subscriber dirtied twice in one batch is enqueued once.
	queued bool

	// disposed tombstones the effect: late notifications, cleanups and
	// re-subscriptions all become no-ops.
	disposed bool

	sources  sourceList
	cleanups []func()
	onError  func(rec ErrorRecord)
	scope    *Scope
}

// Effect creates an effect, runs it once synchronously to capture its
// initial dependency set, and returns its disposer. The disposer is
// idempotent. The effect attaches to the scope active at creation time,
// or to the system root scope when none is.
func Effect(rs *ReactiveSystem, fn ErrFn, opts ...EffectOption) (stop func()) {
	e := &effectRunner{
		rs: rs,
		id: rs.nextID(),
		fn: fn,
	}
	for _, opt := range opts {
		opt(e)
	}

	scope := rs.activeScope
	if scope == nil {
		scope = rs.root
	}
	e.scope = scope
	scope.effects = append(scope.effects, e)

	for _, in := range rs.inspectors {
		in.EffectCreated(e.id)
	}

	e.run()
	return e.dispose
}

func (e *effectRunner) nodeID() uint64 { return e.id }

func (e *effectRunner) markStale(st nodeState) {
	if e.disposed {
		return
	}
	if e.state < st {
		e.state = st
	}
	if !e.queued {
		e.queued = true
		e.rs.sched.enqueue(e)
	}
}

func (e *effectRunner) addSource(dep dependency) {
	e.sources.add(dep)
}

// settle decides during a flush whether a check-marked effect really
// needs to re-run, by refreshing its sources and seeing whether any of
// them upgrades it to dirty.
func (e *effectRunner) settle() {
	if e.disposed || e.state == stateClean {
		return
	}
	if e.state == stateCheck {
		for _, dep := range e.sources.deps {
			dep.refresh()
			if e.state == stateDirty {
				break
			}
		}
		if e.state != stateDirty {
			e.state = stateClean
			return
		}
	}
	e.run()
}

// run executes the effect body inside a fresh execution context: old
// cleanups first (reverse registration order), then a full rebuild of
// the dependency set from whatever the body actually reads this time.
func (e *effectRunner) run() {
	if e.disposed {
		return
	}
	e.state = stateClean
	e.runCleanups()
	e.sources.detach(e)

	// Anything created while the body runs belongs to this effect's
	// scope, not to whatever scope the flush happened to start under.
	prevScope := e.rs.activeScope
	e.rs.activeScope = e.scope
	defer func() { e.rs.activeScope = prevScope }()

	for _, in := range e.rs.inspectors {
		in.EffectRan(e.id, EffectStatusRunning)
	}

	err := e.invoke()
	if err != nil {
		for _, in := range e.rs.inspectors {
			in.EffectRan(e.id, EffectStatusError)
		}
		rec := newErrorRecord(KindEffectFailure, e.id, err)
		if e.onError != nil {
			e.onError(rec)
			return
		}
		e.rs.routeError(rec)
		return
	}
	for _, in := range e.rs.inspectors {
		in.EffectRan(e.id, EffectStatusIdle)
	}
}

// invoke runs the body with panic recovery. Dependencies captured
// before a throw stay registered, so a failing effect still re-runs
// when they change; cleanups registered past the throw point simply
// never existed.
func (e *effectRunner) invoke() (err error) {
	e.rs.withSubscriber(e, func() {
		defer func() {
			if r := recover(); r != nil {
				if rerr, ok := r.(error); ok {
					err = rerr
					return
				}
				err = fmt.Errorf("effect panic: %v", r)
			}
		}()
		err = e.fn()
	})
	return err
}

func (e *effectRunner) runCleanups() {
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		e.cleanups[i]()
	}
	e.cleanups = e.cleanups[:0]
}

// dispose runs the latest cleanup chain exactly once, detaches every
// subscription, unlinks the effect from its owning scope and tombstones
// it.
func (e *effectRunner) dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.runCleanups()
	e.sources.detach(e)
	if e.scope != nil {
		e.scope.unlinkEffect(e)
	}
}
