package reactive

import (
	"sync"

	"github.com/petermattis/goid"
)

// defaultSystems maps goroutine ID to that goroutine's default system.
var defaultSystems sync.Map

// Default returns the calling goroutine's default ReactiveSystem,
// creating one on first use. The returned system has no uncaught-error
// handler, so unhandled effect failures panic.
//
// This is a convenience for programs that live on one goroutine; the
// system itself is still single-threaded and must not be handed to
// other goroutines.
func Default() *ReactiveSystem {
	gid := goid.Get()
	if v, ok := defaultSystems.Load(gid); ok {
		return v.(*ReactiveSystem)
	}
	rs := CreateReactiveSystem(nil)
	defaultSystems.Store(gid, rs)
	return rs
}

// ResetDefault discards the calling goroutine's default system, if any.
// Useful in tests and in worker pools that recycle goroutines.
func ResetDefault() {
	defaultSystems.Delete(goid.Get())
}
