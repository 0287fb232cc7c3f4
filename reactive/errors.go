package reactive

import (
	"errors"
	"fmt"
	"time"
)

// ErrCyclicDependency is the panic value raised when a computed ends up
// reading itself, directly or through other computeds. A cycle is a
// configuration error; evaluation fails fast instead of recursing.
var ErrCyclicDependency = errors.New("reactive: cyclic dependency between computeds")

// ErrCleanupOutsideEffect is returned by OnCleanup when no effect is
// currently executing.
var ErrCleanupOutsideEffect = errors.New("reactive: cleanup registered outside an executing effect")

// ErrWriteDuringDerivation reports a signal write that happened inside a
// computed getter. The write is still applied, but derivations are
// contractually pure and the violation is surfaced through the error
// channel so the caller can find it.
var ErrWriteDuringDerivation = errors.New("reactive: signal written during a computed derivation")

// ErrFlushOverrun reports a flush that failed to reach a fixed point
// within the configured pass budget, which means some effect keeps
// dirtying a dependency of another. The flush is aborted.
var ErrFlushOverrun = errors.New("reactive: flush did not stabilize, effects keep re-dirtying each other")

// ErrorKind classifies an ErrorRecord.
type ErrorKind uint8

const (
	// KindEffectFailure is an error (or recovered panic) from an effect
	// body.
	KindEffectFailure ErrorKind = iota + 1
	// KindWriteDuringDerivation is a purity violation inside a computed.
	KindWriteDuringDerivation
	// KindFlushOverrun is an aborted, non-stabilizing flush.
	KindFlushOverrun
)

func (k ErrorKind) String() string {
	switch k {
	case KindEffectFailure:
		return "effect failure"
	case KindWriteDuringDerivation:
		return "write during derivation"
	case KindFlushOverrun:
		return "flush overrun"
	default:
		return "unknown"
	}
}

// ErrorRecord carries a failure through the error channel: the error
// itself, the node it came from and when it happened. Records are
// transient; the engine keeps no history.
type ErrorRecord struct {
	Err    error
	Kind   ErrorKind
	NodeID uint64
	At     time.Time
}

func (r ErrorRecord) String() string {
	return fmt.Sprintf("%s on node %d: %v", r.Kind, r.NodeID, r.Err)
}

func newErrorRecord(kind ErrorKind, nodeID uint64, err error) ErrorRecord {
	return ErrorRecord{Err: err, Kind: kind, NodeID: nodeID, At: time.Now()}
}
