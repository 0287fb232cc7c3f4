package reactive

// EffectStatus is reported to inspectors around effect execution.
type EffectStatus uint8

const (
	EffectStatusIdle EffectStatus = iota
	EffectStatusRunning
	EffectStatusError
)

func (s EffectStatus) String() string {
	switch s {
	case EffectStatusIdle:
		return "idle"
	case EffectStatusRunning:
		return "running"
	case EffectStatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Inspector is a passive lifecycle subscriber for external tooling.
// Callbacks fire synchronously at the point the event happens and must
// not write signals or otherwise feed back into the graph; the engine
// neither needs inspectors for correctness nor lets them influence
// scheduling.
type Inspector interface {
	SignalCreated(id uint64)
	SignalUpdated(id uint64, version uint64)
	EffectCreated(id uint64)
	EffectRan(id uint64, status EffectStatus)
	ScopeDisposed(id uint64)
}

// AttachInspector registers an inspector and returns its detach func.
// Detach copies the inspector list instead of shifting it in place, so
// an inspector may detach itself (or a peer) from inside a callback
// without the dispatch loop skipping whoever came after it.
func (rs *ReactiveSystem) AttachInspector(in Inspector) (detach func()) {
	rs.inspectors = append(rs.inspectors, in)
	return func() {
		for i, existing := range rs.inspectors {
			if existing == in {
				next := make([]Inspector, 0, len(rs.inspectors)-1)
				next = append(next, rs.inspectors[:i]...)
				next = append(next, rs.inspectors[i+1:]...)
				rs.inspectors = next
				return
			}
		}
	}
}
