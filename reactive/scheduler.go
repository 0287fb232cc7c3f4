package reactive

import (
	"sort"
)

const defaultMaxFlushPasses = 1000

type phase uint8

const (
	phaseIdle phase = iota
	phaseBatching
	phaseFlushing
)

// scheduler coalesces signal writes into flushes. Unbatched writes flush
// immediately; writes inside StartBatch/EndBatch accumulate and flush
// once when the outermost batch closes; writes during a flush join the
// flush already in progress instead of starting a nested one.
type scheduler struct {
	phase      phase
	batchDepth int
	pending    []*effectRunner
	maxPasses  int
}

func (s *scheduler) enqueue(e *effectRunner) {
	s.pending = append(s.pending, e)
}

// writeHappened is called after every accepted signal write. It decides
// whether notification happens now or at a batch/flush boundary. Writes
// inside a computed getter (a contract violation, but a reported one)
// flush only once the outermost derivation has finished, so no effect
// can observe a half-computed node.
func (s *scheduler) writeHappened(rs *ReactiveSystem) {
	if rs.derivationDepth > 0 {
		return
	}
	switch s.phase {
	case phaseBatching, phaseFlushing:
		// Deferred: EndBatch or the running flush loop will pick the
		// pending effects up.
	default:
		s.flush(rs)
	}
}

// flush drains the pending set to a fixed point. Each pass takes a
// snapshot of the pending effects, orders it by node creation ID (the
// documented ordering guarantee for effects dirtied together) and
// settles each one. Effects dirtied while the pass runs land in the
// next pass. A pass budget guards against graphs that never stabilize.
func (s *scheduler) flush(rs *ReactiveSystem) {
	if s.phase == phaseFlushing {
		return
	}
	s.phase = phaseFlushing
	defer func() { s.phase = phaseIdle }()

	for pass := 0; len(s.pending) > 0; pass++ {
		if pass >= s.maxPasses {
			wave := s.pending
			s.pending = nil
			for _, e := range wave {
				e.queued = false
				e.state = stateClean
			}
			rs.routeError(newErrorRecord(KindFlushOverrun, 0, ErrFlushOverrun))
			return
		}

		wave := s.pending
		s.pending = nil
		sort.Slice(wave, func(i, j int) bool { return wave[i].id < wave[j].id })
		s.settleWave(wave)
	}
}

// settleWave runs one flush pass. A panic escaping a settle (a cycle
// discovered while refreshing a dependency, say) unwinds past the rest
// of the wave; every effect still holding a queued flag the aborted
// flush can no longer honor gets the flag cleared, so the next write to
// one of its dependencies re-enqueues it instead of finding it stranded.
func (s *scheduler) settleWave(wave []*effectRunner) {
	i := 0
	defer func() {
		if r := recover(); r != nil {
			for _, e := range wave[i:] {
				e.queued = false
			}
			for _, e := range s.pending {
				e.queued = false
			}
			s.pending = nil
			panic(r)
		}
	}()
	for ; i < len(wave); i++ {
		wave[i].queued = false
		wave[i].settle()
	}
}

// StartBatch opens an explicit synchronization block: writes inside it
// mark subscribers stale but defer effect execution until the matching
// EndBatch. Batches nest; only the outermost close flushes.
func (rs *ReactiveSystem) StartBatch() {
	rs.sched.batchDepth++
	if rs.sched.phase == phaseIdle {
		rs.sched.phase = phaseBatching
	}
}

// EndBatch closes a synchronization block, flushing once the outermost
// batch is done. Closing a batch inside a running flush just returns to
// that flush.
func (rs *ReactiveSystem) EndBatch() {
	rs.sched.batchDepth--
	if rs.sched.batchDepth > 0 {
		return
	}
	if rs.sched.phase == phaseBatching {
		rs.sched.phase = phaseIdle
	}
	if rs.sched.phase == phaseIdle {
		rs.sched.flush(rs)
	}
}

// Batch runs fn inside a synchronization block. A signal written several
// times inside fn notifies each subscriber at most once, with only the
// final value observable.
func (rs *ReactiveSystem) Batch(fn func()) {
	rs.StartBatch()
	defer rs.EndBatch()
	fn()
}
