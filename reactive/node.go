package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

type nodeState uint8

const (
	stateClean nodeState = iota // value is current, nothing to do
	stateCheck                  // a transitive dependency may have changed, verify before trusting the cache
	stateDirty                  // a direct dependency changed, must recompute
)

// dependency is anything a subscriber can read: a writeable signal or a
// computed. Refresh brings a possibly-stale dependency up to date so a
// subscriber can compare versions against what it last observed.
type dependency interface {
	nodeID() uint64
	refresh()
	subscribers() mapset.Set[subscriber]
}

// subscriber is anything that reads dependencies: a computed or an
// effect. markStale pushes staleness down the graph; addSource records a
// dependency captured during the current run.
type subscriber interface {
	nodeID() uint64
	markStale(st nodeState)
	addSource(dep dependency)
}

// sourceList is the dynamic dependency set of a subscriber, rebuilt on
// every execution. Insertion order is preserved so refresh walks
// dependencies in read order.
type sourceList struct {
	deps []dependency
}

// add appends dep unless it is already present. The common case of
// reading the same signal twice in a row is caught by the tail check;
// anything else falls back to a scan, which is fine at the fan-in sizes
// a single subscriber sees.
func (l *sourceList) add(dep dependency) {
	if n := len(l.deps); n > 0 && l.deps[n-1] == dep {
		return
	}
	for _, d := range l.deps {
		if d == dep {
			return
		}
	}
	l.deps = append(l.deps, dep)
}

// detach removes sub from every dependency's subscriber set and empties
// the list. Called before each re-run and on disposal.
func (l *sourceList) detach(sub subscriber) {
	for _, d := range l.deps {
		d.subscribers().Remove(sub)
	}
	l.deps = l.deps[:0]
}
