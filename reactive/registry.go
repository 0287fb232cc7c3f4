package reactive

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Registry is a keyed signal store for state shared across independent
// consumers of one system: the first Acquire for a key creates the
// signal, later Acquires return the same one, and the signal lives
// until every holder has released it. Lifetime is explicit reference
// counting, never an ambient singleton that nothing ever tears down.
type Registry struct {
	rs      *ReactiveSystem
	entries map[uint64]*registryEntry
}

type registryEntry struct {
	key  string
	cell any
	refs int
}

// NewRegistry creates an empty registry bound to rs.
func NewRegistry(rs *ReactiveSystem) *Registry {
	return &Registry{
		rs:      rs,
		entries: map[uint64]*registryEntry{},
	}
}

// Len reports how many keys currently hold live signals.
func (r *Registry) Len() int {
	return len(r.entries)
}

const registryKeySep = "\x1f"

func registryKey(parts []string) (string, uint64) {
	key := strings.Join(parts, registryKeySep)
	return key, xxhash.Sum64String(key)
}

// AcquireSignal returns the signal stored under the joined key parts,
// creating it with initial on first acquisition, plus a release func.
// Each release pairs with one acquire; the entry is dropped when the
// last holder releases, after which the key starts fresh. Acquiring a
// live key with a different value type is an error.
func AcquireSignal[T comparable](r *Registry, initial T, parts ...string) (*WriteableSignal[T], func(), error) {
	key, sum := registryKey(parts)

	entry, ok := r.entries[sum]
	if ok && entry.key != key {
		return nil, nil, fmt.Errorf("registry: key hash collision between %q and %q", entry.key, key)
	}
	if !ok {
		entry = &registryEntry{
			key:  key,
			cell: Signal(r.rs, initial),
		}
		r.entries[sum] = entry
	}

	sig, ok := entry.cell.(*WriteableSignal[T])
	if !ok {
		return nil, nil, fmt.Errorf("registry: key %q already holds a %T", key, entry.cell)
	}

	entry.refs++
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		entry.refs--
		if entry.refs == 0 {
			delete(r.entries, sum)
		}
	}
	return sig, release, nil
}
