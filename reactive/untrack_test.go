package reactive_test

import (
	"testing"

	"github.com/flexium/flexium-go/reactive"
	"github.com/stretchr/testify/assert"
)

// should not subscribe an effect to reads made under Untrack
func TestUntrackInsideEffect(t *testing.T) {
	rs := newTestSystem(t)

	tracked := reactive.Signal(rs, 0)
	ignored := reactive.Signal(rs, 0)
	runs := 0
	reactive.Effect(rs, func() error {
		tracked.Value()
		reactive.Untrack(rs, func() int { return ignored.Value() })
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	ignored.SetValue(1)
	assert.Equal(t, 1, runs)

	tracked.SetValue(1)
	assert.Equal(t, 2, runs)
}

// should suspend capture between PauseTracking and ResumeTracking inside a computed
func TestPauseTrackingInsideComputed(t *testing.T) {
	rs := newTestSystem(t)

	tracked := reactive.Signal(rs, 1)
	ignored := reactive.Signal(rs, 10)
	calls := 0
	c := reactive.Computed(rs, func(oldValue int) int {
		calls++
		v := tracked.Value()
		rs.PauseTracking()
		v += ignored.Value()
		rs.ResumeTracking()
		return v
	})
	assert.Equal(t, 11, c.Value())
	assert.Equal(t, 1, calls)

	ignored.SetValue(20)
	assert.Equal(t, 11, c.Value(), "untracked source must not invalidate")
	assert.Equal(t, 1, calls)

	tracked.SetValue(2)
	assert.Equal(t, 22, c.Value(), "recompute picks up the untracked source's current value")
	assert.Equal(t, 2, calls)
}

// should restore the outer context after nested pauses
func TestPauseTrackingNests(t *testing.T) {
	rs := newTestSystem(t)

	a := reactive.Signal(rs, 0)
	b := reactive.Signal(rs, 0)
	runs := 0
	reactive.Effect(rs, func() error {
		rs.PauseTracking()
		rs.PauseTracking()
		a.Value()
		rs.ResumeTracking()
		b.Value() // still paused at depth one
		rs.ResumeTracking()
		a.Value() // tracked again
		runs++
		return nil
	})

	b.SetValue(1)
	assert.Equal(t, 1, runs)
	a.SetValue(1)
	assert.Equal(t, 2, runs)
}

// should keep tracking usable while no context is active at all
func TestUntrackAtTopLevel(t *testing.T) {
	rs := newTestSystem(t)

	s := reactive.Signal(rs, 5)
	got := reactive.Untrack(rs, func() int { return s.Value() })
	assert.Equal(t, 5, got)
}
