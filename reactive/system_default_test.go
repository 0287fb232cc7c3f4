package reactive_test

import (
	"sync"
	"testing"

	"github.com/flexium/flexium-go/reactive"
	"github.com/stretchr/testify/assert"
)

// should hand the same default system to repeated calls on one goroutine
func TestDefaultIsStablePerGoroutine(t *testing.T) {
	defer reactive.ResetDefault()

	rs := reactive.Default()
	assert.Same(t, rs, reactive.Default())

	s := reactive.Signal(rs, 1)
	assert.Equal(t, 1, s.Value())
}

// should give each goroutine its own default system
func TestDefaultIsolatesGoroutines(t *testing.T) {
	defer reactive.ResetDefault()

	mine := reactive.Default()

	var theirs *reactive.ReactiveSystem
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer reactive.ResetDefault()
		theirs = reactive.Default()
	}()
	wg.Wait()

	assert.NotSame(t, mine, theirs)
}

// should start fresh after ResetDefault
func TestResetDefault(t *testing.T) {
	first := reactive.Default()
	reactive.ResetDefault()
	second := reactive.Default()
	defer reactive.ResetDefault()

	assert.NotSame(t, first, second)
}
