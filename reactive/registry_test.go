package reactive_test

import (
	"testing"

	"github.com/flexium/flexium-go/reactive"
	"github.com/stretchr/testify/assert"
)

// should return the same signal for the same key while held
func TestRegistrySharesSignalPerKey(t *testing.T) {
	rs := newTestSystem(t)
	reg := reactive.NewRegistry(rs)

	first, releaseFirst, err := reactive.AcquireSignal(reg, 0, "counter", "page")
	assert.NoError(t, err)
	second, releaseSecond, err := reactive.AcquireSignal(reg, 99, "counter", "page")
	assert.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 0, second.Value(), "initial of a later acquire is ignored")
	assert.Equal(t, 1, reg.Len())

	first.SetValue(7)
	assert.Equal(t, 7, second.Value())

	releaseFirst()
	releaseSecond()
}

// should drop the entry when the last holder releases
func TestRegistryRefcountTeardown(t *testing.T) {
	rs := newTestSystem(t)
	reg := reactive.NewRegistry(rs)

	sig, release1, _ := reactive.AcquireSignal(reg, 1, "k")
	_, release2, _ := reactive.AcquireSignal(reg, 1, "k")
	sig.SetValue(5)

	release1()
	release1() // double release of one handle is a no-op
	assert.Equal(t, 1, reg.Len())

	release2()
	assert.Equal(t, 0, reg.Len())

	// a re-acquire after teardown starts from its own initial
	fresh, release3, _ := reactive.AcquireSignal(reg, 1, "k")
	assert.NotSame(t, sig, fresh)
	assert.Equal(t, 1, fresh.Value())
	release3()
}

// should distinguish keys by every part, not just their concatenation
func TestRegistryKeyParts(t *testing.T) {
	rs := newTestSystem(t)
	reg := reactive.NewRegistry(rs)

	a, releaseA, _ := reactive.AcquireSignal(reg, "a", "todo", "1")
	b, releaseB, _ := reactive.AcquireSignal(reg, "b", "todo1", "")
	defer releaseA()
	defer releaseB()

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, reg.Len())
}

// should reject acquiring a live key with a different value type
func TestRegistryTypeMismatch(t *testing.T) {
	rs := newTestSystem(t)
	reg := reactive.NewRegistry(rs)

	_, release, err := reactive.AcquireSignal(reg, 1, "k")
	assert.NoError(t, err)
	defer release()

	_, _, err = reactive.AcquireSignal(reg, "not an int", "k")
	assert.Error(t, err)
}
