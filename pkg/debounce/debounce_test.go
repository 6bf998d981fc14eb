package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// A burst of calls collapses into one invocation after the quiet period.
func TestDebounceCollapsesBurst(t *testing.T) {
	var calls atomic.Int32
	dismiss := Debounce(100*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		dismiss()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Zero(t, calls.Load(), "fired before the quiet period")

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDebounceRestartsTimer(t *testing.T) {
	var calls atomic.Int32
	dismiss := Debounce(100*time.Millisecond, func() { calls.Add(1) })

	dismiss()
	time.Sleep(50 * time.Millisecond)
	dismiss()
	time.Sleep(50 * time.Millisecond)
	dismiss()
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load(), "each call restarts the wait")

	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDebounceSeparateBursts(t *testing.T) {
	var calls atomic.Int32
	dismiss := Debounce(30*time.Millisecond, func() { calls.Add(1) })

	dismiss()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	dismiss()
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}
