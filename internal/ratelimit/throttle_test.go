package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type counter struct {
	mu    sync.Mutex
	calls map[int]int
}

func (c *counter) inc(k int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[k]++
}

func (c *counter) get(k int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[k]
}

func TestLeadingCallRunsImmediately(t *testing.T) {
	c := &counter{calls: map[int]int{}}
	th := New(time.Hour, c.inc)
	defer th.Stop()

	th.Trigger(1)
	assert.Eventually(t, func() bool { return c.get(1) == 1 }, time.Second, 5*time.Millisecond)
}

func TestBurstCoalescesIntoOneTrailingCall(t *testing.T) {
	c := &counter{calls: map[int]int{}}
	th := New(50*time.Millisecond, c.inc)
	defer th.Stop()

	th.Trigger(1)
	assert.Eventually(t, func() bool { return c.get(1) == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 10; i++ {
		th.Trigger(1)
	}
	assert.Eventually(t, func() bool { return c.get(1) == 2 }, time.Second, 5*time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 2, c.get(1))
}

func TestKeysAreIndependent(t *testing.T) {
	c := &counter{calls: map[int]int{}}
	th := New(time.Hour, c.inc)
	defer th.Stop()

	th.Trigger(1)
	th.Trigger(2)
	assert.Eventually(t, func() bool { return c.get(1) == 1 && c.get(2) == 1 }, time.Second, 5*time.Millisecond)
}

func TestNoOverlappingRuns(t *testing.T) {
	var active, maxActive atomic.Int32
	release := make(chan struct{})
	var runs atomic.Int32

	th := New(0, func(int) {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		if runs.Add(1) == 1 {
			<-release
		}
		active.Add(-1)
	})
	defer th.Stop()

	th.Trigger(1)
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	th.Trigger(1)
	th.Trigger(1)
	close(release)

	assert.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestStopCancelsTrailingRun(t *testing.T) {
	c := &counter{calls: map[int]int{}}
	th := New(30*time.Millisecond, c.inc)

	th.Trigger(1)
	assert.Eventually(t, func() bool { return c.get(1) == 1 }, time.Second, time.Millisecond)
	th.Trigger(1)
	th.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, c.get(1))

	th.Trigger(2)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, c.get(2))
}
