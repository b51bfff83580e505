// Package ratelimit coalesces bursts of triggers per key.
package ratelimit

import (
	"sync"
	"time"
)

// Throttle runs fn for a key at most once per interval. The first trigger in
// a quiet period runs immediately; triggers arriving within the interval are
// merged into a single trailing run once the interval has passed.
//
// fn runs on its own goroutine and never concurrently for the same key.
type Throttle[K comparable] struct {
	interval time.Duration
	fn       func(K)
	now      func() time.Time

	mu      sync.Mutex
	keys    map[K]*keyState
	stopped bool
}

type keyState struct {
	last    time.Time
	timer   *time.Timer
	running bool
	again   bool
}

// New creates a throttle calling fn. A non-positive interval disables
// coalescing of anything but overlapping runs.
func New[K comparable](interval time.Duration, fn func(K)) *Throttle[K] {
	return &Throttle[K]{
		interval: interval,
		fn:       fn,
		now:      time.Now,
		keys:     make(map[K]*keyState),
	}
}

// Trigger requests a run for key.
func (t *Throttle[K]) Trigger(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}

	st, ok := t.keys[key]
	if !ok {
		st = &keyState{}
		t.keys[key] = st
	}

	switch {
	case st.running:
		st.again = true
	case st.timer != nil:
		// A trailing run is already scheduled.
	default:
		wait := t.interval - t.now().Sub(st.last)
		if st.last.IsZero() || wait <= 0 {
			t.startLocked(key, st)
			return
		}
		st.timer = time.AfterFunc(wait, func() { t.fire(key) })
	}
}

// Forget drops any pending run for key.
func (t *Throttle[K]) Forget(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.keys[key]; ok {
		if st.timer != nil {
			st.timer.Stop()
		}
		if !st.running {
			delete(t.keys, key)
		}
	}
}

// Stop cancels pending runs and ignores further triggers. Runs already in
// progress finish.
func (t *Throttle[K]) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for _, st := range t.keys {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		st.again = false
	}
}

func (t *Throttle[K]) fire(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.keys[key]
	if !ok || t.stopped {
		return
	}
	st.timer = nil
	t.startLocked(key, st)
}

// startLocked must be called with t.mu held.
func (t *Throttle[K]) startLocked(key K, st *keyState) {
	st.running = true
	st.last = t.now()
	go t.run(key, st)
}

func (t *Throttle[K]) run(key K, st *keyState) {
	t.fn(key)

	t.mu.Lock()
	defer t.mu.Unlock()
	st.running = false
	if st.again && !t.stopped {
		st.again = false
		wait := t.interval - t.now().Sub(st.last)
		if wait <= 0 {
			t.startLocked(key, st)
			return
		}
		st.timer = time.AfterFunc(wait, func() { t.fire(key) })
	}
}
