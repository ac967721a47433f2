package me

import (
	"sync"
	"sync/atomic"
)

// CompletionMap records which macroblocks of a picture have final motion.
// A macroblock at (x, y) depends on (x+1, y-1), so rows advance as a
// wavefront.
//
// Done publishes with an atomic store after the result is written, and Wait
// observes it with an atomic load, so a waiter that returns sees the
// complete result. Waiters block on a per-row condition variable instead of
// spinning.
type CompletionMap struct {
	width int
	flags []atomic.Uint32
	rows  []rowState
}

// rowState is padded to a full cache line to prevent false sharing.
type rowState struct {
	waiters atomic.Int32
	mu      sync.Mutex
	cond    *sync.Cond
	_       [12]byte
}

// NewCompletionMap returns an empty map for a picture of widthMBs x
// heightMBs macroblocks.
func NewCompletionMap(widthMBs, heightMBs int) *CompletionMap {
	m := &CompletionMap{
		width: widthMBs,
		flags: make([]atomic.Uint32, widthMBs*heightMBs),
		rows:  make([]rowState, heightMBs),
	}
	for i := range m.rows {
		m.rows[i].cond = sync.NewCond(&m.rows[i].mu)
	}
	return m
}

// Reset clears every flag. It must not race with Wait or Done.
func (m *CompletionMap) Reset() {
	for i := range m.flags {
		m.flags[i].Store(0)
	}
}

// IsDone reports whether (x, y) has been published.
func (m *CompletionMap) IsDone(x, y int) bool {
	return m.flags[y*m.width+x].Load() != 0
}

// Wait blocks until (x, y) has been published.
func (m *CompletionMap) Wait(x, y int) {
	f := &m.flags[y*m.width+x]
	if f.Load() != 0 {
		return
	}
	r := &m.rows[y]
	r.waiters.Add(1)
	r.mu.Lock()
	for f.Load() == 0 {
		r.cond.Wait()
	}
	r.mu.Unlock()
	r.waiters.Add(-1)
}

// Done publishes (x, y) and wakes goroutines waiting on its row.
func (m *CompletionMap) Done(x, y int) {
	m.flags[y*m.width+x].Store(1)
	r := &m.rows[y]
	if r.waiters.Load() > 0 {
		r.mu.Lock()
		r.mu.Unlock()
		r.cond.Broadcast()
	}
}
