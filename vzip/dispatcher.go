package vzip

import (
	"fmt"
	"sync"
)

// Dispatcher hands out ordinals 0..total-1 exactly once each.
// It is safe for concurrent use; the lock only covers the read-and-increment.
type Dispatcher struct {
	mu    sync.Mutex
	next  int
	total int
}

// NewDispatcher returns a Dispatcher for total ordinals.
func NewDispatcher(total int) *Dispatcher {
	if total < 0 {
		panic(fmt.Sprintf("vzip: negative dispatch total %d", total))
	}
	return &Dispatcher{total: total}
}

// ClaimNext returns the next unclaimed ordinal, or false once all have been
// issued.
func (d *Dispatcher) ClaimNext() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.next >= d.total {
		return 0, false
	}
	n := d.next
	d.next++
	return n, true
}

// Remaining reports how many ordinals have not been claimed yet.
func (d *Dispatcher) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.total - d.next
}
