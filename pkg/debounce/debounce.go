// Package debounce settles a rapidly changing value once it has been quiet for a delay.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer holds the last settled value. Every Set restarts the delay, and only
// the most recent Set can settle.
type Debouncer[T any] struct {
	clock clockwork.Clock
	delay time.Duration

	mu      sync.Mutex
	value   T
	pending T
	seq     uint64
	waiting bool
	timer   clockwork.Timer
	stopped bool
	changes chan T
}

func New[T any](clock clockwork.Clock, delay time.Duration, initial T) *Debouncer[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer[T]{
		clock:   clock,
		delay:   delay,
		value:   initial,
		changes: make(chan T, 1),
	}
}

// Set records v and restarts the quiet period.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = v
	d.seq++
	d.waiting = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.delay <= 0 {
		d.settleLocked()
		return
	}
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() { d.settle(seq) })
}

func (d *Debouncer[T]) settle(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// a later Set owns the window
	if d.stopped || seq != d.seq || !d.waiting {
		return
	}
	d.settleLocked()
}

func (d *Debouncer[T]) settleLocked() {
	d.value = d.pending
	d.waiting = false
	d.timer = nil
	select {
	case d.changes <- d.value:
	default:
		// drop the unread value so the channel always holds the latest
		select {
		case <-d.changes:
		default:
		}
		d.changes <- d.value
	}
}

// Value returns the last settled value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Pending reports whether a Set is waiting for its quiet period to end.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waiting
}

// Changes receives each settled value. It is closed by Stop.
func (d *Debouncer[T]) Changes() <-chan T {
	return d.changes
}

// Stop cancels any pending Set and closes Changes.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.waiting = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	close(d.changes)
}
