package feed

import (
	"sync"
	"time"
)

// debouncer is an explicit cancellable-timer abstraction. Arming it cancels
// any pending callback, so rapid calls coalesce into the last one.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer() *debouncer {
	return &debouncer{}
}

// Arm schedules fn after delay, replacing any pending callback.
func (d *debouncer) Arm(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, fn)
}

// Cancel drops a pending callback, if any.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
