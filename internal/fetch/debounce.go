package fetch

import (
	"sync"
	"time"

	"storefront/internal/util"
)

// Debouncer coalesces a burst of inputs into one callback after a
// quiescence window. Each Trigger cancels the pending timer and arms a
// new one, so only the last input of a burst fires.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiescence window
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger schedules fn after the window, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		if d.timer.Stop() {
			util.SearchBurstsCoalesced.Inc()
		}
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending call and rejects further triggers. It must
// be called when the owning view unmounts.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
