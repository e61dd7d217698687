package store

import (
	"sync"
	"time"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
)

// Debouncer coalesces save requests: a snapshot arriving within the window
// replaces the pending one instead of queuing a second write, so at most
// one write is pending at a time and only the latest snapshot persists.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	latest model.Histories
	save   func(model.Histories)
}

// NewDebouncer creates a debouncer that invokes save after delay.
func NewDebouncer(delay time.Duration, save func(model.Histories)) *Debouncer {
	return &Debouncer{delay: delay, save: save}
}

// Schedule records histories as the latest snapshot and (re)starts the
// debounce window.
func (d *Debouncer) Schedule(histories model.Histories) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.latest = histories
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	histories := d.latest
	d.latest = nil
	d.timer = nil
	d.mu.Unlock()

	if histories != nil {
		d.save(histories)
	}
}

// Flush writes any pending snapshot immediately. Used on shutdown.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	histories := d.latest
	d.latest = nil
	d.mu.Unlock()

	if histories != nil {
		d.save(histories)
	}
}
