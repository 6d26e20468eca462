package services

import (
	"sync"
	"time"
)

// Dispatcher runs background work for draft sessions. Debounced tasks are
// keyed by field identity: scheduling a key again replaces the pending task.
type Dispatcher interface {
	// Go runs fn asynchronously.
	Go(fn func())
	// Debounce runs fn after delay unless the key is rescheduled or cancelled first.
	Debounce(key string, delay time.Duration, fn func())
	// Cancel drops the pending task for key, if any.
	Cancel(key string)
	// Stop cancels all pending tasks and waits for running ones.
	Stop()
}

type asyncDispatcher struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

// NewDispatcher returns a goroutine-backed Dispatcher.
func NewDispatcher() Dispatcher {
	return &asyncDispatcher{timers: make(map[string]*time.Timer)}
}

func (d *asyncDispatcher) Go(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

func (d *asyncDispatcher) Debounce(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.stopped || d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.wg.Add(1)
		d.mu.Unlock()

		defer d.wg.Done()
		fn()
	})
	d.timers[key] = timer
}

func (d *asyncDispatcher) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

func (d *asyncDispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
