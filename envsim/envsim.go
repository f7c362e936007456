// Package envsim is a simulated embedding context. It implements
// monitor.Environment with externally mutable visibility, focus and
// embedding flags, and dispatches signals to subscribers on demand. The
// harness binary and the test suites drive a monitor through it instead of
// a real browser page.
package envsim

import (
	"sync"

	"github.com/codeserver/presence-monitor/monitor"
)

// Options sets the initial probe values of the simulated page.
type Options struct {
	Embedded bool
	Hidden   bool
	Focused  bool
	PageURL  string
}

type handler struct {
	id int
	fn func()
}

// Env is a mutable monitor.Environment. Fire dispatches synchronously in
// subscription order, without holding the internal lock, so handlers may
// subscribe or cancel reentrantly.
type Env struct {
	mu       sync.Mutex
	embedded bool
	hidden   bool
	focused  bool
	pageURL  string
	nextID   int
	subs     map[monitor.Signal][]handler
}

// New creates a simulated environment.
func New(opts Options) *Env {
	return &Env{
		embedded: opts.Embedded,
		hidden:   opts.Hidden,
		focused:  opts.Focused,
		pageURL:  opts.PageURL,
		subs:     make(map[monitor.Signal][]handler),
	}
}

func (e *Env) Embedded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.embedded
}

func (e *Env) Hidden() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hidden
}

func (e *Env) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// PageURL returns the simulated page location, used for query-parameter
// configuration.
func (e *Env) PageURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pageURL
}

// SetHidden updates document visibility. It does not fire
// SignalVisibility; callers decide when the signal is observed.
func (e *Env) SetHidden(hidden bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = hidden
}

// SetFocused updates document focus without firing a signal.
func (e *Env) SetFocused(focused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = focused
}

// Subscribe registers fn for the given signal and returns its cancel
// function. Cancel is idempotent.
func (e *Env) Subscribe(sig monitor.Signal, fn func()) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.subs[sig] = append(e.subs[sig], handler{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		hs := e.subs[sig]
		for i, h := range hs {
			if h.id == id {
				e.subs[sig] = append(hs[:i:i], hs[i+1:]...)
				return
			}
		}
	}
}

// Fire dispatches a signal to the subscribers registered at call time.
func (e *Env) Fire(sig monitor.Signal) {
	e.mu.Lock()
	hs := make([]handler, len(e.subs[sig]))
	copy(hs, e.subs[sig])
	e.mu.Unlock()

	for _, h := range hs {
		h.fn()
	}
}

// SubscriberCount reports how many handlers are registered for a signal.
func (e *Env) SubscriberCount(sig monitor.Signal) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs[sig])
}
