package monitor

// Signal names an environment event the monitor can subscribe to. The
// values follow the DOM event names of the embedding context.
type Signal string

const (
	SignalFocus      Signal = "focus"
	SignalBlur       Signal = "blur"
	SignalVisibility Signal = "visibilitychange"
	SignalUnload     Signal = "beforeunload"

	// Bootstrap signals used by AutoStart, not by the monitor itself.
	SignalContentReady Signal = "DOMContentLoaded"
	SignalLoad         Signal = "load"
)

// Environment abstracts the embedding context: the probes the monitor reads
// once or on demand, and the event source it subscribes to. Subscribe
// returns a cancel function; the monitor keeps every (signal, cancel) pair
// it creates and invokes them all at teardown.
type Environment interface {
	// Embedded reports whether the page runs inside a foreign top-level
	// context. Probed once at initialization; false leaves the monitor
	// permanently inert.
	Embedded() bool

	// Hidden reports document visibility, Focused document focus. Both
	// must indicate presence for the initial state to be active.
	Hidden() bool
	Focused() bool

	Subscribe(sig Signal, fn func()) (cancel func())
}
