// Package monitor implements the embedded-context activity monitor: a state
// machine that observes window focus, blur, visibility and unload signals
// from its embedding context and reports presence transitions to the host
// frame over a cross-document message channel. The host owns the inactivity
// policy; the monitor only tells it when presence changes and when sustained
// absence reaches the configured threshold.
package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the delay before a continued-inactive state is
// escalated to an "inactive" notification.
const DefaultTimeout = 60 * time.Second

// Options configures a Monitor at construction. Zero values select the
// production defaults; overrides exist for testability.
type Options struct {
	Timeout   time.Duration
	Scheduler Scheduler
	Now       func() time.Time
	Logger    *zap.Logger
	Debug     bool
}

type subscription struct {
	signal Signal
	cancel func()
}

// Monitor is the activity monitor state machine. One instance per page
// lifetime; a torn-down instance is discarded, not reused.
//
// All state is guarded by mu: environment signals, the countdown callback
// and external Status calls may arrive on different goroutines, but every
// mutation runs to completion under the lock, so handlers observe the same
// run-to-completion ordering the design assumes.
type Monitor struct {
	mu sync.Mutex

	env       Environment
	sink      Sink
	scheduler Scheduler
	now       func() time.Time
	logger    *zap.Logger

	timeout time.Duration
	debug   bool

	active      bool
	initialized bool
	tornDown    bool
	embedded    bool
	pending     Timer
	timerGen    uint64
	subs        []subscription
}

// StatusSnapshot is a read-only projection of monitor state for external
// inspection and tests. It is never sent anywhere.
type StatusSnapshot struct {
	Active          bool          `json:"active"`
	Initialized     bool          `json:"initialized"`
	Embedded        bool          `json:"embedded"`
	HasTimer        bool          `json:"hasTimer"`
	TimeoutDuration time.Duration `json:"timeoutDuration"`
}

// New creates a monitor attached to the given environment and sink.
func New(env Environment, sink Sink, opts Options) *Monitor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Scheduler == nil {
		opts.Scheduler = SystemScheduler()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Monitor{
		env:       env,
		sink:      sink,
		scheduler: opts.Scheduler,
		now:       opts.Now,
		logger:    opts.Logger.Named("monitor"),
		timeout:   opts.Timeout,
		debug:     opts.Debug,
	}
}

// Initialize probes the embedding context, wires the environment signals
// and announces the channel to the host with a "ready" message. It is
// idempotent and best-effort: a repeated call is a logged no-op, a failure
// is logged and leaves the monitor in whatever partial state existed.
func (m *Monitor) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("initialization failed", zap.Any("panic", r))
		}
	}()

	if m.initialized {
		m.logger.Debug("already initialized, skipping")
		return
	}
	// Torn-down is terminal: a late bootstrap signal must not revive the
	// instance.
	if m.tornDown {
		m.logger.Debug("already torn down, skipping")
		return
	}

	m.embedded = m.env.Embedded()
	if !m.embedded {
		m.logger.Info("not running in an embedding context, monitor stays inert")
		return
	}

	m.subs = []subscription{
		{SignalFocus, m.env.Subscribe(SignalFocus, m.onFocus)},
		{SignalBlur, m.env.Subscribe(SignalBlur, m.onBlur)},
		{SignalVisibility, m.env.Subscribe(SignalVisibility, m.onVisibilityChange)},
		{SignalUnload, m.env.Subscribe(SignalUnload, m.onUnload)},
	}

	m.active = !m.env.Hidden() && m.env.Focused()
	m.initialized = true

	initial := StatusInactive
	if m.active {
		initial = StatusActive
	}
	m.notifyLocked(StatusReady, &readyInfo{
		timeout:      m.timeout,
		initialState: initial,
	})

	// The page may load already unfocused; waiting for a blur event that
	// will never come would leave the countdown unarmed.
	if !m.active {
		m.startTimerLocked()
	}

	m.logger.Info("initialized",
		zap.Bool("active", m.active),
		zap.Duration("timeout", m.timeout))
}

// AutoStart registers Initialize on the environment's content-ready signal
// with a second, idempotent attempt on the full-load signal. The bootstrap
// subscriptions outlive teardown on purpose: they only ever call an
// idempotent Initialize.
func (m *Monitor) AutoStart() {
	m.env.Subscribe(SignalContentReady, m.Initialize)
	m.env.Subscribe(SignalLoad, m.Initialize)
}

// Teardown cancels the countdown, detaches all listeners and retires the
// instance. Safe to call repeatedly or speculatively.
func (m *Monitor) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	m.clearTimerLocked()
	for _, s := range m.subs {
		s.cancel()
	}
	m.subs = nil
	m.initialized = false
	m.tornDown = true

	m.logger.Info("torn down")
}

// EnableDebug turns on verbose tracing. It never gates protocol behavior.
func (m *Monitor) EnableDebug() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debug = true
}

// Status returns the diagnostic snapshot of current monitor state.
func (m *Monitor) Status() StatusSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return StatusSnapshot{
		Active:          m.active,
		Initialized:     m.initialized,
		Embedded:        m.embedded,
		HasTimer:        m.pending != nil,
		TimeoutDuration: m.timeout,
	}
}

func (m *Monitor) onFocus() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return
	}
	m.debugf("focus signal")
	m.clearTimerLocked()
	m.setActiveLocked(true)
}

func (m *Monitor) onBlur() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return
	}
	m.debugf("blur signal")
	m.setActiveLocked(false)
	m.startTimerLocked()
}

func (m *Monitor) onVisibilityChange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return
	}
	if m.env.Hidden() {
		m.debugf("visibility signal: hidden")
		m.setActiveLocked(false)
		m.startTimerLocked()
	} else {
		m.debugf("visibility signal: visible")
		m.clearTimerLocked()
		m.setActiveLocked(true)
	}
}

func (m *Monitor) onUnload() {
	m.Teardown()
}

// setActiveLocked is edge-triggered: an unchanged value emits nothing.
// The terminal "inactive" status is never emitted here; it belongs to
// countdown expiry alone.
func (m *Monitor) setActiveLocked(v bool) {
	if m.active == v {
		return
	}
	m.active = v
	if v {
		m.notifyLocked(StatusActive, nil)
	} else {
		m.notifyLocked(StatusBlur, nil)
	}
}

// startTimerLocked arms the inactivity countdown. At most one countdown is
// outstanding: any existing one is cancelled first. The generation counter
// is captured at arm time so an expired-but-cancelled callback can be told
// apart from the current countdown.
func (m *Monitor) startTimerLocked() {
	m.clearTimerLocked()
	gen := m.timerGen
	m.pending = m.scheduler.Schedule(m.timeout, func() { m.onTimeout(gen) })
	m.debugf("countdown armed")
}

// clearTimerLocked cancels the countdown. Stop may report that the callback
// already expired and is waiting on the lock; bumping the generation
// invalidates it either way.
func (m *Monitor) clearTimerLocked() {
	m.timerGen++
	if m.pending == nil {
		return
	}
	m.pending.Stop()
	m.pending = nil
	m.debugf("countdown cleared")
}

// onTimeout fires when sustained absence reaches the threshold. The
// "inactive" message is emitted without a state-change gate: its purpose is
// exactly to mark the threshold, regardless of what active already reflects.
func (m *Monitor) onTimeout(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		// Teardown won the race with an already-fired callback.
		return
	}
	if gen != m.timerGen {
		// A focus or re-arm cancelled this countdown after its callback
		// expired; the cancel wins.
		return
	}
	m.pending = nil
	m.logger.Info("inactivity threshold reached", zap.Duration("timeout", m.timeout))
	m.notifyLocked(StatusInactive, nil)
}

type readyInfo struct {
	timeout      time.Duration
	initialState Status
}

// notifyLocked constructs the outbound message and hands it to the sink.
// Nothing leaves a non-embedded page, and a failing or panicking sink is
// logged and swallowed.
func (m *Monitor) notifyLocked(status Status, ready *readyInfo) {
	if !m.embedded {
		return
	}

	msg := Message{
		Type:      MessageType,
		Status:    status,
		Timestamp: m.now().UnixMilli(),
		IsActive:  m.active,
	}
	if ready != nil {
		msg.Timeout = ready.timeout.Milliseconds()
		msg.InitialState = ready.initialState
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("message sink panicked",
				zap.Any("panic", r), zap.String("status", string(status)))
		}
	}()
	if err := m.sink.Post(msg); err != nil {
		m.logger.Warn("failed to deliver status message",
			zap.Error(err), zap.String("status", string(status)))
		return
	}
	m.debugf("posted message", zap.String("status", string(status)))
}

func (m *Monitor) debugf(msg string, fields ...zap.Field) {
	if !m.debug {
		return
	}
	m.logger.Debug(msg, fields...)
}
