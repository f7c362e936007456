// Package host is the reference consumer for the monitor's messages: the
// piece a host frame runs to turn presence transitions into a policy
// decision. The tracker validates the protocol discriminator, keeps the
// last-seen presence state per page load and invokes the policy callbacks;
// what a callback does (warn, disconnect, ignore) is the embedder's choice.
package host

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codeserver/presence-monitor/monitor"
)

// Policy holds the host application's reactions to presence transitions.
// Nil callbacks are skipped. Callbacks run on the tracker's goroutine, so
// they must not block for long.
type Policy struct {
	OnReady    func(monitor.Message)
	OnActive   func(monitor.Message)
	OnBlur     func(monitor.Message)
	OnInactive func(monitor.Message)
}

// Snapshot is a read-only view of tracker state for diagnostics.
type Snapshot struct {
	SessionID  string         `json:"sessionId"`
	Ready      bool           `json:"ready"`
	Active     bool           `json:"active"`
	LastStatus monitor.Status `json:"lastStatus,omitempty"`
	LastSeen   time.Time      `json:"lastSeen,omitempty"`
	TimeoutMS  int64          `json:"timeoutMs,omitempty"`
	Received   map[string]int `json:"received"`
}

// Tracker drains a message channel and maintains host-side presence state.
type Tracker struct {
	mu     sync.RWMutex
	logger *zap.Logger
	policy Policy

	sessionID  string
	ready      bool
	active     bool
	lastStatus monitor.Status
	lastSeen   time.Time
	timeoutMS  int64
	received   map[string]int

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTracker creates a tracker with the given policy. The session ID
// identifies one page load in logs and diagnostics.
func NewTracker(policy Policy, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		logger:    logger.Named("host"),
		policy:    policy,
		sessionID: uuid.NewString(),
		received:  make(map[string]int),
		stopChan:  make(chan struct{}),
	}
}

// Start begins draining msgs on a background goroutine.
func (t *Tracker) Start(msgs <-chan monitor.Message) {
	t.logger.Info("host tracker started", zap.String("session_id", t.sessionID))

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-t.stopChan:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				t.handle(msg)
			}
		}
	}()
}

// Stop stops draining and waits for the goroutine to exit. Safe to call
// repeatedly or speculatively.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	t.wg.Wait()
	t.logger.Info("host tracker stopped")
}

// handle applies one message. Foreign types and unknown statuses are
// ignored: the wire contract is forward-compatible and other protocols may
// share the channel.
func (t *Tracker) handle(msg monitor.Message) {
	if msg.Type != monitor.MessageType {
		t.logger.Debug("ignoring foreign message", zap.String("type", msg.Type))
		return
	}

	t.mu.Lock()
	var cb func(monitor.Message)
	switch msg.Status {
	case monitor.StatusReady:
		t.ready = true
		t.timeoutMS = msg.Timeout
		cb = t.policy.OnReady
	case monitor.StatusActive:
		cb = t.policy.OnActive
	case monitor.StatusBlur:
		cb = t.policy.OnBlur
	case monitor.StatusInactive:
		cb = t.policy.OnInactive
	default:
		t.mu.Unlock()
		t.logger.Debug("ignoring unknown status", zap.String("status", string(msg.Status)))
		return
	}
	t.lastStatus = msg.Status
	t.lastSeen = time.UnixMilli(msg.Timestamp)
	t.active = msg.IsActive
	t.received[string(msg.Status)]++
	t.mu.Unlock()

	t.logger.Info("presence transition",
		zap.String("status", string(msg.Status)),
		zap.Bool("is_active", msg.IsActive),
		zap.String("session_id", t.sessionID))

	if cb != nil {
		cb(msg)
	}
}

// Snapshot returns the current host-side view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	received := make(map[string]int, len(t.received))
	for k, v := range t.received {
		received[k] = v
	}
	return Snapshot{
		SessionID:  t.sessionID,
		Ready:      t.ready,
		Active:     t.active,
		LastStatus: t.lastStatus,
		LastSeen:   t.lastSeen,
		TimeoutMS:  t.timeoutMS,
		Received:   received,
	}
}
