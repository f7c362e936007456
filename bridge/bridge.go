// Package bridge is the in-process realization of the cross-document
// message channel: the monitor posts into a bounded channel, the host-side
// tracker drains it. Delivery stays fire-and-forget; a full channel is a
// delivery failure reported to the producer, never a blocked producer.
package bridge

import (
	"errors"
	"sync"

	"github.com/codeserver/presence-monitor/monitor"
)

const defaultCapacity = 16

// ErrChannelFull is returned when a message would block the producer.
var ErrChannelFull = errors.New("bridge: message channel full")

// ErrChannelClosed is returned for posts after Close.
var ErrChannelClosed = errors.New("bridge: message channel closed")

// Channel is a monitor.Sink backed by a buffered Go channel.
type Channel struct {
	mu     sync.RWMutex
	ch     chan monitor.Message
	closed bool
}

// NewChannel creates a channel sink. A capacity below one selects the
// default.
func NewChannel(capacity int) *Channel {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &Channel{
		ch: make(chan monitor.Message, capacity),
	}
}

// Post implements monitor.Sink with a non-blocking send.
func (c *Channel) Post(msg monitor.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrChannelClosed
	}

	select {
	case c.ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// Messages returns the consumer side of the channel.
func (c *Channel) Messages() <-chan monitor.Message {
	return c.ch
}

// Close stops accepting posts and closes the consumer channel. Buffered
// messages remain readable. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
