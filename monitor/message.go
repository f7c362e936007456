package monitor

// MessageType is the fixed discriminator identifying this protocol on the
// cross-context channel. Hosts filter on it before looking at anything else.
const MessageType = "CODESERVER_INACTIVITY"

// Status is the presence assessment carried by an outbound message.
type Status string

const (
	StatusReady    Status = "ready"
	StatusActive   Status = "active"
	StatusBlur     Status = "blur"
	StatusInactive Status = "inactive"
)

// Message is the wire contract sent to the host frame. Timestamps and the
// timeout are epoch/duration milliseconds so the message round-trips through
// JSON unchanged. Timeout and InitialState are attached only to "ready".
type Message struct {
	Type         string `json:"type"`
	Status       Status `json:"status"`
	Timestamp    int64  `json:"timestamp"`
	IsActive     bool   `json:"isActive"`
	Timeout      int64  `json:"timeout,omitempty"`
	InitialState Status `json:"initialState,omitempty"`
}

// Sink delivers messages to the host frame. Delivery is fire-and-forget:
// the monitor logs a returned error and moves on, it never retries.
type Sink interface {
	Post(Message) error
}
