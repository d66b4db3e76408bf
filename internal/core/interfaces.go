package core

// Frame is a serialized outbound payload.
type Frame []byte

// ConnID identifies one live connection; assigned by the transport adapter
// and stable for the connection's lifetime.
type ConnID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Envelope is the outbound wire frame: one named event plus its payload.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
