package device

import "sync/atomic"

// SessionID identifies a session for the lifetime of its IDGenerator.
type SessionID uint32

// Session is one XR session. Ended is terminal.
type Session struct {
	ID           SessionID
	Ended        bool
	RenderTarget RenderTarget
}

// IDGenerator hands out session ids. Ids must never repeat.
type IDGenerator interface {
	Next() SessionID
}

// Counter is a monotonically increasing IDGenerator.
type Counter struct {
	last atomic.Uint32
}

// NewCounter returns a Counter whose first id is after+1.
func NewCounter(after SessionID) *Counter {
	c := &Counter{}
	c.last.Store(uint32(after))
	return c
}

func (c *Counter) Next() SessionID {
	return SessionID(c.last.Add(1))
}
