package runtime

import (
	"sync"

	"chat-room/domain"
	"chat-room/errors"
)

// Handle is the bounded outgoing-message side of one session.
// The registry hands it to the broadcast engine; the owning session drains it
// through Messages. Deliver and Close are serialized so closing a handle
// concurrently with a delivery can never panic.
type Handle struct {
	mu     sync.Mutex
	closed bool
	out    chan domain.Message
}

func NewHandle(buffer int) *Handle {
	if buffer <= 0 {
		buffer = 1
	}
	return &Handle{out: make(chan domain.Message, buffer)}
}

// Deliver queues one message for the session's write pump without blocking.
// ErrHandleClosed means the session is gone, ErrHandleFull means its reader
// is saturated; both are delivery failures, not crashes.
func (h *Handle) Deliver(m domain.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.ErrHandleClosed
	}
	select {
	case h.out <- m:
		return nil
	default:
		return errors.ErrHandleFull
	}
}

// Close ends delivery. Idempotent; already-queued messages stay readable.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.out)
}

// Messages exposes the drain side for the owning session only.
func (h *Handle) Messages() <-chan domain.Message {
	return h.out
}
