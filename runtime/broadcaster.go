package runtime

import (
	"log/slog"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/errors"
)

// Broadcaster fans messages out over a point-in-time registry snapshot.
// Partial failure is expected: one dead or saturated recipient never aborts
// delivery to the rest. A saturated recipient is evicted, which its session
// observes as its handle closing.
type Broadcaster struct {
	registry contract.IRegistry
	log      *slog.Logger
}

func NewBroadcaster(registry contract.IRegistry, log *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// BroadcastAll delivers m to every registered identity except exclude.
// Deliveries happen sequentially on the caller's goroutine, which is what
// preserves per-sender ordering: a session's read loop broadcasts its own
// messages one at a time.
func (b *Broadcaster) BroadcastAll(m domain.Message, exclude string) {
	var saturated []contract.Entry
	for _, e := range b.registry.Snapshot() {
		if e.Name == exclude {
			continue
		}
		err := e.Out.Deliver(m)
		if err == nil {
			continue
		}
		b.log.Warn("delivery failed", "user", e.Name, "err", err)
		if err == errors.ErrHandleFull {
			saturated = append(saturated, e)
		}
	}
	for _, e := range saturated {
		b.evict(e)
	}
}

// SendTo delivers m to one identity only.
func (b *Broadcaster) SendTo(name string, m domain.Message) error {
	out, ok := b.registry.Get(name)
	if !ok {
		return errors.ErrNoSuchUser
	}
	if err := out.Deliver(m); err != nil {
		if err == errors.ErrHandleFull {
			b.evict(contract.Entry{Name: name, Out: out})
		}
		return err
	}
	return nil
}

// evict drops a persistently unresponsive session. Closing the handle ends
// its write pump, which closes the socket and unblocks its read loop.
func (b *Broadcaster) evict(e contract.Entry) {
	if b.registry.Deregister(e.Name) {
		b.log.Warn("evicting unresponsive session", "user", e.Name)
		e.Out.Close()
	}
}
