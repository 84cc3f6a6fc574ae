package runtime

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-room/domain"
	"chat-room/errors"
)

func broadcastRoom(t *testing.T, names ...string) (*Broadcaster, *Registry, map[string]*Handle) {
	t.Helper()
	req := require.New(t)
	registry := NewRegistry()
	handles := make(map[string]*Handle, len(names))
	for _, name := range names {
		h := NewHandle(8)
		req.NoError(registry.Register(name, h))
		handles[name] = h
	}
	return NewBroadcaster(registry, logs.GetLoggerFromLevel(slog.LevelDebug)), registry, handles
}

func TestBroadcaster_Excludes_Sender(t *testing.T) {
	req := require.New(t)
	broadcaster, _, handles := broadcastRoom(t, "alice", "bob", "carol")

	// When alice broadcasts a chat message excluding herself
	broadcaster.BroadcastAll(domain.NewChat("alice", "", "hi"), "alice")

	// Then bob and carol receive it
	for _, name := range []string{"bob", "carol"} {
		m := <-handles[name].Messages()
		req.Equal(domain.TypeChat, m.Type)
		req.Equal("alice", m.From)
		req.Equal("hi", m.Body)
	}

	// And alice receives nothing
	req.Empty(handles["alice"].Messages())
}

func TestBroadcaster_System_Notice_Reaches_Everyone(t *testing.T) {
	req := require.New(t)
	broadcaster, _, handles := broadcastRoom(t, "alice", "bob")

	// When a system notice is broadcast without exclusion
	broadcaster.BroadcastAll(domain.NewSystem("server shutting down"), "")

	// Then every registered identity receives it
	for _, h := range handles {
		m := <-h.Messages()
		req.Equal(domain.TypeSystem, m.Type)
		req.Equal(domain.ServerName, m.From)
	}
}

func TestBroadcaster_Partial_Failure_Does_Not_Abort_Fanout(t *testing.T) {
	req := require.New(t)
	broadcaster, _, handles := broadcastRoom(t, "alice", "bob", "carol")

	// Given bob's session has just exited
	handles["bob"].Close()

	// When a broadcast fans out
	broadcaster.BroadcastAll(domain.NewChat("alice", "", "still here?"), "alice")

	// Then carol still receives the message
	req.Equal("still here?", (<-handles["carol"].Messages()).Body)
}

func TestBroadcaster_Evicts_Saturated_Recipient(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, logs.GetLoggerFromLevel(slog.LevelDebug))

	slow := NewHandle(1)
	req.NoError(registry.Register("slow", slow))
	req.NoError(slow.Deliver(domain.NewSystem("filling the buffer")))

	fast := NewHandle(8)
	req.NoError(registry.Register("fast", fast))

	// When a broadcast hits the saturated handle
	broadcaster.BroadcastAll(domain.NewChat("fast", "", "overflow"), "fast")

	// Then the slow session is deregistered and its handle closed
	_, ok := registry.Get("slow")
	req.False(ok)
	req.ErrorIs(slow.Deliver(domain.NewSystem("late")), errors.ErrHandleClosed)

	// And the healthy recipient keeps receiving
	_, ok = registry.Get("fast")
	req.True(ok)
}

func TestBroadcaster_SendTo(t *testing.T) {
	req := require.New(t)
	broadcaster, _, handles := broadcastRoom(t, "alice", "bob")

	// When alice sends an addressed message to bob
	req.NoError(broadcaster.SendTo("bob", domain.NewChat("alice", "bob", "psst")))

	// Then only bob receives it
	req.Equal("psst", (<-handles["bob"].Messages()).Body)
	req.Empty(handles["alice"].Messages())

	// And an unknown recipient is reported
	err := broadcaster.SendTo("nobody", domain.NewChat("alice", "nobody", "hello?"))
	req.ErrorIs(err, errors.ErrNoSuchUser)
}

func TestBroadcaster_Preserves_Per_Sender_Order(t *testing.T) {
	req := require.New(t)
	broadcaster, _, handles := broadcastRoom(t, "alice", "bob")

	// When alice broadcasts a sequence of messages
	bodies := []string{"m1", "m2", "m3", "m4"}
	for _, body := range bodies {
		broadcaster.BroadcastAll(domain.NewChat("alice", "", body), "alice")
	}

	// Then bob observes them in the order alice produced them
	for _, want := range bodies {
		req.Equal(want, (<-handles["bob"].Messages()).Body)
	}
}
