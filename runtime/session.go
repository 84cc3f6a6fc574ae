package runtime

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/moderation"
	"chat-room/wire"
)

type SessionState int32

const (
	StateConnecting SessionState = iota
	StateActive
	StateClosing
	StateClosed
)

// Session owns one client connection end-to-end: handshake, registration,
// the read loop, and a write pump draining its handle to the socket.
// Every error stays contained to the session; only the shutdown coordinator
// may affect it from outside, by closing its handle.
type Session struct {
	conn        net.Conn
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	moderator   *moderation.Moderator
	log         *slog.Logger
	buffer      int

	name   string
	handle *Handle
	state  atomic.Int32
	pump   sync.WaitGroup
}

func NewSession(conn net.Conn, registry contract.IRegistry,
	broadcaster contract.IBroadcaster, moderator *moderation.Moderator,
	buffer int, log *slog.Logger) *Session {
	return &Session{
		conn:        conn,
		registry:    registry,
		broadcaster: broadcaster,
		moderator:   moderator,
		log:         log,
		buffer:      buffer,
	}
}

func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Run blocks until the session reaches Closed.
func (s *Session) Run() {
	defer s.conn.Close()
	defer s.state.Store(int32(StateClosed))

	dec := wire.NewDecoder(s.conn)
	enc := wire.NewEncoder(s.conn)

	name, err := s.handshake(dec, enc)
	if err != nil {
		s.log.Info("handshake rejected", "remote", s.conn.RemoteAddr(), "err", err)
		return
	}
	s.name = name
	s.state.Store(int32(StateActive))
	s.log.Info("user joined", "user", name, "remote", s.conn.RemoteAddr())

	s.pump.Add(1)
	go s.writePump(enc)

	s.broadcaster.BroadcastAll(domain.NewSystem(fmt.Sprintf("%s joined the room", name)), "")

	s.readLoop(dec)
	s.close()
}

// handshake reads the identity line, validates it and claims the name.
// The claim is rejected when the identity is invalid or already live;
// the original entry is never displaced.
func (s *Session) handshake(dec *wire.Decoder, enc *wire.Encoder) (string, error) {
	line, err := dec.ReadLine()
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(line)
	if name == "" {
		name = domain.GuestName()
	}
	if err := domain.ValidateName(name); err != nil {
		_ = enc.Encode(domain.NewSystem(fmt.Sprintf("invalid name %q, connection refused", name)))
		return "", err
	}
	h := NewHandle(s.buffer)
	if err := s.registry.Register(name, h); err != nil {
		_ = enc.Encode(domain.NewSystem(fmt.Sprintf("name %s is already taken", name)))
		return "", err
	}
	s.handle = h
	return name, nil
}

// writePump drains the handle to the socket in receipt order. It ends when
// the handle closes (session exit or server shutdown) or a write fails;
// closing the socket on the way out unblocks a reader parked in Decode.
func (s *Session) writePump(enc *wire.Encoder) {
	defer func() {
		s.conn.Close()
		s.pump.Done()
	}()
	for m := range s.handle.Messages() {
		if err := enc.Encode(m); err != nil {
			s.log.Warn("write failed", "user", s.name, "err", err)
			return
		}
	}
}

func (s *Session) readLoop(dec *wire.Decoder) {
	for {
		m, err := dec.Decode()
		if err != nil {
			switch {
			case stderrors.Is(err, io.EOF):
				s.log.Debug("peer disconnected", "user", s.name)
			case stderrors.Is(err, errors.ErrMalformedFrame):
				s.log.Warn("malformed frame, dropping connection", "user", s.name, "err", err)
			default:
				s.log.Debug("read failed", "user", s.name, "err", err)
			}
			return
		}
		switch m.Type {
		case domain.TypeChat:
			s.handleChat(m)
		case domain.TypeRosterRequest:
			s.handleRoster()
		case domain.TypeExit:
			return
		default:
			s.log.Debug("ignoring frame", "user", s.name, "type", m.Type)
		}
	}
}

func (s *Session) handleChat(m domain.Message) {
	body := m.Body
	if s.moderator != nil {
		sanitized, hits := s.moderator.Censor(body)
		if len(hits) > 0 {
			s.log.Warn("censored message",
				"user", s.name,
				"words", len(hits),
				"lang", moderation.Language(body))
		}
		body = sanitized
	}

	out := domain.NewChat(s.name, m.To, body)
	if m.To == "" {
		s.broadcaster.BroadcastAll(out, s.name)
		return
	}
	if err := s.broadcaster.SendTo(m.To, out); err != nil {
		tip := domain.NewSystem(fmt.Sprintf("user %s is not online", m.To))
		if derr := s.handle.Deliver(tip); derr != nil {
			s.log.Debug("tip lost", "user", s.name, "err", derr)
		}
	}
}

// handleRoster answers through the session's own handle so the reply keeps
// its place among concurrently broadcast messages.
func (s *Session) handleRoster() {
	reply := domain.NewRosterReply(s.registry.ListSummaries())
	if err := s.handle.Deliver(reply); err != nil {
		s.log.Debug("roster reply lost", "user", s.name, "err", err)
	}
}

func (s *Session) close() {
	s.state.Store(int32(StateClosing))
	// During server shutdown the coordinator has already drained the
	// registry, so Deregister reports false and no leave notice is sent.
	if s.registry.Deregister(s.name) {
		s.broadcaster.BroadcastAll(domain.NewSystem(fmt.Sprintf("%s left the room", s.name)), s.name)
	}
	s.handle.Close()
	s.pump.Wait()
	s.log.Info("user left", "user", s.name)
}
