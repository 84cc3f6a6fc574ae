package runtime

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"chat-room/contract"
	"chat-room/domain"
	"chat-room/moderation"
)

// Server accepts connections and spawns one Session per client. It is a
// contract.Worker: it runs under the supervisor and stops when its context
// is canceled, at which point the shutdown coordinator path in Close runs.
type Server struct {
	listener    net.Listener
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	moderator   *moderation.Moderator
	log         *slog.Logger
	buffer      int

	closeOnce sync.Once
	sessions  sync.WaitGroup
}

func NewServer(listener net.Listener, registry contract.IRegistry,
	broadcaster contract.IBroadcaster, moderator *moderation.Moderator,
	buffer int, log *slog.Logger) *Server {
	return &Server{
		listener:    listener,
		registry:    registry,
		broadcaster: broadcaster,
		moderator:   moderator,
		log:         log,
		buffer:      buffer,
	}
}

// Run is the accept loop. A canceled context triggers Close, which makes
// Accept fail and the loop return cleanly.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	s.log.Info("listening", "addr", s.listener.Addr().String())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("accept failed", "err", err)
			continue
		}
		s.log.Debug("connection accepted", "remote", conn.RemoteAddr())
		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			NewSession(conn, s.registry, s.broadcaster, s.moderator, s.buffer, s.log).Run()
		}()
	}
}

// Close is the shutdown coordinator: notify everyone, drain the registry,
// close every handle, stop accepting. Safe to trigger any number of times;
// the sequence runs exactly once.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.log.Info("server closing, notifying clients")
		s.broadcaster.BroadcastAll(domain.NewSystem("server shutting down"), "")
		for _, e := range s.registry.Clear() {
			e.Out.Close()
		}
		_ = s.listener.Close()
	})
}

// Drain waits for all session goroutines after Close.
func (s *Server) Drain(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
