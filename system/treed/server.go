package treed

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/treeconf/treeconf"
)

// Spec configures a Server.
type Spec struct {
	// Model is the tree served to clients. A nil model serves an empty
	// tree.
	Model *treeconf.Model

	// Log receives server and session logs; defaults to a JSON handler
	// on stdout.
	Log *slog.Logger
}

// Server accepts TCP connections and runs one Session per connection.
type Server struct {
	Spec Spec

	listener net.Listener

	sessions   map[string]*Session
	sessionsMu sync.RWMutex
	sessionSeq atomic.Int64

	wg     sync.WaitGroup
	closed atomic.Bool
}

// New creates a server for the given spec.
func New(spec *Spec) *Server {
	if spec.Log == nil {
		spec.Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(),
		}))
	}
	if spec.Model == nil {
		spec.Model = treeconf.New(nil)
	}
	return &Server{
		Spec:     *spec,
		sessions: make(map[string]*Session),
	}
}

func slogLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Start listens on addr and accepts connections in a background
// goroutine. Close stops the server.
func (s *Server) Start(addr string) error {
	if s.listener != nil {
		return fmt.Errorf("listener already running")
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.serve()
	}()
	return nil
}

// Addr returns the listener's address, or "" if not running.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) serve() {
	s.Spec.Log.Info("treed listener started", "addr", s.listener.Addr().String())

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.Spec.Log.Error("accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection creates and runs a session for the connection.
func (s *Server) handleConnection(conn net.Conn) {
	id := fmt.Sprintf("tcp-%d", s.sessionSeq.Add(1))
	s.Spec.Log.Debug("new connection", "session", id, "remote", conn.RemoteAddr().String())

	session := newSession(id, conn, s)

	s.sessionsMu.Lock()
	s.sessions[id] = session
	s.sessionsMu.Unlock()

	session.run()

	s.sessionsMu.Lock()
	delete(s.sessions, id)
	s.sessionsMu.Unlock()

	s.Spec.Log.Debug("session ended", "session", id)
}

// Close shuts down the listener and all sessions.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.Spec.Log.Error("error closing listener", "error", err)
		}
	}

	s.sessionsMu.RLock()
	for _, session := range s.sessions {
		session.close()
	}
	s.sessionsMu.RUnlock()

	s.wg.Wait()
	s.Spec.Log.Info("treed listener stopped")
	return nil
}

// SessionCount returns the number of active sessions.
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// notifyTracked pushes tracked-state notifications to every session
// after a successful mutation.
func (s *Server) notifyTracked(ctx context.Context) {
	s.sessionsMu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.sessionsMu.RUnlock()

	for _, session := range sessions {
		session.notifyTracked(ctx)
	}
}
