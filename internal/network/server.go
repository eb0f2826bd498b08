package network

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/amalg/gridroute/internal/search"
)

// Server answers route queries on one grid for any number of clients.
type Server struct {
	planner  *search.Planner
	pacing   Pacing
	maxFrame int
	addr     string
	log      logrus.FieldLogger
	listener net.Listener
	conns    map[net.Conn]string // Session ID, empty until hello
	mu       sync.RWMutex
	wg       sync.WaitGroup
	done     chan struct{}
}

// NewServer creates a route server. Searches share planner, which is safe
// for concurrent use. pacing is handed to every client in its welcome.
func NewServer(addr string, planner *search.Planner, pacing Pacing, log logrus.FieldLogger) *Server {
	return &Server{
		planner:  planner,
		pacing:   pacing,
		maxFrame: MaxMessageSize,
		addr:     addr,
		log:      log,
		conns:    make(map[net.Conn]string),
		done:     make(chan struct{}),
	}
}

// Start begins accepting connections.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	g := s.planner.Grid()
	s.log.WithFields(logrus.Fields{
		"addr":   s.listener.Addr().String(),
		"width":  g.Width(),
		"height": g.Height(),
	}).Info("route server listening")

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every client connection, then waits for the
// connection goroutines to exit.
func (s *Server) Stop() {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.RLock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.RUnlock()
	s.wg.Wait()
}

// Sessions returns the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, id := range s.conns {
		if id != "" {
			n++
		}
	}
	return n
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.log.WithError(err).Warn("accept failed")
				continue
			}
		}
		s.mu.Lock()
		select {
		case <-s.done:
			s.mu.Unlock()
			conn.Close()
			return
		default:
		}
		s.conns[conn] = ""
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	defer s.wg.Done()
	defer s.removeConn(conn)

	log := s.log.WithField("remote", conn.RemoteAddr().String())

	env, err := Decode(conn)
	if err != nil {
		log.WithError(err).Warn("failed to read hello")
		return
	}
	if env.Type != MsgHello {
		log.WithField("type", env.Type).Warn("expected hello")
		Encode(conn, MsgError, ErrorMsg{Message: "expected hello message"})
		return
	}

	var hello HelloMsg
	if err := DecodePayload(env, &hello); err != nil {
		log.WithError(err).Warn("failed to decode hello")
		return
	}

	sessionID := uuid.NewString()
	log = log.WithFields(logrus.Fields{"session": sessionID, "name": hello.Name})

	s.mu.Lock()
	s.conns[conn] = sessionID
	s.mu.Unlock()

	welcome := WelcomeMsg{
		SessionID: sessionID,
		Matrix:    s.planner.Grid().Matrix(),
		Pacing:    s.pacing,
	}
	if err := Encode(conn, MsgWelcome, welcome); err != nil {
		log.WithError(err).Warn("failed to send welcome")
		return
	}
	log.Info("session opened")

	for {
		env, err := Decode(conn)
		if err != nil {
			select {
			case <-s.done:
			default:
				log.WithError(err).Info("session closed")
			}
			return
		}

		switch env.Type {
		case MsgSearch:
			if err := s.handleSearch(conn, env, log); err != nil {
				log.WithError(err).Warn("failed to send reply")
				return
			}
		default:
			log.WithField("type", env.Type).Warn("unknown message type")
			if err := Encode(conn, MsgError, ErrorMsg{Message: fmt.Sprintf("unknown message type %q", env.Type)}); err != nil {
				return
			}
		}
	}
}

// handleSearch runs one search and writes the reply. Only write failures are
// returned; search failures go back to the client as MsgError.
func (s *Server) handleSearch(conn net.Conn, env *Envelope, log logrus.FieldLogger) error {
	var req SearchMsg
	if err := DecodePayload(env, &req); err != nil {
		log.WithError(err).Warn("invalid search request")
		return Encode(conn, MsgError, ErrorMsg{Message: "invalid search request"})
	}

	log = log.WithFields(logrus.Fields{
		"request": req.RequestID,
		"origin":  req.Origin.String(),
		"target":  req.Target.String(),
	})

	res, err := s.planner.Search(req.Origin, req.Target)
	if err != nil {
		log.WithError(err).Info("search rejected")
		return Encode(conn, MsgError, ErrorMsg{RequestID: req.RequestID, Message: err.Error()})
	}

	log.WithFields(logrus.Fields{
		"found":   res.Found,
		"visited": len(res.Visited),
		"layers":  res.Layers,
	}).Debug("search done")
	err = encodeLimit(conn, MsgResult, ResultMsg{RequestID: req.RequestID, Result: res}, s.maxFrame)
	if errors.Is(err, ErrMessageTooLarge) {
		log.WithError(err).Warn("result does not fit in one frame")
		return Encode(conn, MsgError, ErrorMsg{RequestID: req.RequestID, Message: err.Error()})
	}
	return err
}

func (s *Server) removeConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}
