package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/shoeaxis/internal/session"
)

// Server represents the WebSocket server. Every connection gets its own
// session from the registry, removed again when the client disconnects.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	registry    *session.Registry
	connections map[*Connection]bool
	clock       quartz.Clock
	logger      *log.Logger
	mu          sync.RWMutex
	httpServer  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock driving keepalive pings and message stamps.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a new WebSocket server
func NewServer(addr string, registry *session.Registry, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Clients are local front ends; any origin may connect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		registry:    registry,
		connections: make(map[*Connection]bool),
		clock:       quartz.NewReal(),
		logger:      logger.WithPrefix("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving /ws, /health and /stats.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return nil
}

// Shutdown closes every connection and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	srv := s.httpServer
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Connections returns the number of connected clients.
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	sess := s.registry.Create()
	client := NewConnection(ws, sess, s.clock, s.logger)

	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "session", sess.ID(), "remote", r.RemoteAddr, "total", total)

	// The welcome must be the first frame on the wire.
	s.welcome(client, sess)
	client.Start()

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.registry.Remove(sess.ID())
		s.logger.Info("Client disconnected", "session", sess.ID(), "total", total)
	}()
}

func (s *Server) welcome(client *Connection, sess *session.Session) {
	snap, err := sess.Refresh(client.ctx)
	if err != nil {
		s.logger.Error("Initial refresh failed", "session", sess.ID(), "error", err)
		client.sendError(nil, ErrCodeRefreshFailed, err.Error())
		return
	}
	client.reply(nil, MessageTypeWelcome, WelcomeData{SessionID: sess.ID(), Snapshot: snap})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

type statsResponse struct {
	Connections int      `json:"connections"`
	Sessions    []string `json:"sessions"`
}

// handleStats reports connected clients and live sessions
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statsResponse{
		Connections: s.Connections(),
		Sessions:    s.registry.IDs(),
	})
}
