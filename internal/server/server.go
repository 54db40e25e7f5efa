// Package server exposes the game console over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/scenekit/internal/core/observability/log"
)

// Config holds console server configuration
type Config struct {
	// ListenAddr is the host:port the console binds.
	ListenAddr string
	// Path is the WebSocket endpoint.
	Path string
	// MaxClients bounds concurrent console connections.
	MaxClients int
	// CommandTimeout bounds one command, including waiting for the loop.
	CommandTimeout time.Duration
	// MaxMessageSize is the read limit per message.
	MaxMessageSize int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:7777",
		Path:           "/console",
		MaxClients:     8,
		CommandTimeout: 10 * time.Second,
		MaxMessageSize: 4096,
	}
}

// Request is one console command sent by a client.
type Request struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
}

// Reply answers a Request.
type Reply struct {
	ID     string `json:"id,omitempty"`
	OK     bool   `json:"ok"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server serves the console to WebSocket clients. Each client gets a
// reply per request, in order.
type Server struct {
	config   Config
	console  *Console
	logger   log.Log
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	running atomic.Bool
	served  atomic.Uint64
}

func NewServer(config Config, console *Console, logger log.Log) *Server {
	defaults := DefaultServerConfig()
	if config.Path == "" {
		config.Path = defaults.Path
	}
	if config.MaxClients <= 0 {
		config.MaxClients = defaults.MaxClients
	}
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = defaults.CommandTimeout
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Server{
		config:  config,
		console: console,
		logger:  logger.With(log.String("component", "console")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler serving the console endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.config.Path, s.handleWebSocket)
	return mux
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	if s.config.ListenAddr == "" {
		s.running.Store(false)
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("console server failed", log.Error(err))
		}
	}()
	s.logger.Info("console listening", log.String("addr", listener.Addr().String()), log.String("path", s.config.Path))
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the HTTP server down and closes every console connection.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	for conn := range s.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	clear(s.clients)
	s.mu.Unlock()

	s.logger.Info("console stopped", log.Uint64("commands", s.served.Load()))
	return err
}

func (s *Server) register(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) >= s.config.MaxClients {
		return ErrMaxClientsReached
	}
	s.clients[conn] = struct{}{}
	return nil
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	if err := s.register(conn); err != nil {
		s.logger.Warn("console client rejected", log.String("remote", remote), log.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second))
		return
	}
	defer s.unregister(conn)

	conn.SetReadLimit(s.config.MaxMessageSize)
	s.logger.Info("console client connected", log.String("remote", remote))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("console read ended", log.String("remote", remote), log.Error(err))
			}
			return
		}
		if err := conn.WriteJSON(s.handle(r.Context(), data)); err != nil {
			s.logger.Warn("console write failed", log.String("remote", remote), log.Error(err))
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, data []byte) Reply {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Reply{Error: fmt.Errorf("%w: %w", ErrInvalidMessage, err).Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.CommandTimeout)
	defer cancel()

	s.served.Add(1)
	out, err := s.console.Execute(ctx, req.Command)
	if err != nil {
		s.logger.Warn("console command failed", log.String("command", req.Command), log.Error(err))
		return Reply{ID: req.ID, Error: err.Error()}
	}
	s.logger.Info("console command", log.String("command", req.Command))
	return Reply{ID: req.ID, OK: true, Output: out}
}
