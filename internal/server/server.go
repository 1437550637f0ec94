package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rickgao/screen-relay/internal/config"
	"github.com/rickgao/screen-relay/internal/registry"
	"github.com/rickgao/screen-relay/internal/relay"
)

// Server accepts WebSocket connections and pumps their messages into
// the relay.
type Server struct {
	cfg        config.ServerConfig
	sendBuffer int
	relay      *relay.Relay
	logger     *slog.Logger
	upgrader   websocket.Upgrader

	httpServer *http.Server

	mu    sync.Mutex
	conns map[*registry.Conn]struct{}
	wg    sync.WaitGroup
}

// New creates a Server. Origin checks are disabled: transport-level
// authentication is out of scope for the relay.
func New(cfg config.ServerConfig, sendBuffer int, rel *relay.Relay, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:        cfg,
		sendBuffer: sendBuffer,
		relay:      rel,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*registry.Conn]struct{}),
	}
}

// Start binds the listener and begins accepting connections. It
// returns once the listener is bound; serving continues in the
// background.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebSocket)

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("relay listener error", "error", err)
		}
	}()

	s.logger.Info("relay listening", "addr", listener.Addr().String())
	return nil
}

// Stop force-closes every open connection, waits for their read loops
// with the context's deadline, then shuts down the listener.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping relay server")

	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("relay server stop timed out waiting for connections")
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown listener: %w", err)
		}
	}

	s.logger.Info("relay server stopped")
	return nil
}

// ConnCount returns the number of open transport connections,
// including ones that have not completed a handshake yet.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	ws, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", req.RemoteAddr, "error", err)
		return
	}
	ws.SetReadLimit(s.cfg.MaxMessageSize)

	conn := registry.NewConn(ws, s.sendBuffer, s.logger)

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	s.wg.Add(1)

	s.logger.Debug("connection accepted", "remote", req.RemoteAddr)
	s.readLoop(conn, ws)
}

// readLoop reads messages sequentially until the transport reports
// close or error, then tears the connection down.
func (s *Server) readLoop(conn *registry.Conn, ws *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.wg.Done()
	}()

	s.relay.HandleOpen(conn)

	var readErr error
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				s.logger.Warn("websocket read error", "conn_id", conn.ID(), "error", err)
			}
			readErr = err
			break
		}
		s.relay.HandleMessage(conn, data)
	}

	s.relay.HandleClose(conn, readErr)
}
