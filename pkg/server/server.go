// Package server implements the chat session and protocol engine: it
// terminates client connections, decodes the line protocol, maintains the
// live connection/user/name mapping and routes broadcast, private and
// presence traffic.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/L3n44nd/OnlineChatServer/pkg/protocol"
	"github.com/L3n44nd/OnlineChatServer/pkg/store"
)

type eventKind int

const (
	eventConnected eventKind = iota
	eventFrame
	eventDisconnected
)

// event is one unit of work for the dispatcher loop. Connection goroutines
// only read bytes and enqueue events; every directory and store access
// happens on the loop.
type event struct {
	kind eventKind
	c    *client
	line string
}

// Server represents the chat server
type Server struct {
	store  CredentialStore
	config ServerConfig

	listener   net.Listener
	httpServer *http.Server

	directory *Directory // owned by the event loop
	events    chan event

	clients   map[uint64]*client // all live connections, authenticated or not
	clientsMu sync.Mutex

	metrics   *Metrics
	shutdown  chan struct{}
	wg        sync.WaitGroup
	nextID    atomic.Uint64
	online    atomic.Int64 // mirror of directory size for loops outside the event loop
	startTime time.Time
}

// NewServer creates a new server instance
func NewServer(dbPath string, config ServerConfig) (*Server, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	return &Server{
		store:     st,
		config:    config,
		directory: NewDirectory(),
		events:    make(chan event, 256),
		clients:   make(map[uint64]*client),
		shutdown:  make(chan struct{}),
		startTime: time.Now(),
	}, nil
}

// SetMetrics attaches Prometheus metrics to the server. Must be called
// before Start.
func (s *Server) SetMetrics(m *Metrics) {
	s.metrics = m
}

// Start starts the TCP listener, the event loop and the HTTP sidecar
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.TCPPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.wg.Add(1)
	go s.eventLoop()

	s.wg.Add(1)
	go s.acceptLoop()

	s.wg.Add(1)
	go s.statsLoop()

	if s.config.HTTPPort > 0 {
		if err := s.startHTTPServer(); err != nil {
			s.listener.Close()
			return err
		}
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop() error {
	close(s.shutdown)

	if s.listener != nil {
		s.listener.Close()
		s.listener = nil
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
		s.httpServer = nil
	}

	// Close all live connections so reader goroutines unblock
	s.clientsMu.Lock()
	for _, c := range s.clients {
		c.close()
	}
	s.clients = make(map[uint64]*client)
	s.clientsMu.Unlock()

	s.wg.Wait()

	return s.store.Close()
}

// Addr returns the address the TCP listener is bound to. Useful when the
// configured port is 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// OnlineUsers returns the number of authenticated sessions
func (s *Server) OnlineUsers() int {
	return int(s.online.Load())
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				errorLog.Printf("Accept error: %v", err)
				continue
			}
		}

		go s.handleConnection(conn)
	}
}

// handleConnection reads frames from a single connection and feeds them to
// the event loop. Runs until disconnect or shutdown; the disconnect event is
// emitted exactly once, on the way out.
func (s *Server) handleConnection(conn net.Conn) {
	// Disable Nagle's algorithm for immediate sends
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}

	c := &client{id: s.nextID.Add(1), conn: conn}
	s.addClient(c)

	debugLog.Printf("New connection from %s (#%d)", conn.RemoteAddr(), c.id)
	s.emit(event{kind: eventConnected, c: c})

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), s.config.MaxMessageLength+64)
	for scanner.Scan() {
		if !s.emit(event{kind: eventFrame, c: c, line: scanner.Text()}) {
			break
		}
	}
	// EOF, transport error or an oversized line all end the session the
	// same way.

	s.emit(event{kind: eventDisconnected, c: c})
	s.removeClient(c)
	c.close()
}

// emit enqueues an event, giving up during shutdown. Returns false when the
// server is shutting down.
func (s *Server) emit(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.shutdown:
		return false
	}
}

// eventLoop is the single dispatcher: it consumes connection lifecycle and
// frame events one at a time, so handlers run to completion without any
// locking around the directory or the store.
func (s *Server) eventLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.shutdown:
			return
		case ev := <-s.events:
			switch ev.kind {
			case eventConnected:
				s.onConnected(ev.c)
			case eventFrame:
				s.dispatch(ev.c, ev.line)
			case eventDisconnected:
				s.onDisconnected(ev.c)
			}
		}
	}
}

func (s *Server) onConnected(c *client) {
	if s.metrics != nil {
		s.metrics.RecordConnectionAccepted()
	}
}

// onDisconnected purges the session, if any, and tells everyone who is left.
// The user id becomes available again only through a fresh register/login.
func (s *Server) onDisconnected(c *client) {
	if userID, ok := s.directory.Unbind(c); ok {
		debugLog.Printf("Client #%d disconnected (user %d)", c.id, userID)
		s.syncOnline()
		s.broadcastPresence()
	} else {
		debugLog.Printf("Client #%d disconnected", c.id)
	}

	if s.metrics != nil {
		s.metrics.RecordConnectionClosed()
	}
}

// dispatch decodes one inbound frame and invokes the matching handler. A
// frame whose command code does not parse is dropped without a reply and
// without closing the connection.
func (s *Server) dispatch(c *client, line string) {
	cmd := protocol.ParseCommand(line)
	if cmd.Code == protocol.CmdUnknown {
		debugLog.Printf("Client #%d sent unparseable frame, dropping", c.id)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordCommandReceived(cmd.Code.String())
	}
	if cmd.Code != protocol.CmdLogout {
		logInbound(c, cmd.Code, cmd.Payload)
	}

	switch cmd.Code {
	case protocol.CmdRegister:
		s.handleRegister(c, cmd.Payload)
	case protocol.CmdLogin:
		s.handleLogin(c, cmd.Payload)
	case protocol.CmdLogout:
		s.handleLogout(c)
	case protocol.CmdMessage:
		s.handleBroadcast(c, cmd.Payload)
	case protocol.CmdPrivateMessage:
		s.handlePrivate(c, cmd.Payload)
	case protocol.CmdNameChange:
		s.handleNameChange(c, cmd.Payload)
	default:
		// Unknown numeric code: ignored, same as an unparseable one
	}
}

// send writes one response frame to a client. A failed write closes that
// client only; the disconnect event does the cleanup.
func (s *Server) send(c *client, code protocol.ResponseCode, line string) {
	if err := c.writeLine(line); err != nil {
		debugLog.Printf("Client #%d write failed (%s): %v", c.id, code, err)
		c.close()
		return
	}

	logOutbound(c, code)
	if s.metrics != nil {
		s.metrics.RecordResponseSent(code.String())
	}
}

// syncOnline mirrors the directory size into the atomic counter read by the
// stats loop and the health endpoint.
func (s *Server) syncOnline() {
	n := s.directory.Online()
	s.online.Store(int64(n))
	if s.metrics != nil {
		s.metrics.RecordActiveSessions(n)
	}
}

func (s *Server) addClient(c *client) {
	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c.id)
	s.clientsMu.Unlock()
}

// statsLoop periodically logs the online user count
func (s *Server) statsLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			debugLog.Printf("Online users: %d", s.online.Load())
		}
	}
}

// startHTTPServer starts the sidecar HTTP listener serving Prometheus
// metrics, the health check and the WebSocket transport
func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.healthHandler)
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := fmt.Sprintf(":%d", s.config.HTTPPort)
	httpListener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{Handler: mux}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(httpListener); err != nil && err != http.ErrServerClosed {
			errorLog.Printf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// healthHandler serves health check status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"online_users":   s.OnlineUsers(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		errorLog.Printf("Error encoding health JSON: %v", err)
	}
}
