package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/headsup/internal/game"
)

// Broadcaster is the game service's view of the transport: fan a message
// out to every peer or address one by key.
type Broadcaster interface {
	Broadcast(msg *Message)
	SendToKey(key string, msg *Message) error
}

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	service     *GameService
	httpServer  *http.Server

	// seats counts reserved slots, claimed before the upgrade so two
	// concurrent handshakes cannot both take the last one.
	seats int
}

// NewServer creates a new WebSocket server
func NewServer(addr string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetGameService sets the game service for the server
func (s *Server) SetGameService(service *GameService) {
	s.service = service
}

// Start starts the WebSocket server
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the WebSocket server
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "key", conn.Key(), "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				s.seats--
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "key", conn.Key(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// reserveSeat claims a slot ahead of the upgrade; reports false when the
// table is full.
func (s *Server) reserveSeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seats >= game.MaxUsers {
		return false
	}
	s.seats++
	return true
}

func (s *Server) releaseSeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats--
}

// handleWebSocket handles WebSocket upgrade requests. The table seats two;
// further upgrades are refused before the handshake completes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.reserveSeat() {
		http.Error(w, "table is full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.releaseSeat()
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, uuid.NewString(), s.logger, s.service)
	s.register <- client
	client.Start()

	ack, err := NewMessage(MessageTypeConnectionSuccessful, ConnectionSuccessfulData{
		Key: client.Key(),
	})
	if err != nil {
		s.logger.Error("Failed to create connection ack", "error", err)
	} else {
		_ = client.SendMessage(ack)
	}

	go s.awaitTeardown(client)
}

// awaitTeardown hands the connection to the run loop once it closes. After
// Stop the run loop no longer drains unregister, so bail out on the server
// context instead of blocking forever.
func (s *Server) awaitTeardown(c *Connection) {
	<-c.ctx.Done()
	select {
	case s.unregister <- c:
	case <-s.ctx.Done():
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// Broadcast sends a message to every connected peer
func (s *Server) Broadcast(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send message to client", "error", err, "key", conn.Key())
		}
	}
}

// SendToKey sends a message to the peer holding the given key
func (s *Server) SendToKey(key string, msg *Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.Key() == key {
			return conn.SendMessage(msg)
		}
	}

	return fmt.Errorf("no connection for key: %s", key)
}

// ConnectedKeys returns the keys of every connected peer
func (s *Server) ConnectedKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for conn := range s.connections {
		keys = append(keys, conn.Key())
	}
	return keys
}
