// Package watch is a minimal recompile-on-change dev server
// (SPEC_FULL.md §4.11): it polls an AST JSON file's mtime, recompiles
// through internal/driver on change, and broadcasts a pass/fail frame to
// connected WebSocket clients. Grounded on the teacher's
// internal/network/websocket.go + websocket_server.go (WebSocketServer /
// Clients map / upgrade handler / broadcast loop, reused directly) — this
// is explicitly not an LSP server (internal/lsp was dropped, see
// DESIGN.md): it speaks exactly one ad hoc JSON frame, not
// textDocument/* requests.
package watch

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"escomp/internal/driver"
)

// Frame is the one message shape this server ever sends: the diagnostics
// of the most recent compile attempt. It is never sent before that
// attempt completes (the testable property — no partial
// frames).
type Frame struct {
	OK          bool     `json:"ok"`
	Diagnostics []string `json:"diagnostics"`
	OutputPath  string   `json:"output_path,omitempty"`
}

// Server polls astPath for changes and rebroadcasts the compile result to
// every connected client.
type Server struct {
	astPath string
	opts    driver.Options
	poll    time.Duration

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*websocket.Conn

	lastMod time.Time
}

// New constructs a Server that watches astPath and recompiles it with
// opts on every observed modification.
func New(astPath string, opts driver.Options, poll time.Duration) *Server {
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	return &Server{
		astPath: astPath,
		opts:    opts,
		poll:    poll,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*websocket.Conn),
	}
}

// Handler upgrades an incoming HTTP request to a WebSocket connection and
// registers it as a broadcast recipient.
func (s *Server) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := r.RemoteAddr + "-" + time.Now().Format(time.RFC3339Nano)

	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends frame to every currently connected client, dropping any
// connection that errors (mirroring the teacher's WebSocketBroadcast:
// best-effort fan-out, a write failure marks that one client dead rather
// than aborting the whole broadcast).
func (s *Server) Broadcast(frame Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	s.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(s.clients))
	for id, c := range s.clients {
		conns[id] = c
	}
	s.mu.RUnlock()

	var lastErr error
	for id, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			lastErr = err
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
		}
	}
	return lastErr
}

// Run polls astPath until stop is closed, recompiling and broadcasting on
// every change. It compiles once on entry and again on the first tick
// (lastMod starts at zero); after that it compiles only when the file's
// mtime advances. A client that connects after those first broadcasts
// receives nothing until the next change, since Handler sends no frame on
// connect.
func (s *Server) Run(stop <-chan struct{}) {
	s.recompileAndBroadcast()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			info, err := os.Stat(s.astPath)
			if err != nil {
				continue
			}
			if info.ModTime().After(s.lastMod) {
				s.lastMod = info.ModTime()
				s.recompileAndBroadcast()
			}
		}
	}
}

func (s *Server) recompileAndBroadcast() {
	astJSON, err := os.ReadFile(s.astPath)
	if err != nil {
		s.Broadcast(Frame{OK: false, Diagnostics: []string{err.Error()}})
		return
	}

	result, err := driver.Compile(astJSON, s.opts)
	if err != nil {
		s.Broadcast(Frame{OK: false, Diagnostics: []string{err.Error()}})
		return
	}

	frame := Frame{OK: result.Success(), OutputPath: result.OutputPath}
	for _, d := range result.Diagnostics {
		frame.Diagnostics = append(frame.Diagnostics, d.Error())
	}
	s.Broadcast(frame)
}
