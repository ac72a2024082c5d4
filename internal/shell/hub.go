// Package shell is the message bus between the daemon and the
// graphical shell. Shells connect over a websocket; the daemon pushes
// display lines, chat entries and streamed reply fragments, and
// receives turn commands back.
package shell

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is a daemon→shell frame.
//
// Kinds: "display" (status line), "chat" (chat-log entry), "chunk"
// (streamed reply fragment), "reply" (final answer to a command),
// "hood" (restore the idle surface).
type Event struct {
	Kind string `json:"kind"`
	From string `json:"from,omitempty"`
	Text string `json:"text,omitempty"`
}

// Command is a shell→daemon frame.
//
// Kinds: "ask" (text turn), "mic" (voice turn), "regenerate", "listen"
// (manual microphone guard on/off), "audio" (recorded blob to
// transcribe and run as a turn).
type Command struct {
	Kind   string `json:"kind"`
	Text   string `json:"text,omitempty"`
	Active bool   `json:"active,omitempty"`
	Audio  []byte `json:"audio,omitempty"`
	Name   string `json:"name,omitempty"` // original filename of an audio blob
}

// Handlers are the daemon callbacks behind shell commands. Any may be
// nil; the corresponding command is then ignored.
type Handlers struct {
	Ask        func(text string) string
	Mic        func()
	Regenerate func(text string) string
	Listen     func(active bool)
	Audio      func(data []byte, name string) string
}

type Hub struct {
	handlers Handlers
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			// The shell is served from the same host; skip origin games.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: map[*websocket.Conn]bool{},
	}
}

// SetHandlers installs the daemon callbacks. Called once during boot,
// before the listener starts; the hub and the session layer reference
// each other, so the callbacks cannot be construction arguments.
func (h *Hub) SetHandlers(handlers Handlers) {
	h.handlers = handlers
}

// ServeHTTP upgrades the connection and pumps commands until the shell
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("shell upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
	h.logger.Info("shell connected", "remote", conn.RemoteAddr())

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
		h.logger.Info("shell disconnected", "remote", conn.RemoteAddr())
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.logger.Warn("bad shell command", "err", err)
			continue
		}
		// Turns block on capture and the chat backend, so they run off
		// the read loop. Guard toggles must keep their arrival order: a
		// fast on/off applied backwards would leave the guard held, so
		// "listen" runs inline.
		if cmd.Kind == "listen" {
			h.dispatch(conn, cmd)
		} else {
			go h.dispatch(conn, cmd)
		}
	}
}

func (h *Hub) dispatch(conn *websocket.Conn, cmd Command) {
	switch cmd.Kind {
	case "ask":
		if h.handlers.Ask != nil {
			h.send(conn, Event{Kind: "reply", Text: h.handlers.Ask(cmd.Text)})
		}
	case "mic":
		if h.handlers.Mic != nil {
			h.handlers.Mic()
		}
	case "regenerate":
		if h.handlers.Regenerate != nil {
			h.send(conn, Event{Kind: "reply", Text: h.handlers.Regenerate(cmd.Text)})
		}
	case "listen":
		if h.handlers.Listen != nil {
			h.handlers.Listen(cmd.Active)
		}
	case "audio":
		if h.handlers.Audio != nil {
			h.send(conn, Event{Kind: "reply", Text: h.handlers.Audio(cmd.Audio, cmd.Name)})
		}
	default:
		h.logger.Warn("unknown shell command", "kind", cmd.Kind)
	}
}

// Display pushes a status line ("listening....", recognized text).
func (h *Hub) Display(text string) {
	h.Broadcast(Event{Kind: "display", Text: text})
}

// Chat appends an entry to the shell's chat log.
func (h *Hub) Chat(from, text string) {
	h.Broadcast(Event{Kind: "chat", From: from, Text: text})
}

// Chunk relays one streamed reply fragment.
func (h *Hub) Chunk(text string) {
	h.Broadcast(Event{Kind: "chunk", Text: text})
}

// ShowHood restores the shell's idle surface after a turn.
func (h *Hub) ShowHood() {
	h.Broadcast(Event{Kind: "hood"})
}

func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warn("shell write failed", "err", err)
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

func (h *Hub) send(conn *websocket.Conn, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.conns[conn] {
		return
	}
	if err := conn.WriteJSON(ev); err != nil {
		h.logger.Warn("shell write failed", "err", err)
	}
}

// Close drops every shell connection. Called on session exit so the
// last spoken output is flushed before the process ends.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "goodbye"))
		conn.Close()
		delete(h.conns, conn)
	}
}
