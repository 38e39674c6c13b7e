// Package hub fans voice lifecycle events out to websocket subscribers and
// routes inbound speak/stop commands back to the daemon, using the
// channel-based fan-out pattern.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Command is an inbound request from a websocket client.
type Command struct {
	// Action is "speak" or "stop".
	Action string `json:"action"`

	// Text, Language and Route apply to the speak action.
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
	Route    string `json:"route,omitempty"`
}

// CommandHandler receives client commands. It runs on client read
// goroutines and must not block.
type CommandHandler func(Command)

// Hub maintains the set of active clients and broadcasts event payloads
// to all of them.
type Hub struct {
	logger *slog.Logger

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu        sync.RWMutex
	onCommand CommandHandler
}

// New creates a hub. Call Run in a goroutine before accepting clients.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger.With("component", "hub"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetCommandHandler registers the receiver for client commands.
func (h *Hub) SetCommandHandler(fn CommandHandler) {
	h.mu.Lock()
	h.onCommand = fn
	h.mu.Unlock()
}

// Run drives registration and broadcast until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "clients", count)

		case payload := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Buffer full: the client is too slow to keep.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a raw payload for every connected client. Drops the
// payload when the broadcast buffer is full rather than blocking.
func (h *Hub) Broadcast(payload []byte) {
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("broadcast buffer full, dropping payload")
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) dispatch(cmd Command) {
	h.mu.RLock()
	fn := h.onCommand
	h.mu.RUnlock()
	if fn != nil {
		fn(cmd)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
