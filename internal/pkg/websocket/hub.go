package websocket

import (
	"encoding/json"
	"sync"

	"github.com/campuspay/studentbank/internal/pkg/logger"
)

// Event is a realtime message pushed to connected clients
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// channelMessage targets an event at one subscription channel
type channelMessage struct {
	channel string
	data    []byte
}

// Hub maintains active websocket clients grouped by subscription channel and
// broadcasts events to them.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan channelMessage
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan channelMessage, 64),
	}
}

// Run processes register, unregister and broadcast requests until the
// channels close. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.channel] == nil {
				h.clients[client.channel] = make(map[*Client]bool)
			}
			h.clients[client.channel][client] = true
			h.mu.Unlock()
			logger.Debug().Str("channel", client.channel).Msg("Websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.channel]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.channel)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients[msg.channel] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer; drop the connection rather than block
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish sends an event to every client subscribed to the channel
func (h *Hub) Publish(channel string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("Failed to marshal websocket event")
		return
	}

	select {
	case h.broadcast <- channelMessage{channel: channel, data: data}:
	default:
		logger.Warn().Str("channel", channel).Msg("Websocket broadcast queue full, event dropped")
	}
}

// ClientCount returns the number of clients on a channel
func (h *Hub) ClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}
