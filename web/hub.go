package web

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one browser tab connected to the resampler monitor's live
// dashboard over WebSocket.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans out JSON state/meter frames (see Server's state/meters message
// shapes) to every connected dashboard client and routes incoming
// set_ratio commands back to Server via the readPump callback.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub with no clients attached.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run drives the hub's register/unregister/broadcast event loop. Intended
// to run in its own goroutine for the lifetime of the web server.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case frame := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					// client's send buffer is full (a slow/stalled
					// dashboard tab); drop it rather than block the
					// meterBroadcastLoop ticker for every other client.
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a JSON frame for delivery to every connected client.
func (h *Hub) Broadcast(frame []byte) {
	select {
	case h.broadcast <- frame:
	default:
		// Broadcast queue full (dashboard clients falling behind the
		// meter ticker); drop this frame, a fresher one follows shortly.
	}
}

// ClientCount returns the number of dashboard tabs currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// writePump delivers queued frames to this client's WebSocket connection
// until the connection errors or the hub closes its send channel.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()

	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

// readPump reads incoming control frames (set_ratio commands) from this
// client's WebSocket connection and hands each one to onMessage.
func (c *Client) readPump(onMessage func([]byte)) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if onMessage != nil {
			onMessage(frame)
		}
	}
}
