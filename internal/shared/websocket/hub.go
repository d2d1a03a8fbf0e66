package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/cristianortiz/bidmaster/internal/shared/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sendBuffer    = 32
	controlBuffer = 64
	dataBuffer    = 256
)

// Hub keeps the client registry, grouped in rooms, and fans messages out to
// every client of a room. Run owns all registry mutations.
type Hub struct {
	mu sync.RWMutex
	// room -> set of clients
	rooms map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	// InboundMessages is consumed by module-specific handlers.
	InboundMessages chan *ClientMessage
}

// Client represents a single websocket connection subscribed to one room.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	// Buffered channel of outbound messages.
	Send chan []byte
	Room string
	ID   string
}

type Message struct {
	Room string
	Data []byte
}

// ClientMessage wraps a message received from a client together with its
// sender.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		rooms:           make(map[string]map[*Client]bool),
		broadcast:       make(chan *Message, dataBuffer),
		register:        make(chan *Client, controlBuffer),
		unregister:      make(chan *Client, controlBuffer),
		InboundMessages: make(chan *ClientMessage, dataBuffer),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, room, id string) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Room: room,
		ID:   id,
	}
}

// Run processes registrations and broadcasts until ctx is done, then closes
// every client's Send channel so their write pumps exit.
func (h *Hub) Run(ctx context.Context) {
	log.Info("Websocket Hub started")
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Info("Websocket Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()
			log.Info("Client registered",
				zap.String("clientID", client.ID),
				zap.String("room", client.Room),
				zap.Int("total_clients", h.TotalClients()),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			removed := h.remove(client)
			h.mu.Unlock()
			if removed {
				log.Info("Client unregistered",
					zap.String("clientID", client.ID),
					zap.String("room", client.Room),
					zap.Int("total_clients", h.TotalClients()),
				)
			}

		case message := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[message.Room]
			log.Debug("Broadcasting message to room", zap.String("room", message.Room), zap.Int("clients", len(clients)))
			for client := range clients {
				select {
				case client.Send <- message.Data:
				default:
					// slow consumer; drop it rather than block the room
					h.remove(client)
					log.Warn("Client send buffer full, unregistering",
						zap.String("clientID", client.ID),
						zap.String("room", client.Room),
					)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove deletes client from its room and closes its Send channel. Callers
// hold h.mu. It reports whether the client was still registered.
func (h *Hub) remove(client *Client) bool {
	clients, ok := h.rooms[client.Room]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.rooms, client.Room)
	}
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		for client := range clients {
			close(client.Send)
		}
		delete(h.rooms, room)
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, clients := range h.rooms {
		count += len(clients)
	}
	return count
}

// RegisterClient queues a client for registration. When the queue is full the
// connection is closed.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	default:
		log.Error("Register channel is full, client registration failed",
			zap.String("clientID", client.ID),
			zap.String("room", client.Room),
		)
		if client.Conn != nil {
			_ = client.Conn.Close()
		}
		return false
	}
}

// UnregisterClient queues a client for removal. Unregistering twice is safe.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("Unregister channel is full, client unregistration failed",
			zap.String("clientID", client.ID),
			zap.String("room", client.Room),
		)
	}
}

// BroadcastToRoom sends data to every client subscribed to room.
func (h *Hub) BroadcastToRoom(room string, data []byte) {
	select {
	case h.broadcast <- &Message{Room: room, Data: data}:
	default:
		log.Error("Broadcast channel is full, message dropped", zap.String("room", room))
	}
}

// SendTo queues data for a single client without blocking.
func (c *Client) SendTo(data []byte) (sent bool) {
	defer func() {
		// Send may have been closed by the hub concurrently
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// ReadPump reads messages from the connection and hands them to the hub's
// InboundMessages channel. It blocks until the connection fails or ctx is
// done, so it runs on the connection's handler goroutine.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
		log.Debug("ReadPump stopped", zap.String("clientID", c.ID), zap.String("room", c.Room))
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if ctx.Err() != nil {
			return
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error",
					zap.String("clientID", c.ID),
					zap.String("room", c.Room),
					zap.Error(err),
				)
			} else {
				log.Info("WebSocket connection closed by peer",
					zap.String("clientID", c.ID),
					zap.String("room", c.Room),
				)
			}
			return
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("Hub InboundMessages channel is full, dropping message",
				zap.String("clientID", c.ID),
				zap.String("room", c.Room),
			)
		}
	}
}

// WritePump writes queued messages and pings to the connection. It is the
// only writer of the connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
		log.Debug("WritePump stopped", zap.String("clientID", c.ID), zap.String("room", c.Room))
	}()

	for {
		select {
		case <-ctx.Done():
			err := c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			if err != nil {
				log.Debug("Failed to send close control message", zap.String("clientID", c.ID), zap.Error(err))
			}
			return

		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("Failed to write message to client",
					zap.String("clientID", c.ID),
					zap.String("room", c.Room),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug("Failed to write ping", zap.String("clientID", c.ID), zap.Error(err))
				return
			}
		}
	}
}
