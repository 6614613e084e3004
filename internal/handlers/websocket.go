package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

const (
	MessageRoundUpdate = "ROUND_UPDATE"
	MessageChat        = "CHAT_MESSAGE"
	MessagePing        = "PING"
	MessagePong        = "PONG"

	clientSendBuffer = 32
	writeWait        = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	Username string
	Conn     *websocket.Conn
	send     chan *Message
}

// WebSocketHub fans round and chat updates out to every connected client.
// It implements services.Broadcaster.
type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	direct     chan directMessage
	done       chan struct{}
}

type directMessage struct {
	client  *Client
	message *Message
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
		direct:     make(chan directMessage, 100),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (hub *WebSocketHub) Run(ctx context.Context) {
	defer close(hub.done)

	for {
		select {
		case <-ctx.Done():
			for client := range hub.clients {
				close(client.send)
				delete(hub.clients, client)
			}
			return

		case client := <-hub.register:
			hub.clients[client] = true
			log.WithField("username", client.Username).Debug("WebSocket client registered")

		case client := <-hub.unregister:
			if _, ok := hub.clients[client]; ok {
				delete(hub.clients, client)
				close(client.send)
				log.WithField("username", client.Username).Debug("WebSocket client unregistered")
			}

		case message := <-hub.broadcast:
			for client := range hub.clients {
				hub.deliver(client, message)
			}

		case d := <-hub.direct:
			if hub.clients[d.client] {
				hub.deliver(d.client, d.message)
			}
		}
	}
}

// deliver drops a client whose buffer is full rather than stall the others.
func (hub *WebSocketHub) deliver(client *Client, message *Message) {
	select {
	case client.send <- message:
	default:
		delete(hub.clients, client)
		close(client.send)
	}
}

func (hub *WebSocketHub) attach(client *Client) bool {
	select {
	case hub.register <- client:
		return true
	case <-hub.done:
		return false
	}
}

func (hub *WebSocketHub) detach(client *Client) {
	select {
	case hub.unregister <- client:
	case <-hub.done:
	}
}

func (hub *WebSocketHub) reply(client *Client, message *Message) {
	select {
	case hub.direct <- directMessage{client: client, message: message}:
	case <-hub.done:
	default:
	}
}

func (hub *WebSocketHub) publish(message *Message) {
	select {
	case hub.broadcast <- message:
	default:
		log.WithField("type", message.Type).Warn("WebSocket broadcast queue full, dropping message")
	}
}

func (hub *WebSocketHub) BroadcastRoundUpdate(snapshot models.RoundSnapshot) {
	hub.publish(&Message{Type: MessageRoundUpdate, Data: snapshot})
}

func (hub *WebSocketHub) BroadcastChatMessage(message models.ChatMessage) {
	hub.publish(&Message{Type: MessageChat, Data: message})
}

var _ services.Broadcaster = (*WebSocketHub)(nil)

type WebSocketHandler struct {
	hub    *WebSocketHub
	engine *services.RouletteEngine
}

func NewWebSocketHandler(hub *WebSocketHub, engine *services.RouletteEngine) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		engine: engine,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Failed to upgrade to WebSocket")
		return
	}

	client := &Client{
		Username: currentUser(c),
		Conn:     conn,
		send:     make(chan *Message, clientSendBuffer),
	}
	client.send <- &Message{Type: MessageRoundUpdate, Data: h.engine.Snapshot()}

	if !h.hub.attach(client) {
		conn.Close()
		return
	}
	go client.writePump()

	defer func() {
		h.hub.detach(client)
		conn.Close()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Debug("WebSocket read error")
			}
			return
		}

		if msg.Type == MessagePing {
			h.hub.reply(client, &Message{Type: MessagePong, Data: gin.H{"timestamp": time.Now().UnixMilli()}})
		}
	}
}

// writePump is the only writer on the connection.
func (c *Client) writePump() {
	for message := range c.send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteJSON(message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
