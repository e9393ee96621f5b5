package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"hilo-gateway-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler pushes bet status transitions (ready to settle, settled)
// to connected clients. It implements services.Broadcaster for the settler.
type WebSocketHandler struct {
	hub *WebSocketHub
}

type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	subscribe  chan subscription
}

type Client struct {
	Conn *websocket.Conn
	Bets map[uint64]bool // subscribed bet ids; empty means everything

	mu sync.Mutex
}

// write serializes all writers on one connection: the read goroutine's PONG
// replies and the hub's broadcasts would otherwise interleave frames.
func (c *Client) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

type subscription struct {
	client *Client
	betID  uint64
	add    bool
}

type Message struct {
	Type  string      `json:"type"`
	BetID uint64      `json:"bet_id,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

func NewWebSocketHandler() *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
		subscribe:  make(chan subscription),
	}

	go hub.run()

	return &WebSocketHandler{hub: hub}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		Conn: conn,
		Bets: make(map[uint64]bool),
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		var msg struct {
			Type  string `json:"type"`
			BetID uint64 `json:"bet_id"`
		}
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		switch msg.Type {
		case "PING":
			client.write(Message{Type: "PONG", Data: gin.H{"timestamp": time.Now().Unix()}})
		case "SUBSCRIBE_BET":
			h.hub.subscribe <- subscription{client: client, betID: msg.BetID, add: true}
		case "UNSUBSCRIBE_BET":
			h.hub.subscribe <- subscription{client: client, betID: msg.BetID, add: false}
		}
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client] = true

		case client := <-hub.unregister:
			delete(hub.clients, client)

		case sub := <-hub.subscribe:
			if _, ok := hub.clients[sub.client]; !ok {
				continue
			}
			if sub.add {
				sub.client.Bets[sub.betID] = true
			} else {
				delete(sub.client.Bets, sub.betID)
			}

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)
		}
	}
}

func (hub *WebSocketHub) broadcastMessage(message *Message) {
	for client := range hub.clients {
		if len(client.Bets) > 0 && !client.Bets[message.BetID] {
			continue
		}
		client.write(message)
	}
}

// BroadcastBetReady tells watchers the bet's Bitcoin header has arrived.
func (h *WebSocketHandler) BroadcastBetReady(betID uint64) {
	h.hub.broadcast <- &Message{
		Type:  "BET_READY",
		BetID: betID,
		Data: gin.H{
			"bet_id":    betID,
			"timestamp": time.Now().Unix(),
		},
	}
}

// BroadcastBetSettled publishes the settled record with its outcome.
func (h *WebSocketHandler) BroadcastBetSettled(bet *models.Bet, txHash string) {
	h.hub.broadcast <- &Message{
		Type:  "BET_SETTLED",
		BetID: bet.ID,
		Data: gin.H{
			"bet":       bet,
			"result":    bet.Result(),
			"tx_hash":   txHash,
			"timestamp": time.Now().Unix(),
		},
	}
}
