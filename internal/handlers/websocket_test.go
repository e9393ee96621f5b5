package handlers_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"hilo-gateway-backend/internal/handlers"
	"hilo-gateway-backend/internal/models"
)

func dialTestSocket(t *testing.T, h *handlers.WebSocketHandler) *websocket.Conn {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", h.HandleWebSocket)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) handlers.Message {
	t.Helper()
	var msg handlers.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	return msg
}

// PONG replies come from the per-connection read goroutine while broadcasts
// come from the hub goroutine; both must arrive intact when interleaved on
// one connection.
func TestWebSocketPongAndBroadcast(t *testing.T) {
	h := handlers.NewWebSocketHandler()
	conn := dialTestSocket(t, h)

	if err := conn.WriteJSON(gin.H{"type": "PING"}); err != nil {
		t.Fatalf("Failed to send ping: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "PONG" {
		t.Fatalf("Got %s, want PONG", msg.Type)
	}

	const broadcasts = 20
	const pings = 5

	go func() {
		for i := 0; i < broadcasts; i++ {
			h.BroadcastBetReady(7)
		}
	}()
	for i := 0; i < pings; i++ {
		if err := conn.WriteJSON(gin.H{"type": "PING"}); err != nil {
			t.Fatalf("Failed to send ping %d: %v", i, err)
		}
	}

	ready, pongs := 0, 0
	for ready < broadcasts || pongs < pings {
		switch msg := readMessage(t, conn); msg.Type {
		case "BET_READY":
			if msg.BetID != 7 {
				t.Fatalf("BET_READY for bet %d, want 7", msg.BetID)
			}
			ready++
		case "PONG":
			pongs++
		default:
			t.Fatalf("Unexpected message type %s", msg.Type)
		}
	}
}

func TestWebSocketBetSubscriptionFilter(t *testing.T) {
	h := handlers.NewWebSocketHandler()
	conn := dialTestSocket(t, h)

	if err := conn.WriteJSON(gin.H{"type": "SUBSCRIBE_BET", "bet_id": 1}); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	// A ping roundtrip guarantees the subscription reached the hub before
	// anything is broadcast.
	conn.WriteJSON(gin.H{"type": "PING"})
	if msg := readMessage(t, conn); msg.Type != "PONG" {
		t.Fatalf("Got %s, want PONG", msg.Type)
	}

	h.BroadcastBetReady(2) // filtered out
	h.BroadcastBetSettled(&models.Bet{ID: 1, Settled: true, Won: true}, "0xabc")

	msg := readMessage(t, conn)
	if msg.Type != "BET_SETTLED" || msg.BetID != 1 {
		t.Fatalf("Got %s for bet %d, want BET_SETTLED for bet 1", msg.Type, msg.BetID)
	}
}
