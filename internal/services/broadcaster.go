package services

import "hilo-gateway-backend/internal/models"

// Broadcaster pushes bet status transitions to connected clients. The
// websocket handler implements it; the settler only sees this interface.
type Broadcaster interface {
	BroadcastBetReady(betID uint64)
	BroadcastBetSettled(bet *models.Bet, txHash string)
}
