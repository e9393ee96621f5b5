package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GeneratePlayerSeed creates a fresh player seed. The seed is a secret the
// player must resupply verbatim at settlement, so it comes from crypto/rand.
func GeneratePlayerSeed() (string, error) {
	bytes := make([]byte, 16) // 128 bits of entropy
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate player seed: %v", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateRequestID tags one gateway request for log correlation.
func GenerateRequestID() string {
	return fmt.Sprintf("req_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}
