package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"hilo-gateway-backend/internal/config"
)

// RedisService holds the gateway's only local state: the per-bet seed vault
// (the browser-localStorage analogue) and the set of bets the auto-settle
// poller watches. None of it is authoritative; a lost seed only disables
// auto-settlement for that bet, the player can still settle with their own
// copy.
type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

// SeedEntry is one vaulted player seed plus placement metadata for display.
type SeedEntry struct {
	BetID    uint64 `json:"bet_id"`
	Seed     string `json:"seed"`
	Player   string `json:"player"`
	Network  string `json:"network"`
	SavedAt  int64  `json:"saved_at"`
	TxHash   string `json:"tx_hash,omitempty"`
	Low      int    `json:"low"`
	High     int    `json:"high"`
	AmountBU string `json:"amount_base_units"`
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{
		client: client,
		ctx:    ctx,
	}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisService) SaveSeed(entry *SeedEntry) error {
	key := fmt.Sprintf(KeySeed, entry.BetID)

	if entry.SavedAt == 0 {
		entry.SavedAt = time.Now().Unix()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal seed entry: %v", err)
	}

	return s.client.Set(s.ctx, key, data, TTLSeed).Err()
}

// Seed looks up the vaulted seed for one bet. A missing entry returns
// ("", nil): an expected outcome, not an error.
func (s *RedisService) Seed(betID uint64) (string, error) {
	entry, err := s.SeedEntry(betID)
	if err != nil || entry == nil {
		return "", err
	}
	return entry.Seed, nil
}

func (s *RedisService) SeedEntry(betID uint64) (*SeedEntry, error) {
	key := fmt.Sprintf(KeySeed, betID)

	data, err := s.client.Get(s.ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seed: %v", err)
	}

	var entry SeedEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed entry: %v", err)
	}
	return &entry, nil
}

func (s *RedisService) DeleteSeed(betID uint64) error {
	key := fmt.Sprintf(KeySeed, betID)
	return s.client.Del(s.ctx, key).Err()
}

// AddPendingBet registers a bet for the auto-settle poller.
func (s *RedisService) AddPendingBet(betID uint64) error {
	return s.client.SAdd(s.ctx, KeyPendingBets, strconv.FormatUint(betID, 10)).Err()
}

func (s *RedisService) RemovePendingBet(betID uint64) error {
	return s.client.SRem(s.ctx, KeyPendingBets, strconv.FormatUint(betID, 10)).Err()
}

func (s *RedisService) PendingBets() ([]uint64, error) {
	members, err := s.client.SMembers(s.ctx, KeyPendingBets).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bets: %v", err)
	}

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CheckRateLimit allows at most limit occurrences of an action per window,
// keyed by an arbitrary subject (client IP, bet id).
func (s *RedisService) CheckRateLimit(subject, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, subject, action)

	count, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(s.ctx, key, window)
	}

	return count <= int64(limit), nil
}

// AllowSettleAttempt gates one settlement attempt per bet per window.
func (s *RedisService) AllowSettleAttempt(betID uint64) (bool, error) {
	return s.CheckRateLimit(fmt.Sprintf("bet:%d", betID), "settle", 1, SettleAttemptWindow)
}
