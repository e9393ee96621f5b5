package services

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"hilo-gateway-backend/internal/chain"
	"hilo-gateway-backend/internal/models"
)

// SettlerChain is the slice of the chain client the poller needs.
type SettlerChain interface {
	LatestHeader(ctx context.Context) (*models.Header, error)
	Bet(ctx context.Context, id uint64) (*models.Bet, error)
	HeaderAvailable(ctx context.Context, height int64) bool
	Settle(ctx context.Context, betID uint64, playerSeed string) (string, error)
}

// SettlerVault is the slice of the redis service the poller needs.
type SettlerVault interface {
	PendingBets() ([]uint64, error)
	Seed(betID uint64) (string, error)
	RemovePendingBet(betID uint64) error
	AllowSettleAttempt(betID uint64) (bool, error)
}

// Poller states. A tick that finds the settler anywhere but idle returns
// immediately, so overlapping ticks can never race a settlement attempt.
const (
	stateIdle int32 = iota
	statePolling
	stateSettling
)

// Settler watches pending bets and settles each one automatically once the
// Bitcoin header it anchors to is available, using the vaulted player seed.
type Settler struct {
	chain       SettlerChain
	vault       SettlerVault
	broadcaster Broadcaster
	interval    time.Duration

	state atomic.Int32
}

func NewSettler(chainClient SettlerChain, vault SettlerVault, broadcaster Broadcaster, interval time.Duration) *Settler {
	if interval <= 0 {
		interval = 7500 * time.Millisecond
	}
	return &Settler{
		chain:       chainClient,
		vault:       vault,
		broadcaster: broadcaster,
		interval:    interval,
	}
}

// Start runs the poll loop until ctx is cancelled. Tick failures are logged
// and never stop subsequent ticks.
func (s *Settler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("settler: polling every %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("settler: stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one poll pass. Returns false if a previous pass is still in
// flight and this one was skipped.
func (s *Settler) Tick(ctx context.Context) bool {
	if !s.state.CompareAndSwap(stateIdle, statePolling) {
		return false
	}
	defer s.state.Store(stateIdle)

	pending, err := s.vault.PendingBets()
	if err != nil {
		log.Printf("settler: pending lookup failed: %v", err)
		return true
	}
	if len(pending) == 0 {
		return true
	}

	latest, err := s.chain.LatestHeader(ctx)
	if err != nil {
		log.Printf("settler: latest header read failed: %v", err)
		return true
	}

	for _, id := range pending {
		s.checkBet(ctx, id, latest.Height)
	}
	return true
}

func (s *Settler) checkBet(ctx context.Context, id uint64, latestHeight uint32) {
	bet, err := s.chain.Bet(ctx, id)
	if errors.Is(err, chain.ErrBetNotFound) {
		// Not a real bet; stop watching it.
		s.removePending(id)
		return
	}
	if err != nil {
		log.Printf("settler: bet %d read failed: %v", id, err)
		return
	}

	if bet.Settled {
		s.removePending(id)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastBetSettled(bet, "")
		}
		return
	}

	// Cheap height comparison first; the header probe is a contract call.
	if latestHeight < bet.BtcHeight || !s.chain.HeaderAvailable(ctx, int64(bet.BtcHeight)) {
		return
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBetReady(id)
	}

	seed, err := s.vault.Seed(id)
	if err != nil {
		log.Printf("settler: seed lookup for bet %d failed: %v", id, err)
		return
	}
	if seed == "" {
		// No vaulted seed: the player must settle manually.
		return
	}

	allowed, err := s.vault.AllowSettleAttempt(id)
	if err != nil || !allowed {
		return
	}

	s.state.Store(stateSettling)
	defer s.state.Store(statePolling)

	txHash, err := s.chain.Settle(ctx, id, seed)
	if err != nil {
		log.Printf("settler: settle of bet %d failed: %v", id, err)
		return
	}

	log.Printf("settler: bet %d settled (tx %s)", id, txHash)
	s.removePending(id)

	settled, err := s.chain.Bet(ctx, id)
	if err == nil && s.broadcaster != nil {
		s.broadcaster.BroadcastBetSettled(settled, txHash)
	}
}

func (s *Settler) removePending(id uint64) {
	if err := s.vault.RemovePendingBet(id); err != nil {
		log.Printf("settler: failed to unwatch bet %d: %v", id, err)
	}
}
