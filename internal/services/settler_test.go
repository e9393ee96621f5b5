package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"hilo-gateway-backend/internal/chain"
	"hilo-gateway-backend/internal/models"
	"hilo-gateway-backend/internal/services"
)

type fakeChain struct {
	mu        sync.Mutex
	latest    uint32
	bets      map[uint64]*models.Bet
	available map[uint32]bool
	settled   []uint64

	// When set, LatestHeader signals entry once and then blocks until
	// release is closed. Used to hold a tick in flight.
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *fakeChain) LatestHeader(ctx context.Context) (*models.Header, error) {
	if f.entered != nil {
		f.once.Do(func() { close(f.entered) })
		<-f.release
	}
	return &models.Header{Height: f.latest}, nil
}

func (f *fakeChain) Bet(ctx context.Context, id uint64) (*models.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bet, ok := f.bets[id]
	if !ok {
		return nil, chain.ErrBetNotFound
	}
	copied := *bet
	return &copied, nil
}

func (f *fakeChain) HeaderAvailable(ctx context.Context, height int64) bool {
	return f.available[uint32(height)]
}

func (f *fakeChain) Settle(ctx context.Context, id uint64, seed string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = append(f.settled, id)
	if bet, ok := f.bets[id]; ok {
		bet.Settled = true
		bet.Won = true
		bet.Roll = 1234
	}
	return "0xfeed", nil
}

type fakeVault struct {
	mu      sync.Mutex
	pending map[uint64]bool
	seeds   map[uint64]string
	allow   bool
}

func (v *fakeVault) PendingBets() ([]uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ids := make([]uint64, 0, len(v.pending))
	for id := range v.pending {
		ids = append(ids, id)
	}
	return ids, nil
}

func (v *fakeVault) Seed(id uint64) (string, error) {
	return v.seeds[id], nil
}

func (v *fakeVault) RemovePendingBet(id uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.pending, id)
	return nil
}

func (v *fakeVault) AllowSettleAttempt(uint64) (bool, error) {
	return v.allow, nil
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	ready   []uint64
	settled []uint64
}

func (b *fakeBroadcaster) BroadcastBetReady(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready = append(b.ready, id)
}

func (b *fakeBroadcaster) BroadcastBetSettled(bet *models.Bet, _ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settled = append(b.settled, bet.ID)
}

func pendingBet(id uint64, btcHeight uint32) *models.Bet {
	return &models.Bet{
		ID:        id,
		Player:    "0x4444444444444444444444444444444444444444",
		Wager:     "1000000",
		Low:       0,
		High:      4999,
		BtcHeight: btcHeight,
	}
}

func TestTickSettlesReadyBet(t *testing.T) {
	chainFake := &fakeChain{
		latest:    870100,
		bets:      map[uint64]*models.Bet{1: pendingBet(1, 870000)},
		available: map[uint32]bool{870000: true},
	}
	vault := &fakeVault{
		pending: map[uint64]bool{1: true},
		seeds:   map[uint64]string{1: "deadbeef"},
		allow:   true,
	}
	broadcaster := &fakeBroadcaster{}

	settler := services.NewSettler(chainFake, vault, broadcaster, time.Second)
	if !settler.Tick(context.Background()) {
		t.Fatal("Tick should run when idle")
	}

	if len(chainFake.settled) != 1 || chainFake.settled[0] != 1 {
		t.Fatalf("Settled %v, want [1]", chainFake.settled)
	}
	if vault.pending[1] {
		t.Error("Settled bet should leave the pending set")
	}
	if len(broadcaster.settled) != 1 || broadcaster.settled[0] != 1 {
		t.Errorf("Broadcasts %v, want settled push for bet 1", broadcaster.settled)
	}
}

func TestTickWaitsForHeader(t *testing.T) {
	chainFake := &fakeChain{
		latest:    869999, // cache is behind the bet's target height
		bets:      map[uint64]*models.Bet{1: pendingBet(1, 870000)},
		available: map[uint32]bool{},
	}
	vault := &fakeVault{
		pending: map[uint64]bool{1: true},
		seeds:   map[uint64]string{1: "deadbeef"},
		allow:   true,
	}

	settler := services.NewSettler(chainFake, vault, nil, time.Second)
	settler.Tick(context.Background())

	if len(chainFake.settled) != 0 {
		t.Errorf("Settled %v, want none while header is missing", chainFake.settled)
	}
	if !vault.pending[1] {
		t.Error("Unsettled bet should stay pending")
	}
}

func TestTickSkipsBetWithoutSeed(t *testing.T) {
	chainFake := &fakeChain{
		latest:    870100,
		bets:      map[uint64]*models.Bet{1: pendingBet(1, 870000)},
		available: map[uint32]bool{870000: true},
	}
	vault := &fakeVault{
		pending: map[uint64]bool{1: true},
		seeds:   map[uint64]string{},
		allow:   true,
	}

	settler := services.NewSettler(chainFake, vault, nil, time.Second)
	settler.Tick(context.Background())

	if len(chainFake.settled) != 0 {
		t.Error("No settle attempt should happen without a vaulted seed")
	}
	if !vault.pending[1] {
		t.Error("Bet should stay pending for manual settlement")
	}
}

func TestTickObservesExternalSettlement(t *testing.T) {
	bet := pendingBet(2, 870000)
	bet.Settled = true
	bet.Won = false

	chainFake := &fakeChain{
		latest: 870100,
		bets:   map[uint64]*models.Bet{2: bet},
	}
	vault := &fakeVault{
		pending: map[uint64]bool{2: true},
		seeds:   map[uint64]string{2: "deadbeef"},
		allow:   true,
	}
	broadcaster := &fakeBroadcaster{}

	settler := services.NewSettler(chainFake, vault, broadcaster, time.Second)
	settler.Tick(context.Background())

	if len(chainFake.settled) != 0 {
		t.Error("Already-settled bet must not be settled again")
	}
	if vault.pending[2] {
		t.Error("Already-settled bet should leave the pending set")
	}
	if len(broadcaster.settled) != 1 {
		t.Error("External settlement should still be broadcast")
	}
}

func TestTickDropsUnknownBet(t *testing.T) {
	chainFake := &fakeChain{latest: 870100, bets: map[uint64]*models.Bet{}}
	vault := &fakeVault{
		pending: map[uint64]bool{9: true},
		seeds:   map[uint64]string{},
		allow:   true,
	}

	settler := services.NewSettler(chainFake, vault, nil, time.Second)
	settler.Tick(context.Background())

	if vault.pending[9] {
		t.Error("Unknown bet id should be dropped from the pending set")
	}
}

func TestTickRespectsAttemptLimit(t *testing.T) {
	chainFake := &fakeChain{
		latest:    870100,
		bets:      map[uint64]*models.Bet{1: pendingBet(1, 870000)},
		available: map[uint32]bool{870000: true},
	}
	vault := &fakeVault{
		pending: map[uint64]bool{1: true},
		seeds:   map[uint64]string{1: "deadbeef"},
		allow:   false, // a recent attempt already happened
	}

	settler := services.NewSettler(chainFake, vault, nil, time.Second)
	settler.Tick(context.Background())

	if len(chainFake.settled) != 0 {
		t.Error("Settle attempt should be rate limited")
	}
}

// The re-entrancy guard: a tick arriving while another is in flight must
// return immediately instead of racing it.
func TestTickRefusesReentry(t *testing.T) {
	chainFake := &fakeChain{
		latest:  870100,
		bets:    map[uint64]*models.Bet{1: pendingBet(1, 870000)},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	vault := &fakeVault{
		pending: map[uint64]bool{1: true},
		seeds:   map[uint64]string{},
		allow:   true,
	}

	settler := services.NewSettler(chainFake, vault, nil, time.Second)

	done := make(chan bool)
	go func() {
		done <- settler.Tick(context.Background())
	}()

	<-chainFake.entered // first tick is now mid-flight

	if settler.Tick(context.Background()) {
		t.Error("Second tick should be refused while the first is in flight")
	}

	close(chainFake.release)
	if !<-done {
		t.Error("First tick should have run")
	}

	// Once idle again, ticks run normally.
	if !settler.Tick(context.Background()) {
		t.Error("Tick should run again after the first completes")
	}
}
