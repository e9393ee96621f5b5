package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"hilo-gateway-backend/internal/models"
)

// zeroAddress is the sentinel the contract stores for never-issued bet ids.
var zeroAddress = common.Address{}

// NextBetID reads the id the next placed bet will receive.
func (c *Client) NextBetID(ctx context.Context) (uint64, error) {
	v, err := c.readUint(ctx, c.game, "nextBetId")
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Bet reads a single bet record. A zero player address means the id was
// never issued and maps to ErrBetNotFound instead of a zero-valued record.
func (c *Client) Bet(ctx context.Context, id uint64) (*models.Bet, error) {
	values, err := c.call(ctx, c.game, hiloABI, "bets", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return decodeBet(id, values)
}

// RecentBets walks bet ids backward from the most recently issued one,
// skipping gaps, collecting up to limit records that match the optional
// owner filter, in descending-id order. A linear scan: fine for small pages
// and moderate histories, an event-log indexer would be needed beyond that.
func (c *Client) RecentBets(ctx context.Context, limit int, owner string) ([]*models.Bet, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if owner != "" && !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, owner)
	}

	next, err := c.NextBetID(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Bet, 0, limit)
	for id := int64(next) - 1; id >= 0 && len(out) < limit; id-- {
		bet, err := c.Bet(ctx, uint64(id))
		if errors.Is(err, ErrBetNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if owner != "" && !strings.EqualFold(bet.Player, owner) {
			continue
		}
		out = append(out, bet)
	}
	return out, nil
}

// decodeBet normalizes the raw bets() tuple into the canonical record once,
// so nothing downstream re-derives the wire shape.
func decodeBet(id uint64, values []interface{}) (*models.Bet, error) {
	if len(values) != 9 {
		return nil, fmt.Errorf("bets returned %d values, want 9", len(values))
	}

	player, ok := values[0].(common.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected player type %T", values[0])
	}
	if player == zeroAddress {
		return nil, ErrBetNotFound
	}

	wager, ok := values[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected wager type %T", values[1])
	}
	low, ok1 := values[2].(uint16)
	high, ok2 := values[3].(uint16)
	placedAt, ok3 := values[4].(uint64)
	btcHeight, ok4 := values[5].(uint32)
	settled, ok5 := values[6].(bool)
	won, ok6 := values[7].(bool)
	roll, ok7 := values[8].(uint16)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return nil, fmt.Errorf("malformed bets tuple for id %d", id)
	}

	return &models.Bet{
		ID:        id,
		Player:    player.Hex(),
		Wager:     wager.String(),
		Low:       low,
		High:      high,
		PlacedAt:  int64(placedAt),
		BtcHeight: btcHeight,
		Settled:   settled,
		Won:       won,
		Roll:      roll,
	}, nil
}
