package models

import "math/big"

// RangeMax is the largest value a roll can take. Ranges are inclusive on
// both ends, so a bet on [0, RangeMax] covers every outcome.
const RangeMax = 9999

// BasisPointsScale is the denominator for house-edge and payout fractions.
const BasisPointsScale = 10000

// Bet is the canonical projection of one on-chain bet record. It is decoded
// once at the chain boundary; Won and Roll are meaningful only when Settled.
type Bet struct {
	ID        uint64 `json:"id"`
	Player    string `json:"player"`
	Wager     string `json:"wager"` // base units, decimal string
	Low       uint16 `json:"low"`
	High      uint16 `json:"high"`
	PlacedAt  int64  `json:"placed_at"`
	BtcHeight uint32 `json:"btc_height"`
	Settled   bool   `json:"settled"`
	Won       bool   `json:"won"`
	Roll      uint16 `json:"roll"`
}

// WagerAmount returns the wager as a big integer. A Bet decoded from the
// chain always carries a well-formed decimal string.
func (b *Bet) WagerAmount() *big.Int {
	n, ok := new(big.Int).SetString(b.Wager, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

// RangeSize returns the number of outcomes the bet covers.
func (b *Bet) RangeSize() int {
	return int(b.High) - int(b.Low) + 1
}

// Result summarizes the bet for display: pending, win or lose.
func (b *Bet) Result() string {
	if !b.Settled {
		return "pending"
	}
	if b.Won {
		return "win"
	}
	return "lose"
}

// ConfigSnapshot holds the game parameters read from the contract in one
// batch. It is fetched fresh per request and never mutated locally.
type ConfigSnapshot struct {
	Paused        bool     `json:"paused"`
	HouseEdgeBps  uint64   `json:"house_edge_bps"`
	MaxBet        *big.Int `json:"-"`
	MaxProfit     *big.Int `json:"-"`
	BtcDelay      uint64   `json:"btc_delay"`
	TokenDecimals uint8    `json:"token_decimals"`
}

// TokenState is one owner's balance and allowance toward the game contract,
// both in base units.
type TokenState struct {
	Decimals  uint8    `json:"decimals"`
	Balance   *big.Int `json:"-"`
	Allowance *big.Int `json:"-"`
}

// Header is the decoded shape of an HBK header-cache entry. Only the height
// matters to the gateway; the rest of the tuple stays at the chain boundary.
type Header struct {
	Height    uint32 `json:"height"`
	BlockHash string `json:"block_hash"`
}
