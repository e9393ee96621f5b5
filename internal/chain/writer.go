package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

// Writes are strictly sequential per call: the transaction is sent, its
// receipt awaited, and only then does the caller see a result. There is no
// cancelling an in-flight transaction; the contract accepts or reverts it
// atomically and the gateway only observes the outcome.

// EnsureAllowance approves the game contract for amount if the operator's
// current allowance is below it. No-op when already sufficient.
func (c *Client) EnsureAllowance(ctx context.Context, amount *big.Int) error {
	if c.opts == nil {
		return ErrReadOnly
	}

	values, err := c.call(ctx, c.token, erc20ABI, "allowance", c.operator, c.game)
	if err != nil {
		return err
	}
	current := values[0].(*big.Int)
	if current.Cmp(amount) >= 0 {
		return nil
	}

	tx, err := c.tokenTx.Transact(c.transactOpts(ctx), "approve", c.game, amount)
	if err != nil {
		return fmt.Errorf("approve failed: %w", err)
	}
	return c.waitMined(ctx, tx, "approve")
}

// PlaceBet submits a bet and returns the assigned id plus the transaction
// hash. The id comes from the Placed event; if the log is missing for any
// reason, nextBetId-1 is the fallback.
func (c *Client) PlaceBet(ctx context.Context, low, high uint16, playerSeed string, suggestedDelay uint64, amount *big.Int) (uint64, string, error) {
	if c.opts == nil {
		return 0, "", ErrReadOnly
	}

	tx, err := c.gameTx.Transact(c.transactOpts(ctx), "placeBet",
		low, high, playerSeed, new(big.Int).SetUint64(suggestedDelay), amount)
	if err != nil {
		return 0, "", fmt.Errorf("placeBet failed: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return 0, "", fmt.Errorf("placeBet not mined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return 0, "", fmt.Errorf("placeBet reverted (tx %s)", tx.Hash().Hex())
	}

	if id, ok := placedBetID(receipt); ok {
		return id, tx.Hash().Hex(), nil
	}

	next, err := c.NextBetID(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("bet placed (tx %s) but id lookup failed: %w", tx.Hash().Hex(), err)
	}
	return next - 1, tx.Hash().Hex(), nil
}

// Settle submits a settlement for one bet. The seed must match the one
// supplied at placement or the contract reverts.
func (c *Client) Settle(ctx context.Context, betID uint64, playerSeed string) (string, error) {
	if c.opts == nil {
		return "", ErrReadOnly
	}

	tx, err := c.gameTx.Transact(c.transactOpts(ctx), "settle",
		new(big.Int).SetUint64(betID), playerSeed)
	if err != nil {
		return "", fmt.Errorf("settle failed: %w", err)
	}
	if err := c.waitMined(ctx, tx, "settle"); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

// SetBtcDelay updates the settlement delay. Owner-gated on-chain; the
// gateway additionally gates the endpoint behind admin auth.
func (c *Client) SetBtcDelay(ctx context.Context, delay uint64) (string, error) {
	if c.opts == nil {
		return "", ErrReadOnly
	}

	tx, err := c.gameTx.Transact(c.transactOpts(ctx), "setBtcDelay", new(big.Int).SetUint64(delay))
	if err != nil {
		return "", fmt.Errorf("setBtcDelay failed: %w", err)
	}
	if err := c.waitMined(ctx, tx, "setBtcDelay"); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

func (c *Client) transactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *c.opts
	opts.Context = ctx
	return &opts
}

func (c *Client) waitMined(ctx context.Context, tx *types.Transaction, what string) error {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return fmt.Errorf("%s not mined: %w", what, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%s reverted (tx %s)", what, tx.Hash().Hex())
	}
	return nil
}

func placedBetID(receipt *types.Receipt) (uint64, bool) {
	placed := hiloABI.Events["Placed"]
	for _, entry := range receipt.Logs {
		if len(entry.Topics) >= 2 && entry.Topics[0] == placed.ID {
			return entry.Topics[1].Big().Uint64(), true
		}
	}
	return 0, false
}
