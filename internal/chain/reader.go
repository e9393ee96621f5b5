package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"hilo-gateway-backend/internal/models"
)

// GameConfig fetches the full parameter snapshot in one concurrent batch.
// Any failed read fails the snapshot as a whole; callers retry, they never
// get a partial view.
func (c *Client) GameConfig(ctx context.Context) (*models.ConfigSnapshot, error) {
	snap := &models.ConfigSnapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.readBool(gctx, c.game, hiloABI, "paused")
		snap.Paused = v
		return err
	})
	g.Go(func() error {
		v, err := c.readUint(gctx, c.game, "houseEdgeBps")
		if v != nil {
			snap.HouseEdgeBps = v.Uint64()
		}
		return err
	})
	g.Go(func() error {
		var err error
		snap.MaxBet, err = c.readUint(gctx, c.game, "maxBet")
		return err
	})
	g.Go(func() error {
		var err error
		snap.MaxProfit, err = c.readUint(gctx, c.game, "maxProfit")
		return err
	})
	g.Go(func() error {
		v, err := c.readUint(gctx, c.game, "btcDelay")
		if v != nil {
			snap.BtcDelay = v.Uint64()
		}
		return err
	})
	g.Go(func() error {
		var err error
		snap.TokenDecimals, err = c.Decimals(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Decimals returns the token's decimal count. It is immutable for the life
// of the token contract, so the first successful read is memoized for the
// process.
func (c *Client) Decimals(ctx context.Context) (uint8, error) {
	c.decMu.Lock()
	defer c.decMu.Unlock()

	if c.decimals != nil {
		return *c.decimals, nil
	}

	values, err := c.call(ctx, c.token, erc20ABI, "decimals")
	if err != nil {
		return 0, err
	}
	dec, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", values[0])
	}
	c.decimals = &dec
	return dec, nil
}

// TokenState reads one owner's balance and allowance toward the game
// contract concurrently.
func (c *Client) TokenState(ctx context.Context, owner string) (*models.TokenState, error) {
	if !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, owner)
	}
	addr := common.HexToAddress(owner)

	state := &models.TokenState{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state.Decimals, err = c.Decimals(gctx)
		return err
	})
	g.Go(func() error {
		values, err := c.call(gctx, c.token, erc20ABI, "balanceOf", addr)
		if err != nil {
			return err
		}
		state.Balance = values[0].(*big.Int)
		return nil
	})
	g.Go(func() error {
		values, err := c.call(gctx, c.token, erc20ABI, "allowance", addr, c.game)
		if err != nil {
			return err
		}
		state.Allowance = values[0].(*big.Int)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

// Owner reads the game contract's owner address.
func (c *Client) Owner(ctx context.Context) (string, error) {
	values, err := c.call(ctx, c.game, hiloABI, "owner")
	if err != nil {
		return "", err
	}
	return values[0].(common.Address).Hex(), nil
}

func (c *Client) readBool(ctx context.Context, to common.Address, contract abi.ABI, method string) (bool, error) {
	values, err := c.call(ctx, to, contract, method)
	if err != nil {
		return false, err
	}
	v, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected %s type %T", method, values[0])
	}
	return v, nil
}

func (c *Client) readUint(ctx context.Context, to common.Address, method string) (*big.Int, error) {
	values, err := c.call(ctx, to, hiloABI, method)
	if err != nil {
		return nil, err
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s type %T", method, values[0])
	}
	return v, nil
}
