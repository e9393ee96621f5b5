package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"hilo-gateway-backend/internal/models"
)

// LatestHeader reads the most recent Bitcoin header held by the cache.
func (c *Client) LatestHeader(ctx context.Context) (*models.Header, error) {
	values, err := c.call(ctx, c.hbk, hbkABI, "getLastHeader")
	if err != nil {
		return nil, err
	}
	return decodeHeader(values)
}

// HeaderAt reads the cached header at one height, mapping absence to
// ErrHeaderNotFound rather than a zero header.
func (c *Client) HeaderAt(ctx context.Context, height int64) (*models.Header, error) {
	if height < 0 {
		return nil, ErrHeaderNotFound
	}
	values, err := c.call(ctx, c.hbk, hbkABI, "getHeaderN", uint32(height))
	if err != nil {
		return nil, err
	}
	h, err := decodeHeader(values)
	if err != nil {
		return nil, err
	}
	if int64(h.Height) != height {
		return nil, ErrHeaderNotFound
	}
	return h, nil
}

// HeaderAvailable reports whether a well-formed header exists at height.
// Deliberately fail-safe to false: a revert, a malformed response and a
// transient RPC failure all read as "not yet available", because telling
// the settle-readiness UI a header is present when it is not would mislead.
// Callers re-poll.
func (c *Client) HeaderAvailable(ctx context.Context, height int64) bool {
	_, err := c.HeaderAt(ctx, height)
	return err == nil
}

func decodeHeader(values []interface{}) (*models.Header, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("header call returned %d values, want 1", len(values))
	}
	tuple := *abi.ConvertType(values[0], new(headerTuple)).(*headerTuple)
	return &models.Header{
		Height:    tuple.Height,
		BlockHash: common.Hash(tuple.BlockHash).Hex(),
	}, nil
}
