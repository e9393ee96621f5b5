package chain

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// fakeCaller stubs the RPC backend so decode paths run without a node.
type fakeCaller struct {
	handle func(to common.Address, data []byte) ([]byte, error)
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return f.handle(*msg.To, msg.Data)
}

var (
	gameAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	hbkAddr   = common.HexToAddress("0x3333333333333333333333333333333333333333")
	player1   = common.HexToAddress("0x4444444444444444444444444444444444444444")
	player2   = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

func testClient(handle func(to common.Address, data []byte) ([]byte, error)) *Client {
	return &Client{
		caller: &fakeCaller{handle: handle},
		game:   gameAddr,
		token:  tokenAddr,
		hbk:    hbkAddr,
	}
}

func isMethod(contract string, data []byte, name string) bool {
	var id []byte
	switch contract {
	case "hilo":
		id = hiloABI.Methods[name].ID
	case "erc20":
		id = erc20ABI.Methods[name].ID
	case "hbk":
		id = hbkABI.Methods[name].ID
	}
	return len(data) >= 4 && bytes.Equal(data[:4], id)
}

func packOutputs(t *testing.T, contract string, method string, values ...interface{}) []byte {
	t.Helper()

	var out []byte
	var err error
	switch contract {
	case "hilo":
		out, err = hiloABI.Methods[method].Outputs.Pack(values...)
	case "erc20":
		out, err = erc20ABI.Methods[method].Outputs.Pack(values...)
	case "hbk":
		out, err = hbkABI.Methods[method].Outputs.Pack(values...)
	}
	if err != nil {
		t.Fatalf("failed to pack %s outputs: %v", method, err)
	}
	return out
}

func packBet(t *testing.T, player common.Address, wager int64, low, high uint16, placedAt uint64, btcHeight uint32, settled, won bool, roll uint16) []byte {
	t.Helper()
	return packOutputs(t, "hilo", "bets",
		player, big.NewInt(wager), low, high, placedAt, btcHeight, settled, won, roll)
}

func TestGameConfigFanOut(t *testing.T) {
	client := testClient(func(to common.Address, data []byte) ([]byte, error) {
		switch {
		case to == tokenAddr && isMethod("erc20", data, "decimals"):
			return packOutputs(t, "erc20", "decimals", uint8(6)), nil
		case isMethod("hilo", data, "paused"):
			return packOutputs(t, "hilo", "paused", true), nil
		case isMethod("hilo", data, "houseEdgeBps"):
			return packOutputs(t, "hilo", "houseEdgeBps", big.NewInt(100)), nil
		case isMethod("hilo", data, "maxBet"):
			return packOutputs(t, "hilo", "maxBet", big.NewInt(10_000_000)), nil
		case isMethod("hilo", data, "maxProfit"):
			return packOutputs(t, "hilo", "maxProfit", big.NewInt(1_000_000)), nil
		case isMethod("hilo", data, "btcDelay"):
			return packOutputs(t, "hilo", "btcDelay", big.NewInt(6)), nil
		}
		return nil, errors.New("unexpected call")
	})

	cfg, err := client.GameConfig(context.Background())
	if err != nil {
		t.Fatalf("GameConfig failed: %v", err)
	}

	if !cfg.Paused || cfg.HouseEdgeBps != 100 || cfg.BtcDelay != 6 || cfg.TokenDecimals != 6 {
		t.Errorf("Unexpected snapshot: %+v", cfg)
	}
	if cfg.MaxBet.Int64() != 10_000_000 || cfg.MaxProfit.Int64() != 1_000_000 {
		t.Errorf("Unexpected caps: maxBet=%s maxProfit=%s", cfg.MaxBet, cfg.MaxProfit)
	}
}

// One failing read fails the whole snapshot; no partial view escapes.
func TestGameConfigNoPartialSnapshot(t *testing.T) {
	client := testClient(func(to common.Address, data []byte) ([]byte, error) {
		if isMethod("hilo", data, "maxProfit") {
			return nil, errors.New("rpc timeout")
		}
		if to == tokenAddr {
			return packOutputs(t, "erc20", "decimals", uint8(6)), nil
		}
		if isMethod("hilo", data, "paused") {
			return packOutputs(t, "hilo", "paused", false), nil
		}
		return packOutputs(t, "hilo", "maxBet", big.NewInt(1)), nil
	})

	if _, err := client.GameConfig(context.Background()); err == nil {
		t.Fatal("Expected snapshot failure when one read fails")
	}
}

func TestDecimalsMemoized(t *testing.T) {
	calls := 0
	client := testClient(func(to common.Address, data []byte) ([]byte, error) {
		calls++
		return packOutputs(t, "erc20", "decimals", uint8(18)), nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		dec, err := client.Decimals(ctx)
		if err != nil {
			t.Fatalf("Decimals failed: %v", err)
		}
		if dec != 18 {
			t.Fatalf("Decimals = %d, want 18", dec)
		}
	}

	if calls != 1 {
		t.Errorf("decimals fetched %d times, want 1 (memoized)", calls)
	}
}

func TestTokenStateRejectsBadAddress(t *testing.T) {
	client := testClient(func(common.Address, []byte) ([]byte, error) {
		t.Fatal("no call should be made for a malformed address")
		return nil, nil
	})

	_, err := client.TokenState(context.Background(), "not-an-address")
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Got %v, want ErrInvalidAddress", err)
	}
}

func TestTokenState(t *testing.T) {
	client := testClient(func(to common.Address, data []byte) ([]byte, error) {
		switch {
		case isMethod("erc20", data, "decimals"):
			return packOutputs(t, "erc20", "decimals", uint8(6)), nil
		case isMethod("erc20", data, "balanceOf"):
			return packOutputs(t, "erc20", "balanceOf", big.NewInt(500)), nil
		case isMethod("erc20", data, "allowance"):
			return packOutputs(t, "erc20", "allowance", big.NewInt(1000)), nil
		}
		return nil, errors.New("unexpected call")
	})

	state, err := client.TokenState(context.Background(), player1.Hex())
	if err != nil {
		t.Fatalf("TokenState failed: %v", err)
	}
	if state.Balance.Int64() != 500 || state.Allowance.Int64() != 1000 || state.Decimals != 6 {
		t.Errorf("Unexpected state: %+v", state)
	}
}
