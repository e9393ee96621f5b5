package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"hilo-gateway-backend/internal/config"
)

// Caller is the read surface the client needs from an RPC backend. It is
// satisfied by *ethclient.Client and by fakes in tests.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client is the typed session against one network profile: bound contract
// addresses, an optional operator key for writes and the process-wide token
// decimals memo. All external-call state lives here, nothing at module level.
type Client struct {
	network config.Network
	caller  Caller
	eth     *ethclient.Client

	game  common.Address
	token common.Address
	hbk   common.Address

	opts     *bind.TransactOpts
	operator common.Address
	gameTx   *bind.BoundContract
	tokenTx  *bind.BoundContract

	decMu    sync.Mutex
	decimals *uint8
}

// Dial connects to the profile's RPC endpoint and verifies the chain id
// matches before anything else; a wrong network is a configuration error,
// not something to limp along with.
func Dial(ctx context.Context, network config.Network, operatorKey string) (*Client, error) {
	c, err := newClient(network, operatorKey)
	if err != nil {
		return nil, err
	}

	eth, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc %s: %v", network.RPCURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to read chain id: %v", err)
	}
	if chainID.Int64() != network.ChainID {
		eth.Close()
		return nil, fmt.Errorf("rpc is on chain %d, profile %q expects %d", chainID, network.Key, network.ChainID)
	}

	c.eth = eth
	c.caller = eth
	c.gameTx = bind.NewBoundContract(c.game, hiloABI, eth, eth, eth)
	c.tokenTx = bind.NewBoundContract(c.token, erc20ABI, eth, eth, eth)
	return c, nil
}

func newClient(network config.Network, operatorKey string) (*Client, error) {
	c := &Client{network: network}

	var err error
	if c.game, err = parseAddress(network.GameAddress); err != nil {
		return nil, fmt.Errorf("game contract: %w", err)
	}
	if c.token, err = parseAddress(network.TokenAddress); err != nil {
		return nil, fmt.Errorf("token contract: %w", err)
	}
	if c.hbk, err = parseAddress(network.HBKAddress); err != nil {
		return nil, fmt.Errorf("hbk contract: %w", err)
	}

	if operatorKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(operatorKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid operator key: %v", err)
		}
		opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(network.ChainID))
		if err != nil {
			return nil, fmt.Errorf("failed to build transactor: %v", err)
		}
		c.opts = opts
		c.operator = crypto.PubkeyToAddress(key.PublicKey)
	}

	return c, nil
}

func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// Network returns the active profile.
func (c *Client) Network() config.Network { return c.network }

// ReadOnly reports whether no operator key is loaded.
func (c *Client) ReadOnly() bool { return c.opts == nil }

// Operator returns the signing address, or the zero string in read-only mode.
func (c *Client) Operator() string {
	if c.opts == nil {
		return ""
	}
	return c.operator.Hex()
}

// call packs one view-function call, executes it and unpacks the raw return.
func (c *Client) call(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	input, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %v", method, err)
	}

	out, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s failed: %w", method, err)
	}

	values, err := contract.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %v", method, err)
	}
	return values, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
