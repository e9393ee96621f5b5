package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract interfaces the gateway consumes. The ABIs are owned by the
// deployed contracts; only the entries the gateway actually calls are
// declared here.

const hiloABIJSON = `[
	{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"houseEdgeBps","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"btcDelay","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"maxBet","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"maxProfit","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"nextBetId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"bets","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
		{"name":"player","type":"address"},
		{"name":"wager","type":"uint128"},
		{"name":"low","type":"uint16"},
		{"name":"high","type":"uint16"},
		{"name":"placedAt","type":"uint64"},
		{"name":"btcHeight","type":"uint32"},
		{"name":"settled","type":"bool"},
		{"name":"won","type":"bool"},
		{"name":"roll","type":"uint16"}
	]},
	{"type":"function","name":"placeBet","stateMutability":"nonpayable","inputs":[
		{"name":"low","type":"uint16"},
		{"name":"high","type":"uint16"},
		{"name":"playerSeed","type":"string"},
		{"name":"suggestedDelay","type":"uint256"},
		{"name":"amount","type":"uint128"}
	],"outputs":[]},
	{"type":"function","name":"settle","stateMutability":"nonpayable","inputs":[
		{"name":"betId","type":"uint256"},
		{"name":"playerSeed","type":"string"}
	],"outputs":[]},
	{"type":"function","name":"setBtcDelay","stateMutability":"nonpayable","inputs":[
		{"name":"d","type":"uint256"}
	],"outputs":[]},
	{"type":"event","name":"Placed","anonymous":false,"inputs":[
		{"name":"betId","type":"uint256","indexed":true},
		{"name":"player","type":"address","indexed":true},
		{"name":"wager","type":"uint128","indexed":false},
		{"name":"low","type":"uint16","indexed":false},
		{"name":"high","type":"uint16","indexed":false},
		{"name":"btcHeight","type":"uint32","indexed":false}
	]}
]`

const erc20ABIJSON = `[
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const hbkABIJSON = `[
	{"type":"function","name":"getLastHeader","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple","components":[
		{"name":"height","type":"uint32"},
		{"name":"blockHash","type":"bytes32"},
		{"name":"version","type":"uint32"},
		{"name":"timestamp","type":"uint32"},
		{"name":"bits","type":"uint32"},
		{"name":"nonce","type":"uint32"},
		{"name":"txCount","type":"uint32"},
		{"name":"work","type":"uint32"}
	]}]},
	{"type":"function","name":"getHeaderN","stateMutability":"view","inputs":[{"name":"height","type":"uint32"}],"outputs":[{"name":"","type":"tuple","components":[
		{"name":"height","type":"uint32"},
		{"name":"blockHash","type":"bytes32"},
		{"name":"version","type":"uint32"},
		{"name":"timestamp","type":"uint32"},
		{"name":"bits","type":"uint32"},
		{"name":"nonce","type":"uint32"},
		{"name":"txCount","type":"uint32"},
		{"name":"work","type":"uint32"}
	]}]}
]`

var (
	hiloABI  = mustParseABI(hiloABIJSON)
	erc20ABI = mustParseABI(erc20ABIJSON)
	hbkABI   = mustParseABI(hbkABIJSON)
)

// headerTuple matches the HBK header struct layout for abi.ConvertType.
type headerTuple struct {
	Height    uint32
	BlockHash [32]byte
	Version   uint32
	Timestamp uint32
	Bits      uint32
	Nonce     uint32
	TxCount   uint32
	Work      uint32
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("chain: bad ABI: " + err.Error())
	}
	return parsed
}
