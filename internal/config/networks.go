package config

import (
	"fmt"
	"os"
)

// Network is one named chain profile: chain identity, RPC endpoint,
// explorer and the three contract addresses the gateway talks to. Switching
// profiles is a process restart, so nothing session-local survives a switch.
type Network struct {
	Key         string
	Label       string
	ChainID     int64
	ChainIDHex  string
	RPCURL      string
	ExplorerURL string

	GameAddress  string
	TokenAddress string
	HBKAddress   string
}

// Hemi mainnet and testnet profiles. The game contract may be unset on
// testnet until one is deployed there; env vars override every field.
var networks = map[string]Network{
	"mainnet": {
		Key:          "mainnet",
		Label:        "Hemi Mainnet",
		ChainID:      43111,
		ChainIDHex:   "0xA867",
		RPCURL:       "https://rpc.hemi.network/rpc",
		ExplorerURL:  "https://explorer.hemi.xyz",
		GameAddress:  "",
		TokenAddress: "",
		HBKAddress:   "",
	},
	"testnet": {
		Key:          "testnet",
		Label:        "Hemi Testnet",
		ChainID:      743111,
		ChainIDHex:   "0xb56c7",
		RPCURL:       "https://testnet.rpc.hemi.network/rpc",
		ExplorerURL:  "https://testnet.explorer.hemi.xyz",
		GameAddress:  "",
		TokenAddress: "0xD47971C7F5B1067d25cd45d30b2c9eb60de96443",
		HBKAddress:   "0xeC9fa5daC1118963933e1A675a4EEA0009b7f215",
	},
}

// SelectNetwork resolves a profile by name and applies env overrides. The
// game contract address is mandatory once resolved since every endpoint
// calls it.
func SelectNetwork(key string) (Network, error) {
	n, ok := networks[key]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q (want mainnet or testnet)", key)
	}

	override(&n.RPCURL, "RPC_URL")
	override(&n.ExplorerURL, "EXPLORER_URL")
	override(&n.GameAddress, "GAME_CONTRACT_ADDRESS")
	override(&n.TokenAddress, "TOKEN_CONTRACT_ADDRESS")
	override(&n.HBKAddress, "HBK_CONTRACT_ADDRESS")

	if n.GameAddress == "" {
		return Network{}, fmt.Errorf("network %q has no game contract address (set GAME_CONTRACT_ADDRESS)", key)
	}
	if n.TokenAddress == "" || n.HBKAddress == "" {
		return Network{}, fmt.Errorf("network %q is missing token or hbk contract address", key)
	}

	return n, nil
}

// ExplorerTxURL builds an explorer link for a transaction hash.
func (n Network) ExplorerTxURL(txHash string) string {
	return n.ExplorerURL + "/tx/" + txHash
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
