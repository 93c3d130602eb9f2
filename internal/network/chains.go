// Package network describes the EVM chains a token can be deployed to and
// talks to their JSON-RPC endpoints.
package network

import (
	"fmt"
	"sort"
	"strings"
)

// Chain IDs of the supported networks.
const (
	PolygonAmoyID  uint64 = 80002
	SepoliaID      uint64 = 11155111
	BSCTestnetID   uint64 = 97
	BlastSepoliaID uint64 = 168587773
)

// Chain describes a supported EVM network.
type Chain struct {
	ID             uint64 `json:"id" yaml:"id"`
	Key            string `json:"key" yaml:"key"`
	Name           string `json:"name" yaml:"name"`
	NativeCurrency string `json:"nativeCurrency" yaml:"nativeCurrency"`
	Decimals       uint8  `json:"decimals" yaml:"decimals"`
	ExplorerURL    string `json:"explorerUrl" yaml:"explorerUrl"`
	PublicRPCURL   string `json:"rpcUrl" yaml:"rpcUrl"`
	Testnet        bool   `json:"testnet" yaml:"testnet"`
}

// Chains lists the networks the wallet connector offers, in display order.
var Chains = []Chain{
	{
		ID:             PolygonAmoyID,
		Key:            "amoy",
		Name:           "Polygon Amoy",
		NativeCurrency: "POL",
		Decimals:       18,
		ExplorerURL:    "https://amoy.polygonscan.com",
		PublicRPCURL:   "https://rpc-amoy.polygon.technology",
		Testnet:        true,
	},
	{
		ID:             SepoliaID,
		Key:            "sepolia",
		Name:           "Sepolia",
		NativeCurrency: "ETH",
		Decimals:       18,
		ExplorerURL:    "https://sepolia.etherscan.io",
		PublicRPCURL:   "https://rpc.sepolia.org",
		Testnet:        true,
	},
	{
		ID:             BSCTestnetID,
		Key:            "bsc-testnet",
		Name:           "Binance Smart Chain Testnet",
		NativeCurrency: "tBNB",
		Decimals:       18,
		ExplorerURL:    "https://testnet.bscscan.com",
		PublicRPCURL:   "https://data-seed-prebsc-1-s1.bnbchain.org:8545",
		Testnet:        true,
	},
	{
		ID:             BlastSepoliaID,
		Key:            "blast-sepolia",
		Name:           "Blast Sepolia",
		NativeCurrency: "ETH",
		Decimals:       18,
		ExplorerURL:    "https://sepolia.blastscan.io",
		PublicRPCURL:   "https://sepolia.blast.io",
		Testnet:        true,
	},
}

// alchemyHosts maps chains that have an Alchemy endpoint to its host.
var alchemyHosts = map[uint64]string{
	PolygonAmoyID: "polygon-amoy.g.alchemy.com",
	SepoliaID:     "eth-sepolia.g.alchemy.com",
}

// ByID returns the chain with the given id.
func ByID(id uint64) (Chain, bool) {
	for _, c := range Chains {
		if c.ID == id {
			return c, true
		}
	}
	return Chain{}, false
}

// Lookup resolves a chain by key ("amoy") or decimal id ("80002").
func Lookup(nameOrID string) (Chain, error) {
	s := strings.ToLower(strings.TrimSpace(nameOrID))
	for _, c := range Chains {
		if c.Key == s || fmt.Sprint(c.ID) == s {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("unsupported network %q (supported: %s)", nameOrID, strings.Join(Keys(), ", "))
}

// Keys returns the sorted chain keys.
func Keys() []string {
	keys := make([]string, len(Chains))
	for i, c := range Chains {
		keys[i] = c.Key
	}
	sort.Strings(keys)
	return keys
}

// RPCURL returns the endpoint to use for c. An Alchemy key, when given and
// supported for the chain, takes precedence over the public endpoint.
func (c Chain) RPCURL(alchemyAPIKey string) string {
	if host, ok := alchemyHosts[c.ID]; ok && alchemyAPIKey != "" {
		return fmt.Sprintf("https://%s/v2/%s", host, alchemyAPIKey)
	}
	return c.PublicRPCURL
}

// AddressURL returns the explorer link for an address.
func (c Chain) AddressURL(address string) string {
	return c.ExplorerURL + "/address/" + address
}
