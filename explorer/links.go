package explorer

import (
	"net/url"
	"strings"
)

// Default explorer base URL and network.
const (
	DefaultBase    = "https://explorer.aptoslabs.com"
	DefaultNetwork = "testnet"
)

// Links builds explorer URLs for a network.
type Links struct {
	Base    string `json:"base"`
	Network string `json:"network"`
}

// NewLinks returns links for network on the explorer at base. Empty values take the defaults.
func NewLinks(base, network string) Links {
	if base == "" {
		base = DefaultBase
	}
	if network == "" {
		network = DefaultNetwork
	}
	return Links{Base: strings.TrimRight(base, "/"), Network: network}
}

// Tx returns the explorer page of transaction hash.
func (l Links) Tx(hash string) string {
	return l.Base + "/txn/" + hash + "?network=" + url.QueryEscape(l.Network)
}

// Account returns the explorer page of address.
func (l Links) Account(address string) string {
	return l.Base + "/account/" + address + "?network=" + url.QueryEscape(l.Network)
}
