// Package block defines the interface required for all blockchain or network connections.
package block

import (
	"context"
	"encoding/json"
	"log"

	"github.com/tarancss/educertify/lib/block/aptos"
	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/lib/config"
)

// Chain is an interface that contains the required methods. The dashboards only read state through view functions
// and follow submitted transactions; signing and submitting belong to the wallet bridge.
type Chain interface {
	// member-type methods
	AvgBlock() int // average block time in seconds
	// methods
	Close()
	View(ctx context.Context, p types.Payload) ([]json.RawMessage, error)
	Transaction(ctx context.Context, hash string) (types.Trans, error)
}

// Init loads all the clients read from the config to blockchains into a map.
func Init(bc []config.BlockConfig) (m map[string]Chain, err error) {
	m = make(map[string]Chain)

	for _, block := range bc {
		switch block.Name {
		case "mainnet", "testnet", "devnet", "local":
			var c *aptos.Aptos
			if c, err = aptos.Init(block.Node, block.Secret); err != nil {
				return
			}

			m[block.Name] = c
		default:
			log.Printf("Blockchain interface not defined for %s. Ignoring...\n", block.Name)
		}
	}

	return
}

// End closes gracefully all the blockchain clients opened.
func End(bc map[string]Chain) {
	for _, block := range bc {
		block.Close()
	}
}
