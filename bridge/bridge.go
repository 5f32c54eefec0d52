// Package bridge defines the wallet bridge capability: the external wallet that holds the keys, asks its user for
// approval and signs and submits transactions on their behalf.
package bridge

import (
	"context"
	"errors"

	"github.com/tarancss/educertify/lib/block/types"
)

// Errors returned by bridges.
var (
	ErrNotFound = errors.New("wallet not found")
	ErrRejected = errors.New("wallet rejected the request")
)

// Account is the wallet account returned on connection.
type Account struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey,omitempty"`
}

// PendingTransaction is the result of a submission, its hash identifies the transaction on chain.
type PendingTransaction struct {
	Hash string `json:"hash"`
}

// Bridge is the wallet capability. Both calls may block for as long as the wallet user takes to decide; callers
// should not expect a timeout from the bridge.
type Bridge interface {
	Connect(ctx context.Context) (Account, error)
	SignAndSubmitTransaction(ctx context.Context, p types.Payload) (PendingTransaction, error)
}
