// Package txn implements the transaction executor: every state-changing action of the dashboards ends up as a call to
// a fixed entry function, signed and submitted through the wallet bridge.
//
// The executor has no user-facing side effects. Its outcome is an Operation that callers hand to a notifier.
package txn

import (
	"context"
	"errors"
	"fmt"

	"github.com/tarancss/educertify/bridge"
	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/session"
)

// Errors returned by the executor.
var (
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrNoHash             = errors.New("no transaction hash returned")
)

// Executor submits payloads through the bridge on behalf of the session's wallet.
type Executor struct {
	s *session.Session
	b bridge.Bridge
}

// NewExecutor returns an executor. b may be nil when no wallet bridge is available.
func NewExecutor(s *session.Session, b bridge.Bridge) *Executor {
	return &Executor{s: s, b: b}
}

// Run signs and submits p and returns the transaction hash. Without a connected wallet or a bridge it fails with
// ErrWalletNotConnected before calling the bridge. The call lasts as long as the wallet takes, it is not retried. A
// bridge resolving without a hash counts as a rejection.
func (e *Executor) Run(ctx context.Context, p types.Payload) (string, error) {
	if _, ok := e.s.Address(); !ok || e.b == nil {
		return "", ErrWalletNotConnected
	}

	tx, err := e.b.SignAndSubmitTransaction(ctx, p)
	if err != nil {
		return "", fmt.Errorf("transaction rejected: %w", err)
	}
	if tx.Hash == "" {
		return "", fmt.Errorf("transaction rejected: %w", ErrNoHash)
	}

	return tx.Hash, nil
}

// Submit starts Run on its own goroutine and returns the pending operation. A failed precondition returns an
// operation that is already resolved. Once submitted the operation is not cancelled with ctx: the wallet may still sign
// it, so it always runs to the bridge's answer.
func (e *Executor) Submit(ctx context.Context, p types.Payload) *Operation {
	if _, ok := e.s.Address(); !ok || e.b == nil {
		return Failed(ErrWalletNotConnected)
	}

	ctx = context.WithoutCancel(ctx)

	return Go(func() (string, error) { return e.Run(ctx, p) })
}
