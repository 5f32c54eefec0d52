package txn

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarancss/educertify/bridge"
	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/session"
)

// mockBridge counts submissions and blocks them until release is closed, if set, or the context is done.
type mockBridge struct {
	calls   int32
	hash    string
	err     error
	release chan struct{}
	got     types.Payload
}

func (m *mockBridge) Connect(context.Context) (bridge.Account, error) {
	return bridge.Account{Address: "0xABC"}, nil
}

func (m *mockBridge) SignAndSubmitTransaction(ctx context.Context, p types.Payload) (bridge.PendingTransaction, error) {
	atomic.AddInt32(&m.calls, 1)
	m.got = p
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return bridge.PendingTransaction{}, ctx.Err()
		}
	}
	return bridge.PendingTransaction{Hash: m.hash}, m.err
}

func connected(t *testing.T, b bridge.Bridge) *session.Session {
	s := session.New()
	_, err := s.Connect(context.Background(), b)
	require.NoError(t, err)
	return s
}

func TestRunWithoutSession(t *testing.T) {
	payloads := []types.Payload{
		types.NewPayload("0x1::educertify::initialize_issuer"),
		types.NewPayload("0x1::educertify::revoke_certificate", "0xS", "3"),
	}
	for _, p := range payloads {
		m := &mockBridge{hash: "0xHASH"}
		e := NewExecutor(session.New(), m)

		_, err := e.Run(context.Background(), p)
		require.ErrorIs(t, err, ErrWalletNotConnected)

		res := e.Submit(context.Background(), p).Result()
		assert.Equal(t, Err, res.State)
		require.ErrorIs(t, res.Err, ErrWalletNotConnected)

		assert.Zero(t, atomic.LoadInt32(&m.calls), "bridge must not be called")
	}
}

func TestRunWithoutBridge(t *testing.T) {
	s := connected(t, &mockBridge{})
	e := NewExecutor(s, nil)

	_, err := e.Run(context.Background(), types.NewPayload("0x1::educertify::initialize_issuer"))
	require.ErrorIs(t, err, ErrWalletNotConnected)
}

func TestRun(t *testing.T) {
	m := &mockBridge{hash: "0xHASH"}
	e := NewExecutor(connected(t, m), m)
	p := types.NewPayload("0x1::educertify::issue_certificate", "0xS", "Intro to Move", "Prof. Smith", "1700000000", "https://img")

	hash, err := e.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "0xHASH", hash)
	assert.Equal(t, p, m.got)
	assert.EqualValues(t, 1, m.calls)
}

func TestRunRejected(t *testing.T) {
	m := &mockBridge{err: bridge.ErrRejected}
	e := NewExecutor(connected(t, m), m)

	hash, err := e.Run(context.Background(), types.NewPayload("0x1::educertify::initialize_issuer"))
	require.ErrorIs(t, err, bridge.ErrRejected)
	assert.Empty(t, hash)
	assert.EqualValues(t, 1, m.calls, "no retry")
}

func TestSubmitPending(t *testing.T) {
	m := &mockBridge{hash: "0xHASH", release: make(chan struct{})}
	e := NewExecutor(connected(t, m), m)

	op := e.Submit(context.Background(), types.NewPayload("0x1::educertify::initialize_certificate_store"))
	assert.Equal(t, Pending, op.Result().State)

	close(m.release)
	res := op.Wait()
	assert.Equal(t, OK, res.State)
	assert.Equal(t, "0xHASH", res.Hash)
	assert.Equal(t, res, op.Result())
}

func TestSubmitOutlivesCaller(t *testing.T) {
	m := &mockBridge{hash: "0xHASH", release: make(chan struct{})}
	e := NewExecutor(connected(t, m), m)

	ctx, cancel := context.WithCancel(context.Background())
	op := e.Submit(ctx, types.NewPayload("0x1::educertify::issue_certificate", "0xS", "c", "i", "1", "u"))

	// the caller goes away while the wallet user is still deciding
	cancel()
	assert.Never(t, func() bool { return op.Result().State != Pending }, 50*time.Millisecond, 5*time.Millisecond)

	close(m.release)
	res := op.Wait()
	assert.Equal(t, OK, res.State)
	assert.Equal(t, "0xHASH", res.Hash)
}

func TestRunEmptyHash(t *testing.T) {
	m := &mockBridge{}
	e := NewExecutor(connected(t, m), m)

	hash, err := e.Run(context.Background(), types.NewPayload("0x1::educertify::initialize_issuer"))
	require.ErrorIs(t, err, ErrNoHash)
	assert.Empty(t, hash)

	res := e.Submit(context.Background(), types.NewPayload("0x1::educertify::initialize_issuer")).Wait()
	assert.Equal(t, Err, res.State)
	assert.ErrorIs(t, res.Err, ErrNoHash)
}

func TestGo(t *testing.T) {
	boom := errors.New("boom")
	res := Go(func() (string, error) { return "", boom }).Wait()
	assert.Equal(t, Err, res.State)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, "err", res.State.String())
}
