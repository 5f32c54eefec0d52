// Package session holds the wallet session shared by the dashboards: the address of the connected wallet, if any.
// A session lives as long as the process, there is no disconnection or refresh.
package session

import (
	"context"
	"sync"

	"github.com/tarancss/educertify/bridge"
)

// Session is the wallet session. The zero value is a disconnected session.
type Session struct {
	mu      sync.RWMutex
	address string
}

// New returns a disconnected session.
func New() *Session {
	return &Session{}
}

// Address returns the connected address, and false if no wallet is connected.
func (s *Session) Address() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address, s.address != ""
}

// Connect asks the bridge for an account and stores its address. A nil bridge yields bridge.ErrNotFound. The session
// is left untouched on any error.
func (s *Session) Connect(ctx context.Context, b bridge.Bridge) (string, error) {
	if b == nil {
		return "", bridge.ErrNotFound
	}

	acc, err := b.Connect(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.address = acc.Address
	s.mu.Unlock()

	return acc.Address, nil
}
