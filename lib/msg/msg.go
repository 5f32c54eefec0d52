// Package msg defines the interface for different message brokers.
//
package msg

import (
	"sync"

	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/notify"
)

// Actions to be applied to transactions for watch requests.
const (
	WATCH   = 0
	UNWATCH = 1
)

// WatchReq defines the message that the educertify service publishes to the explorer to ask it to follow a submitted
// transaction until it is committed.
type WatchReq struct {
	Net  string `json:"net"`
	Hash string `json:"hash"`
	Act  int    `json:"act"` // action to be applied
}

type MsgBroker interface {
	Setup(interface{}) error
	Close() error

	// methods for educertify service
	SendNotification(n notify.Notification) error
	SendRequest(net string, r WatchReq) error
	GetEvents(net string, mut *sync.Mutex) (<-chan types.Trans, <-chan error, error)

	// methods for explorer service
	GetReqs(net string, mut *sync.Mutex) (<-chan WatchReq, <-chan error, error)
	SendTrans(net string, t []types.Trans) error
}
