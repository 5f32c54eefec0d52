package explorer

import (
	"context"
	"errors"
	"log"
	"time"

	ne "github.com/tarancss/educertify/explorer/netexplorer"
	"github.com/tarancss/educertify/lib/block"
	"github.com/tarancss/educertify/lib/block/types"
)

// DefaultMaxPolls is the number of polls after which a transaction still pending is reported as it is.
const DefaultMaxPolls = 30

// Errors returned by the watcher.
var (
	ErrStopped = errors.New("watcher is stopped")
	ErrNoHash  = errors.New("missing transaction hash")
	ErrNoChain = errors.New("no chain client for network")
)

// Watcher follows submitted transactions on a network until they are committed. It only reads their status, it never
// submits anything. Interval and MaxPolls may be changed before Run.
type Watcher struct {
	Net      string
	Interval time.Duration
	MaxPolls int

	c      block.Chain
	ne     *ne.NetExplorer
	report func(types.Trans)
	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher returns a watcher polling c every average block time and calling report once per followed transaction.
// It fails with ErrNoChain if c is nil.
func NewWatcher(net string, c block.Chain, report func(types.Trans)) (*Watcher, error) {
	if c == nil {
		return nil, ErrNoChain
	}

	ctx, cancel := context.WithCancel(context.Background())

	interval := time.Duration(c.AvgBlock()) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	return &Watcher{
		Net:      net,
		Interval: interval,
		MaxPolls: DefaultMaxPolls,
		c:        c,
		ne:       ne.New(),
		report:   report,
		wake:     make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Track starts following hash.
func (w *Watcher) Track(hash string) error {
	if hash == "" {
		return ErrNoHash
	}
	if w.ne.Status() == ne.STOP {
		return ErrStopped
	}

	w.ne.Add(hash)
	log.Printf("[%s] Following transaction %s", w.Net, hash)

	select {
	case w.wake <- struct{}{}:
	default:
	}

	return nil
}

// Untrack stops following hash without reporting it. It returns false if hash was not followed.
func (w *Watcher) Untrack(hash string) bool {
	_, ok := w.ne.Del(hash)
	return ok
}

// Len returns the number of transactions being followed.
func (w *Watcher) Len() int {
	return w.ne.Len()
}

// Run polls the followed transactions until Stop is called.
func (w *Watcher) Run() {
	log.Printf("[%s] Watching transactions every %v", w.Net, w.Interval)

	t := time.NewTicker(w.Interval)
	defer t.Stop()

	for w.ne.Status() == ne.WORK {
		if w.ne.Len() == 0 {
			// wait until there is something to follow
			select {
			case <-w.wake:
			case <-w.ctx.Done():
				return
			}
		}

		select {
		case <-t.C:
			w.poll()
		case <-w.ctx.Done():
			return
		}
	}
}

// Stop ends Run. Followed transactions are dropped without being reported.
func (w *Watcher) Stop() {
	w.ne.Stop()
	w.cancel()
}

func (w *Watcher) poll() {
	for _, hash := range w.ne.Poll() {
		tx, err := w.c.Transaction(w.ctx, hash)
		switch {
		case err == nil && tx.Status != types.TrxPending:
			if _, ok := w.ne.Del(hash); ok {
				w.report(tx)
			}

			continue
		case err == nil:
		case errors.Is(err, types.ErrNoTrx):
			tx = types.Trans{Hash: hash, Status: types.TrxPending}
		case w.ctx.Err() != nil:
			return
		default:
			log.Printf("[%s] Error getting transaction %s:%v", w.Net, hash, err)
			tx = types.Trans{Hash: hash, Status: types.TrxPending}
		}

		if w.ne.Polls(hash) >= w.MaxPolls {
			if _, ok := w.ne.Del(hash); ok {
				log.Printf("[%s] Transaction %s still pending after %d polls", w.Net, hash, w.MaxPolls)
				w.report(tx)
			}
		}
	}
}
