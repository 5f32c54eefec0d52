// Package explorer implements the transaction explorer microservice and the explorer links shown to users. The
// explorer follows the transactions submitted by the educertify service until they are committed and sends an event
// with their outcome.
package explorer

import (
	"fmt"
	"log"
	"sync"

	"github.com/tarancss/educertify/lib/block"
	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/lib/msg"
)

// Explorer implements an explorer service.
type Explorer struct {
	bc map[string]block.Chain // map of blockchain clients
	ws map[string]*Watcher    // map of network watchers
	mb msg.MsgBroker
}

// New instantiates a new explorer service.
func New(mb msg.MsgBroker, bc map[string]block.Chain) *Explorer {
	return &Explorer{
		bc: bc,
		ws: make(map[string]*Watcher),
		mb: mb,
	}
}

// Explore starts a watcher go routine for each network available. Each watcher follows the transactions requested by
// the educertify service through the message broker and publishes their outcome as transaction events. The returned
// channel receives a message once all watchers have stopped.
func (e *Explorer) Explore() chan string {
	ret := make(chan string, 1)
	// channel to wait for network watchers
	w := make(chan string, len(e.bc))
	n := 0

	for net, c := range e.bc {
		net := net
		wt, err := NewWatcher(net, c, func(tx types.Trans) {
			err := e.mb.SendTrans(net, []types.Trans{tx})
			log.Printf("[%s] Sending event %+v err:%v", net, tx, err)
		})
		if err != nil {
			log.Printf("[%s] Cannot watch network, err:%v", net, err)

			continue
		}
		e.ws[net] = wt
		// listen for watch requests, pending requests in the broker queues are followed from the start
		if err := e.ManageWatchRequests(net); err != nil {
			log.Printf("[%s] Cannot consume watch requests from broker, err:%v", net, err)

			continue
		}

		n++

		go func() {
			wt.Run()
			w <- "[" + net + "] Done!"
		}()
	}
	// routine to wait for all networks to complete
	go func() {
		for i := 1; i < n+1; i++ {
			log.Printf("Explore, channel %d/%d returned: %s", i, n, <-w)
		}
		ret <- "Done!"
	}()

	return ret
}

// StopExplorer will send termination signals to all network watchers.
func (e *Explorer) StopExplorer() {
	for _, w := range e.ws {
		w.Stop()
	}
}

// ManageWatchRequests starts a go routine to receive and manage watch requests for the blockchain named 'net'.
func (e *Explorer) ManageWatchRequests(net string) error {
	var mut *sync.Mutex = new(sync.Mutex)

	mut.Lock()

	reqCh, errCh, err := e.mb.GetReqs(net, mut)
	if err != nil {
		return fmt.Errorf("explorer: cannot get requests: %w", err)
	}

	w := e.ws[net]

	// launch request channel reader
	go func() {
		log.Printf("[%s] Start listening to watch request channel", net)

		for {
			select {
			case req, ok := <-reqCh:
				if !ok {
					log.Printf("[%s] Stop listening to watch request channel", net)

					return
				}

				log.Printf("Received request %+v", req)
				e.process(net, w, req)
				mut.Unlock()
			case err, ok := <-errCh:
				if !ok {
					errCh = nil

					continue
				}

				log.Printf("[%s] Received error %+v", net, err)
			}
		}
	}()

	return nil
}

// process applies a watch request to the network watcher.
func (e *Explorer) process(net string, w *Watcher, req msg.WatchReq) {
	// validate request
	if req.Net != net || req.Hash == "" || (req.Act != msg.WATCH && req.Act != msg.UNWATCH) {
		log.Printf("[%s] Request has wrong net %s, missing hash %s or wrong action %d", net, req.Net, req.Hash, req.Act)

		return
	}

	if req.Act == msg.WATCH {
		if err := w.Track(req.Hash); err != nil {
			log.Printf("[%s] Error following transaction %s:%v", net, req.Hash, err)
		}

		return
	}

	if !w.Untrack(req.Hash) {
		log.Printf("[%s] Transaction %s was not being followed. Ignoring...", net, req.Hash)
	}
}
