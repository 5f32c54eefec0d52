// Package dashboard implements the educertify service: the teacher and student dashboards of a single wallet session,
// served over a RESTful API.
//
// Every state-changing action follows the same path: a payload for a fixed entry function of the educertify module is
// signed and submitted through the wallet bridge, its lifecycle is shown as notifications, and on success the
// transaction is handed to the tracker so its commitment is reported later. Certificates are only ever read from the
// chain through the get_certificates view function.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/tarancss/educertify/bridge"
	"github.com/tarancss/educertify/explorer"
	"github.com/tarancss/educertify/lib/block"
	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/lib/metrics"
	"github.com/tarancss/educertify/lib/msg"
	"github.com/tarancss/educertify/lib/store"
	"github.com/tarancss/educertify/notify"
	"github.com/tarancss/educertify/session"
	"github.com/tarancss/educertify/txn"
)

// Entry and view functions of the educertify module.
const (
	FnInitializeIssuer  = "initialize_issuer"
	FnInitializeStore   = "initialize_certificate_store"
	FnIssueCertificate  = "issue_certificate"
	FnRevokeCertificate = "revoke_certificate"
	FnGetCertificates   = "get_certificates"
)

// User messages shared by the dashboards.
const (
	MsgWalletNotFound = "Wallet not found."
	MsgConnectFailed  = "Failed to connect wallet."
	MsgConnected      = "Wallet connected!"
	MsgConnectFirst   = "Please connect wallet first."
	MsgFillAllFields  = "Please fill in all fields."
	MsgCommitted      = "Transaction committed"
	MsgFailedOnChain  = "Transaction failed on chain: "
)

// Tracker follows submitted transactions until they are committed.
type Tracker interface {
	Track(hash string) error
}

// BrokerTracker asks the explorer service to follow transactions through the message broker.
type BrokerTracker struct {
	Net string
	MB  msg.MsgBroker
}

// Track sends a watch request for hash.
func (b BrokerTracker) Track(hash string) error {
	return b.MB.SendRequest(b.Net, msg.WatchReq{Net: b.Net, Hash: hash, Act: msg.WATCH})
}

// Options configure an App. Session, Chain and Module are required; Bridge may be nil when no wallet is available.
type Options struct {
	Net      string
	Module   string
	Session  *session.Session
	Bridge   bridge.Bridge
	Chain    block.Chain
	Links    explorer.Links
	Sink     notify.Sink // shown in addition to the feed
	Recorder store.DB
	Tracker  Tracker
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// App contains the data necessary to deliver the service.
type App struct {
	net    string
	module string
	s      *session.Session
	b      bridge.Bridge
	c      block.Chain
	ex     *txn.Executor
	n      *notify.Notifier
	feed   *notify.Feed
	links  explorer.Links
	rec    store.DB
	tr     Tracker
	m      *metrics.Metrics
	now    func() time.Time

	mu        sync.Mutex
	celebrate bool

	Teacher *Teacher
	Student *Student

	srv  *http.Server  // http server
	ssrv *http.Server  // https server
	sc   chan struct{} // http server channel used for graceful shutdowns
}

// New returns a pointer to a new App.
func New(o Options) *App {
	if o.Session == nil {
		o.Session = session.New()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Links == (explorer.Links{}) {
		o.Links = explorer.NewLinks("", o.Net)
	}

	a := &App{
		net:    o.Net,
		module: o.Module,
		s:      o.Session,
		b:      o.Bridge,
		c:      o.Chain,
		ex:     txn.NewExecutor(o.Session, o.Bridge),
		feed:   notify.NewFeed(0),
		links:  o.Links,
		rec:    o.Recorder,
		tr:     o.Tracker,
		m:      o.Metrics,
		now:    o.Now,
		sc:     make(chan struct{}),
	}

	var sink notify.Sink = a.feed
	if o.Sink != nil {
		sink = notify.Multi{a.feed, o.Sink}
	}
	a.n = notify.New(sink, a.links)

	a.Teacher = &Teacher{a: a}
	a.Student = &Student{a: a}

	return a
}

// Function returns the fully qualified name of an educertify module function.
func (a *App) Function(name string) string {
	return a.module + "::educertify::" + name
}

// Address returns the connected wallet address, and false if no wallet is connected.
func (a *App) Address() (string, bool) {
	return a.s.Address()
}

// Links returns the explorer links of the App network.
func (a *App) Links() explorer.Links {
	return a.links
}

// Feed returns the notifications shown so far.
func (a *App) Feed() *notify.Feed {
	return a.feed
}

// Connect connects the wallet through the bridge. The outcome is always shown as a notification; on error the session
// keeps its previous state.
func (a *App) Connect(ctx context.Context) (string, error) {
	addr, err := a.s.Connect(ctx, a.b)
	switch {
	case errors.Is(err, bridge.ErrNotFound):
		a.n.Error(MsgWalletNotFound)

		return "", err
	case err != nil:
		log.Printf("Error connecting wallet:%v", err)
		a.n.Error(MsgConnectFailed)

		return "", err
	}

	log.Printf("Wallet %s connected", addr)
	a.n.Success(MsgConnected)

	return addr, nil
}

// Celebrating returns true after a certificate has been issued until EndCelebration is called.
func (a *App) Celebrating() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.celebrate
}

// EndCelebration clears the celebration flag.
func (a *App) EndCelebration() {
	a.mu.Lock()
	a.celebrate = false
	a.mu.Unlock()
}

func (a *App) raiseCelebration() {
	a.mu.Lock()
	a.celebrate = true
	a.mu.Unlock()
}

// execute runs an action calling entry function name with args. It returns the transaction hash on success. The
// returned error is txn.ErrWalletNotConnected without a wallet, or wraps ErrActionFailed.
func (a *App) execute(ctx context.Context, name string, args []string, msgs notify.Messages) (string, error) {
	fn := a.Function(name)

	addr, ok := a.s.Address()
	if !ok {
		a.n.Error(MsgConnectFirst)
	}

	end := a.m.Begin()
	op := a.ex.Submit(ctx, types.NewPayload(fn, args...))
	hash, ok := a.n.Execute(op, msgs)
	end()

	a.m.Action(fn, ok)

	if !ok {
		err := op.Wait().Err
		a.record(addr, fn, "", false, msgs.Error)

		if errors.Is(err, txn.ErrWalletNotConnected) {
			return "", err
		}

		return "", fmt.Errorf("%w: %v", ErrActionFailed, err)
	}

	a.record(addr, fn, hash, true, msgs.Success)
	a.track(hash)

	return hash, nil
}

// record saves the outcome of an action of wallet addr to the activity log, if any.
func (a *App) record(addr, fn, hash string, ok bool, message string) {
	if a.rec == nil || addr == "" {
		return
	}

	if _, err := a.rec.AddAction(store.Action{
		Address:  addr,
		Function: fn,
		Hash:     hash,
		OK:       ok,
		Message:  message,
		TS:       a.now().Unix(),
	}); err != nil {
		log.Printf("Error saving action %s to DB:%v", fn, err)
	}
}

// track hands hash to the tracker, if any.
func (a *App) track(hash string) {
	if a.tr == nil {
		return
	}

	if err := a.tr.Track(hash); err != nil {
		log.Printf("[%s] Error tracking transaction %s:%v", a.net, hash, err)
	}
}

// Actions returns the activity log of address, or of every address when empty.
func (a *App) Actions(address string) ([]store.Action, error) {
	if a.rec == nil {
		return nil, ErrNoStore
	}

	return a.rec.GetActions(address)
}

// OnCommitted shows the outcome of a followed transaction.
func (a *App) OnCommitted(tx types.Trans) {
	switch tx.Status {
	case types.TrxSuccess:
		a.n.Linked(notify.Success, MsgCommitted, tx.Hash)
	case types.TrxFailed:
		a.n.Linked(notify.Error, MsgFailedOnChain+tx.VMStatus, tx.Hash)
	default:
		log.Printf("[%s] Transaction %s is still pending", a.net, tx.Hash)
	}
}

// ManageEvents starts go routines to consume the message broker queues for events sent by the explorer service for
// the App network: one for transaction events and one for errors.
func (a *App) ManageEvents(mb msg.MsgBroker) error {
	var mut *sync.Mutex = new(sync.Mutex)

	mut.Lock()

	eveCh, errCh, err := mb.GetEvents(a.net, mut)
	if err != nil {
		return err
	}

	// launch event channel reader
	go func() {
		log.Printf("[%s] Start listening to explorer event channel", a.net)

		for eve := range eveCh {
			log.Printf("[%s] Received event %+v", a.net, eve)
			a.OnCommitted(eve)
			mut.Unlock()
		}

		log.Printf("[%s] Stop listening to explorer event channel", a.net)
	}()

	// launch error channel reader
	go func() {
		log.Printf("[%s] Start listening to err channel", a.net)

		for e := range errCh {
			log.Printf("[%s] Received error %+v", a.net, e)
		}

		log.Printf("[%s] Stop listening to err channel", a.net)
	}()

	return nil
}
