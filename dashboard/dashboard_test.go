package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarancss/educertify/bridge"
	"github.com/tarancss/educertify/explorer"
	"github.com/tarancss/educertify/lib/block/aptos"
	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/lib/metrics"
	"github.com/tarancss/educertify/lib/msg"
	"github.com/tarancss/educertify/lib/store"
	"github.com/tarancss/educertify/notify"
	"github.com/tarancss/educertify/txn"
)

const module = "0x929f4f9a78a2c787fb206567c9dcb01dad770f0f4cdc2f599b71a85547427c52"

var now = time.Unix(1700000000, 0)

// wallet is a bridge.Bridge answering with fixed values. When hold is set, submissions wait for it to be closed or
// for their context to be done.
type wallet struct {
	mu       sync.Mutex
	addr     string
	connErr  error
	hash     string
	err      error
	hold     chan struct{}
	payloads []types.Payload
}

func (w *wallet) Connect(ctx context.Context) (bridge.Account, error) {
	if w.connErr != nil {
		return bridge.Account{}, w.connErr
	}
	return bridge.Account{Address: w.addr}, nil
}

func (w *wallet) SignAndSubmitTransaction(ctx context.Context, p types.Payload) (bridge.PendingTransaction, error) {
	w.mu.Lock()
	w.payloads = append(w.payloads, p)
	hold := w.hold
	w.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return bridge.PendingTransaction{}, ctx.Err()
		}
	}
	if w.err != nil {
		return bridge.PendingTransaction{}, w.err
	}
	return bridge.PendingTransaction{Hash: w.hash}, nil
}

func (w *wallet) calls() []types.Payload {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]types.Payload{}, w.payloads...)
}

// node is a mock fullnode serving the view function and committed transactions.
type node struct {
	mu     sync.Mutex
	status int
	body   string
	views  []types.Payload
}

func (n *node) set(status int, body string) {
	n.mu.Lock()
	n.status, n.body = status, body
	n.mu.Unlock()
}

func (n *node) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/v1/view":
		var p types.Payload
		_ = json.NewDecoder(r.Body).Decode(&p)

		n.mu.Lock()
		n.views = append(n.views, p)
		status, body := n.status, n.body
		n.mu.Unlock()

		rw.WriteHeader(status)
		_, _ = io.WriteString(rw, body)
	case "/v1/transactions/by_hash/0xHASH":
		_, _ = io.WriteString(rw, `{"type":"user_transaction","hash":"0xHASH","success":true,"vm_status":"Executed successfully"}`)
	default:
		rw.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(rw, `{"message":"not found","error_code":"transaction_not_found"}`)
	}
}

// memDB is an in-memory activity log.
type memDB struct {
	mu      sync.Mutex
	actions []store.Action
}

func (m *memDB) AddAction(a store.Action) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, a)
	return []byte{byte(len(m.actions))}, nil
}

func (m *memDB) GetActions(address string) ([]store.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := []store.Action{}
	for _, a := range m.actions {
		if address == "" || a.Address == address {
			ret = append(ret, a)
		}
	}
	return ret, nil
}

// hashes records tracked transactions.
type hashes struct {
	mu sync.Mutex
	hs []string
}

func (h *hashes) Track(hash string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hs = append(h.hs, hash)
	return nil
}

func (h *hashes) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.hs...)
}

type fixture struct {
	a    *App
	w    *wallet
	node *node
	db   *memDB
	tr   *hashes
}

func newFixture(t *testing.T, b bridge.Bridge) *fixture {
	t.Helper()

	f := &fixture{node: &node{status: http.StatusOK, body: `[[]]`}, db: &memDB{}, tr: &hashes{}}
	if w, ok := b.(*wallet); ok {
		f.w = w
	}

	mock := httptest.NewServer(f.node)
	t.Cleanup(mock.Close)

	c, err := aptos.Init(mock.URL+"/v1", "")
	require.NoError(t, err)

	f.a = New(Options{
		Net:      "testnet",
		Module:   module,
		Bridge:   b,
		Chain:    c,
		Recorder: f.db,
		Tracker:  f.tr,
		Metrics:  metrics.New("edc"),
		Now:      func() time.Time { return now },
	})

	return f
}

// texts returns the texts of the notifications of kind k shown so far.
func texts(a *App, k notify.Kind) []string {
	ret := []string{}
	for _, n := range a.Feed().List() {
		if n.Kind == k {
			ret = append(ret, n.Text)
		}
	}
	return ret
}

func links(a *App) []string {
	ret := []string{}
	for _, n := range a.Feed().List() {
		if n.Kind == notify.Link {
			ret = append(ret, n.Link)
		}
	}
	return ret
}

func TestIssueScenario(t *testing.T) {
	w := &wallet{addr: "0xABC", hash: "0xHASH"}
	f := newFixture(t, w)
	ctx := context.Background()

	addr, err := f.a.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xABC", addr)
	assert.Contains(t, texts(f.a, notify.Success), MsgConnected)

	f.a.Teacher.OpenIssueForm()
	f.a.Teacher.SetIssueForm(IssueForm{
		StudentAddress: "0xSTUDENT",
		CourseName:     "Intro to Move",
		IssuerName:     "Prof. Smith",
		CertURL:        "https://img",
	})

	hash, err := f.a.Teacher.IssueCertificate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xHASH", hash)

	calls := w.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, module+"::educertify::issue_certificate", calls[0].Function)
	assert.Equal(t, []string{}, calls[0].TypeArguments)
	assert.Equal(t, []string{"0xSTUDENT", "Intro to Move", "Prof. Smith", "1700000000", "https://img"}, calls[0].Arguments)

	assert.Contains(t, texts(f.a, notify.Success), "Certificate issued!")
	assert.Equal(t, []string{"https://explorer.aptoslabs.com/txn/0xHASH?network=testnet"}, links(f.a))
	assert.Empty(t, texts(f.a, notify.Error))

	st := f.a.Teacher.State()
	assert.False(t, st.ShowIssueForm)
	assert.False(t, st.Processing)
	assert.Equal(t, IssueForm{}, st.Issue)
	assert.True(t, f.a.Celebrating())
	f.a.EndCelebration()
	assert.False(t, f.a.Celebrating())

	assert.Equal(t, []string{"0xHASH"}, f.tr.list())

	actions, err := f.a.Actions("0xABC")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	actions[0].ID = nil
	assert.Equal(t, store.Action{
		Address:  "0xABC",
		Function: module + "::educertify::issue_certificate",
		Hash:     "0xHASH",
		OK:       true,
		Message:  "Certificate issued!",
		TS:       now.Unix(),
	}, actions[0])
}

func TestIssueOutlivesRequest(t *testing.T) {
	w := &wallet{addr: "0xABC", hash: "0xHASH", hold: make(chan struct{})}
	f := newFixture(t, w)

	_, err := f.a.Connect(context.Background())
	require.NoError(t, err)

	f.a.Teacher.SetIssueForm(IssueForm{
		StudentAddress: "0xSTUDENT",
		CourseName:     "Intro to Move",
		IssuerName:     "Prof. Smith",
		CertURL:        "https://img",
	})

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		hash string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		hash, err := f.a.Teacher.IssueCertificate(ctx)
		done <- result{hash, err}
	}()

	require.Eventually(t, func() bool { return len(w.calls()) == 1 }, time.Second, 5*time.Millisecond)
	// the client goes away while the wallet user approves
	cancel()
	close(w.hold)

	var res result
	select {
	case res = <-done:
	case <-time.After(time.Second):
		t.Fatal("issue did not finish")
	}
	require.NoError(t, res.err)
	assert.Equal(t, "0xHASH", res.hash)
	assert.Contains(t, texts(f.a, notify.Success), "Certificate issued!")
	assert.Empty(t, texts(f.a, notify.Error))
	assert.Equal(t, []string{"0xHASH"}, f.tr.list())
}

func TestMissingFields(t *testing.T) {
	w := &wallet{addr: "0xABC", hash: "0xHASH"}
	f := newFixture(t, w)
	ctx := context.Background()

	_, err := f.a.Connect(ctx)
	require.NoError(t, err)

	for _, form := range []IssueForm{
		{},
		{StudentAddress: "0xSTUDENT", CourseName: "Intro to Move", IssuerName: "Prof. Smith"},
		{StudentAddress: "0xSTUDENT", IssuerName: "Prof. Smith", CertURL: "https://img"},
	} {
		f.a.Teacher.SetIssueForm(form)
		_, err = f.a.Teacher.IssueCertificate(ctx)
		assert.ErrorIs(t, err, ErrMissingFields)
		assert.Equal(t, form, f.a.Teacher.State().Issue, "the draft is kept")
	}

	for _, form := range []RevokeForm{{StudentAddress: "0xSTUDENT"}, {CertID: "1"}} {
		f.a.Teacher.SetRevokeForm(form)
		_, err = f.a.Teacher.RevokeCertificate(ctx)
		assert.ErrorIs(t, err, ErrMissingFields)
	}

	assert.Empty(t, w.calls())
	assert.Len(t, texts(f.a, notify.Error), 5)
	for _, text := range texts(f.a, notify.Error) {
		assert.Equal(t, MsgFillAllFields, text)
	}
	assert.Empty(t, texts(f.a, notify.Loading))
	assert.False(t, f.a.Celebrating())
}

func TestActionFailure(t *testing.T) {
	w := &wallet{addr: "0xABC", err: errors.New("user rejected the request")}
	f := newFixture(t, w)
	ctx := context.Background()

	_, err := f.a.Connect(ctx)
	require.NoError(t, err)

	f.a.Teacher.OpenIssueForm()
	f.a.Teacher.SetIssueForm(IssueForm{"0xSTUDENT", "Intro to Move", "Prof. Smith", "https://img"})

	hash, err := f.a.Teacher.IssueCertificate(ctx)
	assert.Empty(t, hash)
	assert.ErrorIs(t, err, ErrActionFailed)
	assert.Equal(t, http.StatusBadGateway, status(err))

	assert.Equal(t, []string{"Failed to issue certificate."}, texts(f.a, notify.Error))
	assert.NotContains(t, texts(f.a, notify.Success), "Certificate issued!")
	assert.Empty(t, links(f.a))

	st := f.a.Teacher.State()
	assert.True(t, st.ShowIssueForm, "the form stays open on failure")
	assert.Equal(t, IssueForm{}, st.Issue, "the draft is reset on failure")
	assert.False(t, f.a.Celebrating())
	assert.Empty(t, f.tr.list())

	actions, _ := f.a.Actions("")
	require.Len(t, actions, 1)
	assert.False(t, actions[0].OK)
}

func TestRevoke(t *testing.T) {
	w := &wallet{addr: "0xABC", hash: "0xREVOKE"}
	f := newFixture(t, w)
	ctx := context.Background()

	_, err := f.a.Connect(ctx)
	require.NoError(t, err)

	f.a.Teacher.OpenRevokeForm()
	f.a.Teacher.SetRevokeForm(RevokeForm{StudentAddress: "0xSTUDENT", CertID: "3"})

	hash, err := f.a.Teacher.RevokeCertificate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xREVOKE", hash)

	calls := w.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, module+"::educertify::revoke_certificate", calls[0].Function)
	assert.Equal(t, []string{"0xSTUDENT", "3"}, calls[0].Arguments)
	assert.Contains(t, texts(f.a, notify.Success), "Certificate revoked!")

	st := f.a.Teacher.State()
	assert.False(t, st.ShowRevokeForm)
	assert.Equal(t, RevokeForm{}, st.Revoke)
	assert.False(t, f.a.Celebrating(), "only issuing celebrates")
}

func TestInitialize(t *testing.T) {
	w := &wallet{addr: "0xABC", hash: "0xINIT"}
	f := newFixture(t, w)
	ctx := context.Background()

	_, err := f.a.Connect(ctx)
	require.NoError(t, err)

	_, err = f.a.Teacher.InitializeIssuer(ctx)
	require.NoError(t, err)
	_, err = f.a.Student.InitializeStore(ctx)
	require.NoError(t, err)

	calls := w.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, module+"::educertify::initialize_issuer", calls[0].Function)
	assert.Equal(t, module+"::educertify::initialize_certificate_store", calls[1].Function)
	assert.Equal(t, []string{}, calls[0].Arguments)
	assert.Equal(t, []string{}, calls[1].Arguments)

	assert.Contains(t, texts(f.a, notify.Success), "Issuer account initialized!")
	assert.Contains(t, texts(f.a, notify.Success), "Certificate store initialized!")
	assert.Len(t, links(f.a), 2)
}

func TestNotConnected(t *testing.T) {
	w := &wallet{addr: "0xABC", hash: "0xHASH"}
	f := newFixture(t, w)
	ctx := context.Background()

	_, err := f.a.Teacher.InitializeIssuer(ctx)
	assert.ErrorIs(t, err, txn.ErrWalletNotConnected)
	assert.Equal(t, http.StatusPreconditionFailed, status(err))
	assert.Equal(t, []string{MsgConnectFirst, "Failed to initialize."}, texts(f.a, notify.Error))

	_, err = f.a.Student.ViewCertificates(ctx)
	assert.ErrorIs(t, err, txn.ErrWalletNotConnected)
	assert.Contains(t, texts(f.a, notify.Error), MsgConnectYourWallet)

	_, err = f.a.Student.ShareLink(LinkedIn)
	assert.ErrorIs(t, err, txn.ErrWalletNotConnected)

	assert.Empty(t, w.calls())
	assert.Empty(t, f.node.views)
}

func TestConnectBridgeAbsent(t *testing.T) {
	f := newFixture(t, nil)

	addr, err := f.a.Connect(context.Background())
	assert.Empty(t, addr)
	assert.ErrorIs(t, err, bridge.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, status(err))
	assert.Equal(t, []string{MsgWalletNotFound}, texts(f.a, notify.Error))

	_, ok := f.a.Address()
	assert.False(t, ok)
}

func TestConnectRejected(t *testing.T) {
	w := &wallet{addr: "0xABC", connErr: bridge.ErrRejected}
	f := newFixture(t, w)

	_, err := f.a.Connect(context.Background())
	assert.ErrorIs(t, err, bridge.ErrRejected)
	assert.Equal(t, []string{MsgConnectFailed}, texts(f.a, notify.Error))

	_, ok := f.a.Address()
	assert.False(t, ok)
}

func TestBusy(t *testing.T) {
	w := &wallet{addr: "0xABC", hash: "0xINIT", hold: make(chan struct{})}
	f := newFixture(t, w)
	ctx := context.Background()

	_, err := f.a.Connect(ctx)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		_, err := f.a.Teacher.InitializeIssuer(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return f.a.Teacher.State().Processing }, time.Second, 5*time.Millisecond)

	_, err = f.a.Teacher.IssueCertificate(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, http.StatusConflict, status(err))

	close(w.hold)
	require.NoError(t, <-done)
	assert.False(t, f.a.Teacher.State().Processing)
	assert.Len(t, w.calls(), 1)
}

const certs = `[[` +
	`{"id":"1","student_address":"0xABC","course_name":"Intro to Move","issuer_name":"Prof. Smith",` +
	`"issuance_date":"1700000000","certificate_url":"https://img","is_revoked":false},` +
	`{"id":"2","student_address":"0xABC","course_name":"Advanced Move","issuer_name":"Prof. Smith",` +
	`"issuance_date":"1700000100","certificate_url":"https://img2","is_revoked":true}` +
	`]]`

func TestViewCertificates(t *testing.T) {
	w := &wallet{addr: "0xABC"}
	f := newFixture(t, w)
	ctx := context.Background()

	_, err := f.a.Connect(ctx)
	require.NoError(t, err)

	// 200 replaces the list with the first value
	f.node.set(http.StatusOK, certs)
	got, err := f.a.Student.ViewCertificates(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Intro to Move", got[0].CourseName)
	assert.True(t, got[1].IsRevoked)
	assert.Equal(t, got, f.a.Student.Certificates())
	assert.Contains(t, texts(f.a, notify.Success), MsgLoaded)

	require.Len(t, f.node.views, 1)
	assert.Equal(t, module+"::educertify::get_certificates", f.node.views[0].Function)
	assert.Equal(t, []string{"0xABC"}, f.node.views[0].Arguments)

	// 4xx and 5xx leave the list untouched
	for _, code := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		f.node.set(code, `{"message":"resource not found","error_code":"resource_not_found"}`)
		_, err = f.a.Student.ViewCertificates(ctx)
		assert.ErrorIs(t, err, ErrQueryFailed)
		assert.Equal(t, http.StatusBadGateway, status(err))
		assert.Equal(t, got, f.a.Student.Certificates())
	}
	assert.Equal(t, []string{MsgFetchFailed, MsgFetchFailed}, texts(f.a, notify.Error))

	// detail lookup
	c, err := f.a.Student.Certificate("2")
	require.NoError(t, err)
	assert.Equal(t, "Advanced Move", c.CourseName)
	_, err = f.a.Student.Certificate("9")
	assert.ErrorIs(t, err, ErrNoCertificate)

	// every certificate verifies on the explorer page of its student
	views := f.a.Student.State().Certificates
	require.Len(t, views, 2)
	for i, v := range views {
		assert.Equal(t, got[i], v.Certificate)
		assert.Equal(t, "https://explorer.aptoslabs.com/account/0xABC?network=testnet", v.VerifyURL)
	}

	png, err := f.a.Student.QRCode("1", QRSize)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
	_, err = f.a.Student.QRCode("9", QRSize)
	assert.ErrorIs(t, err, ErrNoCertificate)

	// no value replaces the list with an empty one
	f.node.set(http.StatusOK, `[]`)
	got, err = f.a.Student.ViewCertificates(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, f.a.Student.Certificates())

	// loading notifications are all replaced
	for _, n := range f.a.Feed().List() {
		assert.NotEqual(t, notify.Loading, n.Kind)
	}
}

func TestShareLinks(t *testing.T) {
	w := &wallet{addr: "0xABC"}
	f := newFixture(t, w)
	ctx := context.Background()

	_, err := f.a.Connect(ctx)
	require.NoError(t, err)

	_, err = f.a.Student.ShareLink(Twitter)
	assert.ErrorIs(t, err, ErrNoCertificates)

	account := "https%3A%2F%2Fexplorer.aptoslabs.com%2Faccount%2F0xABC%3Fnetwork%3Dtestnet"

	link, err := f.a.Student.ShareLink(LinkedIn)
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/sharing/share-offsite/?url="+account, link)

	f.node.set(http.StatusOK, certs)
	_, err = f.a.Student.ViewCertificates(ctx)
	require.NoError(t, err)

	link, err = f.a.Student.ShareLink(Twitter)
	require.NoError(t, err)
	assert.Equal(t, "https://twitter.com/intent/tweet?text="+
		"I%20just%20updated%20my%20Skills%20Passport%20on%20EduCertify%20with%202%20verifiable%20credentials%20on%20%40Aptos%21"+
		"&url="+account+"&hashtags=EduCertify,Aptos", link)

	_, err = f.a.Student.ShareLink("facebook")
	assert.ErrorIs(t, err, ErrBadTarget)

	st := f.a.Student.State()
	assert.Equal(t, "https://explorer.aptoslabs.com/account/0xABC?network=testnet", st.AccountURL)
}

func TestOnCommitted(t *testing.T) {
	f := newFixture(t, nil)

	f.a.OnCommitted(types.Trans{Hash: "0x1", Status: types.TrxSuccess})
	f.a.OnCommitted(types.Trans{Hash: "0x2", Status: types.TrxFailed, VMStatus: "Move abort"})
	f.a.OnCommitted(types.Trans{Hash: "0x3", Status: types.TrxPending})

	list := f.a.Feed().List()
	require.Len(t, list, 2)
	assert.Equal(t, notify.Success, list[0].Kind)
	assert.Equal(t, MsgCommitted, list[0].Text)
	assert.Equal(t, "https://explorer.aptoslabs.com/txn/0x1?network=testnet", list[0].Link)
	assert.Equal(t, notify.Error, list[1].Kind)
	assert.Equal(t, MsgFailedOnChain+"Move abort", list[1].Text)
}

// TestWatcher follows an issued certificate with an in-process watcher until it is committed.
func TestWatcher(t *testing.T) {
	w := &wallet{addr: "0xABC", hash: "0xHASH"}
	f := newFixture(t, w)
	ctx := context.Background()

	var a *App
	wt, err := explorer.NewWatcher("testnet", f.a.c, func(tx types.Trans) { a.OnCommitted(tx) })
	require.NoError(t, err)
	wt.Interval = 10 * time.Millisecond
	a = New(Options{Net: "testnet", Module: module, Bridge: w, Chain: f.a.c, Tracker: wt})

	go wt.Run()
	defer wt.Stop()

	_, err = a.Connect(ctx)
	require.NoError(t, err)
	_, err = a.Teacher.InitializeIssuer(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, text := range texts(a, notify.Success) {
			if text == MsgCommitted {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

// events is a msg.MsgBroker delivering fixed transaction events and recording watch requests.
type events struct {
	mu   sync.Mutex
	txs  []types.Trans
	reqs []msg.WatchReq
}

func (e *events) Setup(interface{}) error                    { return nil }
func (e *events) Close() error                               { return nil }
func (e *events) SendNotification(notify.Notification) error { return nil }

func (e *events) SendRequest(net string, r msg.WatchReq) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reqs = append(e.reqs, r)
	return nil
}

func (e *events) GetEvents(net string, mut *sync.Mutex) (<-chan types.Trans, <-chan error, error) {
	eves := make(chan types.Trans)
	errs := make(chan error)
	go func() {
		defer close(eves)
		defer close(errs)
		for _, tx := range e.txs {
			eves <- tx
			mut.Lock()
		}
	}()
	return eves, errs, nil
}

func (e *events) GetReqs(net string, mut *sync.Mutex) (<-chan msg.WatchReq, <-chan error, error) {
	return nil, nil, nil
}

func (e *events) SendTrans(net string, t []types.Trans) error { return nil }

func TestBrokerEvents(t *testing.T) {
	mb := &events{txs: []types.Trans{
		{Hash: "0x1", Status: types.TrxSuccess},
		{Hash: "0x2", Status: types.TrxFailed, VMStatus: "Out of gas"},
	}}
	w := &wallet{addr: "0xABC", hash: "0xHASH"}
	f := newFixture(t, w)
	a := New(Options{Net: "testnet", Module: module, Bridge: w, Chain: f.a.c, Tracker: BrokerTracker{Net: "testnet", MB: mb}})

	require.NoError(t, a.ManageEvents(mb))
	require.Eventually(t, func() bool { return len(a.Feed().List()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{MsgCommitted}, texts(a, notify.Success))
	assert.Equal(t, []string{MsgFailedOnChain + "Out of gas"}, texts(a, notify.Error))

	_, err := a.Connect(context.Background())
	require.NoError(t, err)
	_, err = a.Teacher.InitializeIssuer(context.Background())
	require.NoError(t, err)

	mb.mu.Lock()
	defer mb.mu.Unlock()
	assert.Equal(t, []msg.WatchReq{{Net: "testnet", Hash: "0xHASH", Act: msg.WATCH}}, mb.reqs)
}
