package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/skip2/go-qrcode"

	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/lib/util"
	"github.com/tarancss/educertify/notify"
	"github.com/tarancss/educertify/txn"
)

// Messages of the student actions and queries.
const (
	MsgConnectYourWallet = "Please connect your wallet first."
	MsgFetching          = "Fetching certificates..."
	MsgFetchFailed       = "Error: Could not fetch certificates. Account may not be initialized."
	MsgLoaded            = "Certificates loaded."
)

var initStoreMsgs = notify.Messages{
	Loading: "Initializing store...",
	Success: "Certificate store initialized!",
	Error:   "Failed to initialize store.",
}

// Share targets.
const (
	Twitter  = "twitter"
	LinkedIn = "linkedin"
)

// QRSize is the side in pixels of verification QR codes.
const QRSize = 256

// CertificateView is a certificate as shown on the dashboard, with the explorer page that verifies it.
type CertificateView struct {
	types.Certificate
	VerifyURL string `json:"verifyUrl"`
}

// StudentState is the state of the student dashboard.
type StudentState struct {
	Connected    bool              `json:"connected"`
	Address      string            `json:"address,omitempty"`
	Processing   bool              `json:"processing"`
	Certificates []CertificateView `json:"certificates"`
	AccountURL   string            `json:"accountUrl,omitempty"`
}

// Student is the dashboard of certificate holders. It keeps the last certificates fetched from the chain.
type Student struct {
	a *App

	mu    sync.Mutex
	busy  bool
	certs []types.Certificate
}

// State returns the current state of the dashboard.
func (s *Student) State() StudentState {
	addr, ok := s.a.Address()

	st := StudentState{
		Connected:    ok,
		Address:      addr,
		Certificates: s.Views(s.Certificates()),
	}
	if ok {
		st.AccountURL = s.a.links.Account(addr)
	}

	s.mu.Lock()
	st.Processing = s.busy
	s.mu.Unlock()

	return st
}

func (s *Student) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}
	s.busy = true

	return nil
}

func (s *Student) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// InitializeStore creates the certificate store of the connected account.
func (s *Student) InitializeStore(ctx context.Context) (string, error) {
	if err := s.begin(); err != nil {
		return "", err
	}
	defer s.end()

	return s.a.execute(ctx, FnInitializeStore, nil, initStoreMsgs)
}

// ViewCertificates fetches the certificates of the connected account. On success the list is replaced with the
// first returned value, empty if there is none; on failure the list is left as it was.
func (s *Student) ViewCertificates(ctx context.Context) ([]types.Certificate, error) {
	addr, ok := s.a.Address()
	if !ok {
		s.a.n.Error(MsgConnectYourWallet)

		return nil, txn.ErrWalletNotConnected
	}

	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	id := s.a.n.Loading(MsgFetching)

	certs, err := s.fetch(ctx, addr)
	s.a.m.View(err == nil)

	if err != nil {
		log.Printf("[%s] Error fetching certificates of %s:%v", s.a.net, addr, err)
		s.a.n.Fail(id, MsgFetchFailed)

		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	s.mu.Lock()
	s.certs = certs
	s.mu.Unlock()

	s.a.n.Succeed(id, MsgLoaded)

	return certs, nil
}

// fetch calls the get_certificates view function for addr.
func (s *Student) fetch(ctx context.Context, addr string) ([]types.Certificate, error) {
	if s.a.c == nil {
		return nil, ErrNoChain
	}

	ret, err := s.a.c.View(ctx, types.NewPayload(s.a.Function(FnGetCertificates), addr))
	if err != nil {
		return nil, err
	}

	certs := []types.Certificate{}
	if len(ret) == 0 {
		return certs, nil
	}

	if err = json.Unmarshal(ret[0], &certs); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecode, err)
	}
	if certs == nil {
		certs = []types.Certificate{}
	}

	return certs, nil
}

// Certificates returns a copy of the last certificates fetched.
func (s *Student) Certificates() []types.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.Certificate{}, s.certs...)
}

// Certificate returns the certificate with the given id among the last fetched.
func (s *Student) Certificate(id string) (types.Certificate, error) {
	for _, c := range s.Certificates() {
		if c.ID == id {
			return c, nil
		}
	}

	return types.Certificate{}, ErrNoCertificate
}

// View returns c with its verification url, the explorer page of the student account.
func (s *Student) View(c types.Certificate) CertificateView {
	return CertificateView{Certificate: c, VerifyURL: s.a.links.Account(c.StudentAddress)}
}

// Views returns the views of certs.
func (s *Student) Views(certs []types.Certificate) []CertificateView {
	ret := make([]CertificateView, 0, len(certs))
	for _, c := range certs {
		ret = append(ret, s.View(c))
	}

	return ret
}

// QRCode returns a PNG QR code of size pixels encoding the verification url of the certificate with the given id.
func (s *Student) QRCode(id string, size int) ([]byte, error) {
	c, err := s.Certificate(id)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(s.View(c).VerifyURL, qrcode.Medium, size)
}

// ShareLink returns the link to share the connected account on target. Sharing on Twitter requires at least one
// fetched certificate.
func (s *Student) ShareLink(target string) (string, error) {
	addr, ok := s.a.Address()
	if !ok {
		return "", txn.ErrWalletNotConnected
	}

	account := s.a.links.Account(addr)

	switch target {
	case Twitter:
		n := len(s.Certificates())
		if n == 0 {
			return "", ErrNoCertificates
		}

		text := "I just updated my Skills Passport on EduCertify with " + strconv.Itoa(n) +
			" verifiable credential" + util.Plural(n) + " on @Aptos!"

		return "https://twitter.com/intent/tweet?text=" + escape(text) +
			"&url=" + escape(account) + "&hashtags=EduCertify,Aptos", nil
	case LinkedIn:
		return "https://www.linkedin.com/sharing/share-offsite/?url=" + escape(account), nil
	}

	return "", ErrBadTarget
}

// escape escapes s for a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
