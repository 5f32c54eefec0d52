package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tarancss/educertify/bridge"
	"github.com/tarancss/educertify/txn"
)

// Errors returned to client requests.
var (
	ErrActionFailed   = errors.New("action failed")
	ErrBadrequest     = errors.New("bad request")
	ErrBadTarget      = errors.New("unknown share target: use twitter or linkedin")
	ErrBusy           = errors.New("another action is being processed")
	ErrMissingFields  = errors.New("please fill in all fields")
	ErrNoCertificate  = errors.New("certificate not found")
	ErrNoCertificates = errors.New("no certificates to share")
	ErrNoChain        = errors.New("network not available")
	ErrNoStore        = errors.New("no activity log configured")
	ErrQueryFailed    = errors.New("could not fetch certificates")
)

// Response defines the data structure returned to the client making the http request.
type Response struct {
	Body  string `json:"body"`
	Error string `json:"error,omitempty"`
}

// SessionState is the reply to session requests.
type SessionState struct {
	Connected   bool   `json:"connected"`
	Address     string `json:"address,omitempty"`
	Network     string `json:"network"`
	AccountURL  string `json:"accountUrl,omitempty"`
	Celebrating bool   `json:"celebrating"`
}

// status returns the http status code for err.
func status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrBadrequest), errors.Is(err, ErrBadTarget),
		errors.Is(err, ErrNoCertificates):
		return http.StatusBadRequest
	case errors.Is(err, txn.ErrWalletNotConnected):
		return http.StatusPreconditionFailed
	case errors.Is(err, bridge.ErrNotFound), errors.Is(err, ErrNoCertificate):
		return http.StatusNotFound
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrActionFailed), errors.Is(err, ErrQueryFailed), errors.Is(err, bridge.ErrRejected):
		return http.StatusBadGateway
	case errors.Is(err, ErrNoStore):
		return http.StatusNotImplemented
	}

	return http.StatusInternalServerError
}

// reply writes the response envelope for body or err and logs the request.
func reply(rw http.ResponseWriter, r *http.Request, body interface{}, err error) {
	var res Response

	if err != nil {
		res.Error = fmt.Sprintf("%s", err)
	} else if s, ok := body.(string); ok {
		res.Body = s
	} else {
		tmp, _ := json.Marshal(body)
		res.Body = string(tmp)
	}
	// log request
	log.Printf("httpreq from %v %s %s res:%+v err:%v\n", r.RemoteAddr, r.Method, r.RequestURI, body, err)
	// reply
	rw.Header().Set("Content-Type", "application/json;charset=utf8")
	rw.WriteHeader(status(err))
	_ = json.NewEncoder(rw).Encode(&res)
}

// decode reads an optional JSON body into v. It returns false if the request has no body.
func decode(r *http.Request, v interface{}) (bool, error) {
	if r.Body == nil {
		return false, nil
	}

	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadrequest, err)
	}

	return true, nil
}

// homeHandler just replies a welcome message to the client.
func (a *App) homeHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, "Welcome to EduCertify!", nil)
}

// sessionHandler replies the wallet session state.
func (a *App) sessionHandler(rw http.ResponseWriter, r *http.Request) {
	addr, ok := a.Address()
	st := SessionState{Connected: ok, Address: addr, Network: a.links.Network, Celebrating: a.Celebrating()}
	if ok {
		st.AccountURL = a.links.Account(addr)
	}

	reply(rw, r, st, nil)
}

// connectHandler connects the wallet and replies its address.
func (a *App) connectHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var addr string

	defer func() { reply(rw, r, addr, err) }()

	addr, err = a.Connect(r.Context())
}

// celebrationHandler clears the celebration flag.
func (a *App) celebrationHandler(rw http.ResponseWriter, r *http.Request) {
	a.EndCelebration()
	reply(rw, r, "", nil)
}

// notificationsHandler replies the active notifications, or all of them with ?all=1.
func (a *App) notificationsHandler(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "1" {
		reply(rw, r, a.feed.List(), nil)

		return
	}

	reply(rw, r, a.feed.Active(a.now()), nil)
}

// teacherHandler replies the teacher dashboard state.
func (a *App) teacherHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, a.Teacher.State(), nil)
}

// issuerHandler initializes the issuer account and replies the transaction hash.
func (a *App) issuerHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var hash string

	defer func() { reply(rw, r, hash, err) }()

	hash, err = a.Teacher.InitializeIssuer(r.Context())
}

// issueFormHandler opens (POST) or closes (DELETE) the issue form. A POST body replaces the draft.
func (a *App) issueFormHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	defer func() { reply(rw, r, a.Teacher.State(), err) }()

	if r.Method == http.MethodDelete {
		a.Teacher.CloseIssueForm()

		return
	}

	var f IssueForm

	var ok bool

	if ok, err = decode(r, &f); err != nil {
		return
	}
	if ok {
		a.Teacher.SetIssueForm(f)
	}

	a.Teacher.OpenIssueForm()
}

// issueHandler issues a certificate and replies the transaction hash. A body replaces the draft before issuing.
func (a *App) issueHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var hash string

	defer func() { reply(rw, r, hash, err) }()

	var f IssueForm

	var ok bool

	if ok, err = decode(r, &f); err != nil {
		return
	}
	if ok {
		a.Teacher.SetIssueForm(f)
	}

	hash, err = a.Teacher.IssueCertificate(r.Context())
}

// revokeFormHandler opens (POST) or closes (DELETE) the revoke form. A POST body replaces the draft.
func (a *App) revokeFormHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	defer func() { reply(rw, r, a.Teacher.State(), err) }()

	if r.Method == http.MethodDelete {
		a.Teacher.CloseRevokeForm()

		return
	}

	var f RevokeForm

	var ok bool

	if ok, err = decode(r, &f); err != nil {
		return
	}
	if ok {
		a.Teacher.SetRevokeForm(f)
	}

	a.Teacher.OpenRevokeForm()
}

// revokeHandler revokes a certificate and replies the transaction hash. A body replaces the draft before revoking.
func (a *App) revokeHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var hash string

	defer func() { reply(rw, r, hash, err) }()

	var f RevokeForm

	var ok bool

	if ok, err = decode(r, &f); err != nil {
		return
	}
	if ok {
		a.Teacher.SetRevokeForm(f)
	}

	hash, err = a.Teacher.RevokeCertificate(r.Context())
}

// studentHandler replies the student dashboard state.
func (a *App) studentHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, a.Student.State(), nil)
}

// storeHandler initializes the certificate store and replies the transaction hash.
func (a *App) storeHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var hash string

	defer func() { reply(rw, r, hash, err) }()

	hash, err = a.Student.InitializeStore(r.Context())
}

// fetchHandler fetches the certificates from the chain and replies them.
func (a *App) fetchHandler(rw http.ResponseWriter, r *http.Request) {
	certs, err := a.Student.ViewCertificates(r.Context())
	if err != nil {
		reply(rw, r, nil, err)

		return
	}

	reply(rw, r, a.Student.Views(certs), nil)
}

// certificatesHandler replies the last certificates fetched.
func (a *App) certificatesHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, a.Student.Views(a.Student.Certificates()), nil)
}

// certificateHandler replies the details of a fetched certificate.
func (a *App) certificateHandler(rw http.ResponseWriter, r *http.Request) {
	c, err := a.Student.Certificate(mux.Vars(r)["id"])
	if err != nil {
		reply(rw, r, nil, err)

		return
	}

	reply(rw, r, a.Student.View(c), nil)
}

// qrHandler replies the verification QR code of a fetched certificate as a PNG image. Errors are replied in the
// response envelope.
func (a *App) qrHandler(rw http.ResponseWriter, r *http.Request) {
	png, err := a.Student.QRCode(mux.Vars(r)["id"], QRSize)
	if err != nil {
		reply(rw, r, nil, err)

		return
	}

	log.Printf("httpreq from %v %s %s res:%d bytes\n", r.RemoteAddr, r.Method, r.RequestURI, len(png))
	rw.Header().Set("Content-Type", "image/png")
	_, _ = rw.Write(png)
}

// shareHandler replies the share link for the target in the uri.
func (a *App) shareHandler(rw http.ResponseWriter, r *http.Request) {
	link, err := a.Student.ShareLink(mux.Vars(r)["target"])
	reply(rw, r, link, err)
}

// actionsHandler replies the activity log, of the address in the query if any.
func (a *App) actionsHandler(rw http.ResponseWriter, r *http.Request) {
	actions, err := a.Actions(r.URL.Query().Get("address"))
	reply(rw, r, actions, err)
}
