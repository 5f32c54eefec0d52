// Package client implements a client of the educertify RESTful API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/tarancss/educertify/dashboard"
	"github.com/tarancss/educertify/lib/store"
	"github.com/tarancss/educertify/notify"
)

// ErrServer is returned for failed requests without an error message.
var ErrServer = errors.New("educertify server error")

// Error is a request refused by the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Client calls an educertify server.
type Client struct {
	c *resty.Client
}

// New returns a client of the server at url. Actions wait for the wallet user, use the context to bound them.
func New(url string) *Client {
	return &Client{
		c: resty.New().
			SetBaseURL(strings.TrimSuffix(url, "/")).
			SetHeader("Content-Type", "application/json"),
	}
}

// do sends a request and decodes the body of the response envelope into out. A *string out receives the body as is.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var res dashboard.Response

	req := c.c.R().SetContext(ctx).ForceContentType("application/json").SetResult(&res).SetError(&res)
	if body != nil {
		req.SetBody(body)
	}

	r, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("cannot reach educertify server: %w", err)
	}
	if r.IsError() {
		if res.Error == "" {
			return fmt.Errorf("%w: status %d", ErrServer, r.StatusCode())
		}
		return &Error{Status: r.StatusCode(), Message: res.Error}
	}

	switch o := out.(type) {
	case nil:
		return nil
	case *string:
		*o = res.Body
		return nil
	}

	return json.Unmarshal([]byte(res.Body), out)
}

// Session returns the wallet session state.
func (c *Client) Session(ctx context.Context) (st dashboard.SessionState, err error) {
	err = c.do(ctx, http.MethodGet, "/session", nil, &st)
	return
}

// Connect connects the wallet and returns its address.
func (c *Client) Connect(ctx context.Context) (addr string, err error) {
	err = c.do(ctx, http.MethodPost, "/connect", nil, &addr)
	return
}

// EndCelebration clears the celebration flag.
func (c *Client) EndCelebration(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/celebration", nil, nil)
}

// Teacher returns the teacher dashboard state.
func (c *Client) Teacher(ctx context.Context) (st dashboard.TeacherState, err error) {
	err = c.do(ctx, http.MethodGet, "/teacher", nil, &st)
	return
}

// InitializeIssuer initializes the issuer account and returns the transaction hash.
func (c *Client) InitializeIssuer(ctx context.Context) (hash string, err error) {
	err = c.do(ctx, http.MethodPost, "/teacher/issuer", nil, &hash)
	return
}

// Issue issues the certificate of form f and returns the transaction hash.
func (c *Client) Issue(ctx context.Context, f dashboard.IssueForm) (hash string, err error) {
	err = c.do(ctx, http.MethodPost, "/teacher/certificates", f, &hash)
	return
}

// Revoke revokes the certificate of form f and returns the transaction hash.
func (c *Client) Revoke(ctx context.Context, f dashboard.RevokeForm) (hash string, err error) {
	err = c.do(ctx, http.MethodPost, "/teacher/revocations", f, &hash)
	return
}

// Student returns the student dashboard state.
func (c *Client) Student(ctx context.Context) (st dashboard.StudentState, err error) {
	err = c.do(ctx, http.MethodGet, "/student", nil, &st)
	return
}

// InitializeStore initializes the certificate store and returns the transaction hash.
func (c *Client) InitializeStore(ctx context.Context) (hash string, err error) {
	err = c.do(ctx, http.MethodPost, "/student/store", nil, &hash)
	return
}

// FetchCertificates fetches the certificates of the connected wallet from the chain.
func (c *Client) FetchCertificates(ctx context.Context) (certs []dashboard.CertificateView, err error) {
	err = c.do(ctx, http.MethodPost, "/student/certificates/fetch", nil, &certs)
	return
}

// Certificates returns the certificates last fetched.
func (c *Client) Certificates(ctx context.Context) (certs []dashboard.CertificateView, err error) {
	err = c.do(ctx, http.MethodGet, "/student/certificates", nil, &certs)
	return
}

// Certificate returns a certificate last fetched by id.
func (c *Client) Certificate(ctx context.Context, id string) (cert dashboard.CertificateView, err error) {
	err = c.do(ctx, http.MethodGet, "/student/certificates/"+id, nil, &cert)
	return
}

// QRCode returns the PNG verification QR code of a certificate last fetched.
func (c *Client) QRCode(ctx context.Context, id string) ([]byte, error) {
	r, err := c.c.R().SetContext(ctx).Get("/student/certificates/" + id + "/qr")
	if err != nil {
		return nil, fmt.Errorf("cannot reach educertify server: %w", err)
	}
	if r.IsError() {
		var res dashboard.Response
		if json.Unmarshal(r.Body(), &res) != nil || res.Error == "" {
			return nil, fmt.Errorf("%w: status %d", ErrServer, r.StatusCode())
		}
		return nil, &Error{Status: r.StatusCode(), Message: res.Error}
	}

	return r.Body(), nil
}

// Share returns the share link for target.
func (c *Client) Share(ctx context.Context, target string) (link string, err error) {
	err = c.do(ctx, http.MethodGet, "/student/share/"+target, nil, &link)
	return
}

// Notifications returns the active notifications, or all of them.
func (c *Client) Notifications(ctx context.Context, all bool) (ns []notify.Notification, err error) {
	path := "/notifications"
	if all {
		path += "?all=1"
	}
	err = c.do(ctx, http.MethodGet, path, nil, &ns)
	return
}

// Actions returns the activity log of address, or of every address when empty.
func (c *Client) Actions(ctx context.Context, address string) (actions []store.Action, err error) {
	req := "/actions"
	if address != "" {
		req += "?address=" + address
	}
	err = c.do(ctx, http.MethodGet, req, nil, &actions)
	return
}
