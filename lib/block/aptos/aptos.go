// Package aptos implements the chain interface for Aptos fullnode REST APIs.
package aptos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/tarancss/educertify/lib/block/types"
)

// Aptos implements a connection to an Aptos fullnode.
type Aptos struct {
	c *resty.Client
}

// nodeError is the body returned by the node on non-2xx responses.
type nodeError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// nodeTx is the subset of a transaction returned by /transactions/by_hash.
type nodeTx struct {
	Type      string `json:"type"`
	Hash      string `json:"hash"`
	Sender    string `json:"sender"`
	Version   string `json:"version"`
	Success   bool   `json:"success"`
	VMStatus  string `json:"vm_status"`
	Timestamp string `json:"timestamp"`
}

// Init returns a client of the node REST API at node (ie. https://fullnode.testnet.aptoslabs.com/v1). A secret of the
// form user:password is sent as basic authentication, any other non-empty secret as a bearer token.
func Init(node, secret string) (*Aptos, error) {
	if node == "" {
		return nil, errors.New("cannot connect to aptos node: empty url")
	}

	c := resty.New().
		SetBaseURL(strings.TrimSuffix(node, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if user, pass, ok := strings.Cut(secret, ":"); ok {
		c.SetBasicAuth(user, pass)
	} else if secret != "" {
		c.SetAuthToken(secret)
	}

	return &Aptos{c: c}, nil
}

// AvgBlock returns the average time to commit a block in seconds.
func (a *Aptos) AvgBlock() int {
	return 1
}

// Close ends a connection
func (a *Aptos) Close() {
	a.c.GetClient().CloseIdleConnections()
}

// View calls a view function and returns its decoded return values. A non-2xx response yields ErrViewFailed.
func (a *Aptos) View(ctx context.Context, p types.Payload) ([]json.RawMessage, error) {
	if p.TypeArguments == nil {
		p.TypeArguments = []string{}
	}
	if p.Arguments == nil {
		p.Arguments = []string{}
	}

	var ret []json.RawMessage
	var nerr nodeError

	res, err := a.c.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(p).
		SetResult(&ret).
		SetError(&nerr).
		Post("/view")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrViewFailed, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: status %d %s", types.ErrViewFailed, res.StatusCode(), nerr.Message)
	}

	return ret, nil
}

// Transaction gets the status of a transaction by its hash. Unknown hashes yield ErrNoTrx.
func (a *Aptos) Transaction(ctx context.Context, hash string) (types.Trans, error) {
	var tx nodeTx
	var nerr nodeError

	res, err := a.c.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetPathParam("hash", hash).
		SetResult(&tx).
		SetError(&nerr).
		Get("/transactions/by_hash/{hash}")
	if err != nil {
		return types.Trans{}, err
	}
	if res.StatusCode() == http.StatusNotFound {
		return types.Trans{}, types.ErrNoTrx
	}
	if res.IsError() {
		return types.Trans{}, fmt.Errorf("%w: status %d %s", types.ErrDecode, res.StatusCode(), nerr.Message)
	}

	t := types.Trans{Hash: tx.Hash, Sender: tx.Sender, Version: tx.Version, VMStatus: tx.VMStatus, TS: tx.Timestamp}

	switch {
	case tx.Type == "pending_transaction":
		t.Status = types.TrxPending
	case tx.Success:
		t.Status = types.TrxSuccess
	default:
		t.Status = types.TrxFailed
	}

	return t, nil
}
