// Package remote implements a wallet bridge reached over HTTP, usually a wallet process listening on localhost that
// prompts its user before connecting or signing.
//
// The bridge must serve:
//
//	GET  /health           -> {"ok": true}
//	POST /connect          -> {"address": "0x...", "publicKey": "0x..."}
//	POST /sign-and-submit  {"payload": {...}} -> {"hash": "0x..."}
//
// Non-2xx replies carry {"error": "reason"}.
package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/tarancss/educertify/bridge"
	"github.com/tarancss/educertify/lib/block/types"
)

// Remote is a wallet bridge client.
type Remote struct {
	c *resty.Client
}

type submitReq struct {
	Payload types.Payload `json:"payload"`
}

type errorRes struct {
	Error string `json:"error"`
}

type healthRes struct {
	OK bool `json:"ok"`
}

// New returns a client for the bridge at url. No timeout is set: connecting and signing wait for the wallet user,
// use the context to bound them.
func New(url string) *Remote {
	return &Remote{
		c: resty.New().
			SetBaseURL(strings.TrimSuffix(url, "/")).
			SetHeader("Content-Type", "application/json"),
	}
}

// Available returns nil if the bridge answers its health check.
func (r *Remote) Available(ctx context.Context) error {
	var h healthRes

	res, err := r.c.R().SetContext(ctx).ForceContentType("application/json").SetResult(&h).Get("/health")
	if err != nil {
		return fmt.Errorf("%w: %v", bridge.ErrNotFound, err)
	}
	if res.IsError() || !h.OK {
		return fmt.Errorf("%w: health status %d", bridge.ErrNotFound, res.StatusCode())
	}
	return nil
}

// Connect asks the wallet for its account.
func (r *Remote) Connect(ctx context.Context) (bridge.Account, error) {
	var a bridge.Account

	if err := r.post(ctx, "/connect", nil, &a); err != nil {
		return a, err
	}
	if a.Address == "" {
		return a, fmt.Errorf("%w: no address returned", bridge.ErrRejected)
	}
	return a, nil
}

// SignAndSubmitTransaction asks the wallet to sign and submit the payload.
func (r *Remote) SignAndSubmitTransaction(ctx context.Context, p types.Payload) (bridge.PendingTransaction, error) {
	var tx bridge.PendingTransaction

	if err := r.post(ctx, "/sign-and-submit", submitReq{Payload: p}, &tx); err != nil {
		return tx, err
	}
	if tx.Hash == "" {
		return tx, fmt.Errorf("%w: no transaction hash returned", bridge.ErrRejected)
	}
	return tx, nil
}

// post sends body to path decoding the reply into result. Transport errors mean there is no bridge to talk to.
func (r *Remote) post(ctx context.Context, path string, body, result interface{}) error {
	var e errorRes

	req := r.c.R().SetContext(ctx).ForceContentType("application/json").SetResult(result).SetError(&e)
	if body != nil {
		req.SetBody(body)
	}

	res, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("%w: %v", bridge.ErrNotFound, err)
	}
	if res.IsError() {
		if e.Error == "" {
			e.Error = res.Status()
		}
		return fmt.Errorf("%w: %s", bridge.ErrRejected, e.Error)
	}
	return nil
}
