// Package types common blockchain types.
package types

import (
	"errors"
	"strconv"
	"time"
)

// Transaction status constants
const (
	TrxPending uint8 = 0
	TrxFailed  uint8 = 1
	TrxSuccess uint8 = 2
)

// Payload describes a call to an on-chain entry or view function. Function is fully qualified
// (<address>::<module>::<function>) and the arguments are already encoded as strings (addresses, strings and
// numbers in their canonical decimal form).
type Payload struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []string `json:"arguments"`
}

// NewPayload returns a payload for function with no type arguments. A nil args is sent as an empty list.
func NewPayload(function string, args ...string) Payload {
	if args == nil {
		args = []string{}
	}
	return Payload{Function: function, TypeArguments: []string{}, Arguments: args}
}

// Certificate is a certificate record as returned by the get_certificates view function.
type Certificate struct {
	ID             string `json:"id"`
	StudentAddress string `json:"student_address"`
	CourseName     string `json:"course_name"`
	IssuerName     string `json:"issuer_name"`
	IssuanceDate   string `json:"issuance_date"` // unix seconds
	CertificateURL string `json:"certificate_url"`
	IsRevoked      bool   `json:"is_revoked"`
}

// IssuedAt returns the issuance date as a time.
func (c Certificate) IssuedAt() (time.Time, error) {
	secs, err := strconv.ParseInt(c.IssuanceDate, 10, 64)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return time.Unix(secs, 0).UTC(), nil
}

// Trans contains a simplified number of fields of a submitted transaction.
type Trans struct {
	Hash     string `json:"hash"`
	Sender   string `json:"sender,omitempty"`
	Version  string `json:"version,omitempty"`
	Status   uint8  `json:"status"`
	VMStatus string `json:"vm_status,omitempty"`
	TS       string `json:"ts,omitempty"` // microseconds
}

// Error codes.
var (
	ErrBadDate    = errors.New("issuance date is not a unix timestamp")
	ErrDecode     = errors.New("unable to decode node response")
	ErrNoTrx      = errors.New("transaction not found")
	ErrViewFailed = errors.New("view function call failed")
)
