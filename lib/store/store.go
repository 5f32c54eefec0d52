// Package store defines the interface for database implementations of the educertify activity log. Only the outcome
// of submitted actions is kept; certificates always come from the chain.
package store

import (
	"errors"
)

// DB defines required methods for the educertify service
type DB interface {
	AddAction(Action) ([]byte, error)
	GetActions(address string) ([]Action, error)
}

// Errors returned
var (
	ErrDataNotFound = errors.New("Data was not found in store")
)
