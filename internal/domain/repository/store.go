package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate")
)

// TxManager runs fn inside one atomic transaction.
// Repository calls made with the ctx passed to fn join the transaction;
// the transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories and the transaction boundary of one backend.
type Store struct {
	Users  UserRepository
	Places PlaceRepository
	Tx     TxManager
	Close  func()
}
