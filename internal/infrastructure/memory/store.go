// Package memory is an in-process store implementing the repository
// contracts. Transactions stage writes on a private copy of the data and
// publish it on commit, so nothing written inside an aborted transaction
// is ever visible.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

type state struct {
	users      map[string]*entity.User
	userOrder  []string
	emails     map[string]string
	places     map[string]*entity.Place
	placeOrder []string
}

func newState() *state {
	return &state{
		users:  map[string]*entity.User{},
		emails: map[string]string{},
		places: map[string]*entity.Place{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:      make(map[string]*entity.User, len(s.users)),
		userOrder:  append([]string(nil), s.userOrder...),
		emails:     make(map[string]string, len(s.emails)),
		places:     make(map[string]*entity.Place, len(s.places)),
		placeOrder: append([]string(nil), s.placeOrder...),
	}
	for k, u := range s.users {
		c.users[k] = copyUser(u)
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, p := range s.places {
		c.places[k] = copyPlace(p)
	}
	return c
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	c.Places = append([]string{}, u.Places...)
	return &c
}

func copyPlace(p *entity.Place) *entity.Place {
	c := *p
	return &c
}

type txKey struct{}

type tx struct {
	owner  *Store
	staged *state
}

// Store holds committed state. Writers are serialized by writeMu; readers
// outside a transaction only take mu.
type Store struct {
	writeMu   sync.Mutex
	mu        sync.RWMutex
	committed *state
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{committed: newState(), now: time.Now}
}

// Bundle exposes the store through the repository contracts.
func (s *Store) Bundle() repository.Store {
	return repository.Store{
		Users:  &UserRepository{store: s},
		Places: &PlaceRepository{store: s},
		Tx:     s,
		Close:  func() {},
	}
}

func (s *Store) txFrom(ctx context.Context) *tx {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.owner != s {
		return nil
	}
	return t
}

// WithTransaction implements repository.TxManager. A ctx that already carries
// a transaction of this store joins it.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFrom(ctx) != nil {
		return fn(ctx)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	t := &tx{owner: s, staged: s.committed.clone()}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.committed = t.staged
	s.mu.Unlock()
	return nil
}

// read runs fn against the transaction's staged state or the committed state.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if t := s.txFrom(ctx); t != nil {
		return fn(t.staged)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.committed)
}

// write applies fn inside the current transaction, or as a single-statement
// write that is durable immediately. fn must check before it mutates.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t := s.txFrom(ctx); t != nil {
		return fn(t.staged)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.committed)
}

var _ repository.TxManager = (*Store)(nil)
