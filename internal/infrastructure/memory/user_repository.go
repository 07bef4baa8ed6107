package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

type UserRepository struct {
	store *Store
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.store.write(ctx, func(st *state) error {
		key := emailKey(u.Email)
		if _, taken := st.emails[key]; taken {
			return repository.ErrDuplicate
		}
		now := r.store.now()
		u.ID = uuid.NewString()
		if u.Places == nil {
			u.Places = []string{}
		}
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = copyUser(u)
		st.userOrder = append(st.userOrder, u.ID)
		st.emails[key] = u.ID
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.store.read(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyUser(u)
		return nil
	})
	return out, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.store.read(ctx, func(st *state) error {
		id, ok := st.emails[emailKey(email)]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyUser(st.users[id])
		return nil
	})
	return out, err
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	var out []*entity.User
	err := r.store.read(ctx, func(st *state) error {
		out = make([]*entity.User, 0, len(st.userOrder))
		for _, id := range st.userOrder {
			out = append(out, copyUser(st.users[id]))
		}
		return nil
	})
	return out, err
}

func (r *UserRepository) AppendPlace(ctx context.Context, userID, placeID string) error {
	return r.store.write(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		if !u.OwnsPlace(placeID) {
			u.Places = append(u.Places, placeID)
		}
		u.UpdatedAt = r.store.now()
		return nil
	})
}

func (r *UserRepository) RemovePlace(ctx context.Context, userID, placeID string) error {
	return r.store.write(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		kept := u.Places[:0]
		for _, id := range u.Places {
			if id != placeID {
				kept = append(kept, id)
			}
		}
		u.Places = kept
		u.UpdatedAt = r.store.now()
		return nil
	})
}

var _ repository.UserRepository = (*UserRepository)(nil)
