package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

type PlaceRepository struct {
	store *Store
}

func (r *PlaceRepository) Create(ctx context.Context, p *entity.Place) error {
	return r.store.write(ctx, func(st *state) error {
		now := r.store.now()
		p.ID = uuid.NewString()
		p.CreatedAt, p.UpdatedAt = now, now
		st.places[p.ID] = copyPlace(p)
		st.placeOrder = append(st.placeOrder, p.ID)
		return nil
	})
}

func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*entity.Place, error) {
	var out *entity.Place
	err := r.store.read(ctx, func(st *state) error {
		p, ok := st.places[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyPlace(p)
		return nil
	})
	return out, err
}

func (r *PlaceRepository) ListByCreator(ctx context.Context, creatorID string) ([]*entity.Place, error) {
	var out []*entity.Place
	err := r.store.read(ctx, func(st *state) error {
		out = []*entity.Place{}
		for _, id := range st.placeOrder {
			if p := st.places[id]; p.Creator == creatorID {
				out = append(out, copyPlace(p))
			}
		}
		return nil
	})
	return out, err
}

func (r *PlaceRepository) Update(ctx context.Context, p *entity.Place) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.places[p.ID]; !ok {
			return repository.ErrNotFound
		}
		p.UpdatedAt = r.store.now()
		st.places[p.ID] = copyPlace(p)
		return nil
	})
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.places[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.places, id)
		for i, pid := range st.placeOrder {
			if pid == id {
				st.placeOrder = append(st.placeOrder[:i], st.placeOrder[i+1:]...)
				break
			}
		}
		return nil
	})
}

var _ repository.PlaceRepository = (*PlaceRepository)(nil)
