package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

const placeColumns = `id::text, title, description, address, image, lat, lng, creator::text, created_at, updated_at`

type PlaceRepository struct {
	pool *pgxpool.Pool
}

func NewPlaceRepository(pool *pgxpool.Pool) *PlaceRepository {
	return &PlaceRepository{pool: pool}
}

func scanPlace(row pgx.Row) (*entity.Place, error) {
	p := &entity.Place{}
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Address, &p.Image,
		&p.Location.Lat, &p.Location.Lng, &p.Creator, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *PlaceRepository) Create(ctx context.Context, p *entity.Place) error {
	if !validID(p.Creator) {
		return repository.ErrNotFound
	}
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO places (title, description, address, image, lat, lng, creator)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at, updated_at
	`, p.Title, p.Description, p.Address, p.Image, p.Location.Lat, p.Location.Lng, p.Creator)

	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*entity.Place, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanPlace(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+placeColumns+`
		FROM places
		WHERE id = $1
	`, id))
}

func (r *PlaceRepository) ListByCreator(ctx context.Context, creatorID string) ([]*entity.Place, error) {
	out := []*entity.Place{}
	if !validID(creatorID) {
		return out, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+placeColumns+`
		FROM places
		WHERE creator = $1
		ORDER BY created_at, id
	`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PlaceRepository) Update(ctx context.Context, p *entity.Place) error {
	if !validID(p.ID) {
		return repository.ErrNotFound
	}
	row := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE places
		SET title = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`, p.Title, p.Description, p.ID)

	return mapErr(row.Scan(&p.UpdatedAt))
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PlaceRepository = (*PlaceRepository)(nil)
