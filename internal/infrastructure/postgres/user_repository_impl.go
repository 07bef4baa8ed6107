package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

const userColumns = `id::text, name, email, password, image, places::text[], created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Image, &u.Places, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if u.Places == nil {
		u.Places = []string{}
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (name, email, password, image)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, places::text[], created_at, updated_at
	`, u.Name, u.Email, u.Password, u.Image)

	if err := row.Scan(&u.ID, &u.Places, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapErr(err)
	}
	if u.Places == nil {
		u.Places = []string{}
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanUser(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1)
	`, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// AppendPlace pushes in a single UPDATE so the row lock serializes
// concurrent appends for the same owner.
func (r *UserRepository) AppendPlace(ctx context.Context, userID, placeID string) error {
	if !validID(userID) || !validID(placeID) {
		return repository.ErrNotFound
	}
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET places = CASE WHEN $2::uuid = ANY(places) THEN places ELSE array_append(places, $2::uuid) END,
		    updated_at = now()
		WHERE id = $1
	`, userID, placeID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) RemovePlace(ctx context.Context, userID, placeID string) error {
	if !validID(userID) || !validID(placeID) {
		return repository.ErrNotFound
	}
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET places = array_remove(places, $2::uuid), updated_at = now()
		WHERE id = $1
	`, userID, placeID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
