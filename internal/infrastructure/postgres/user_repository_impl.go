package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/persistence"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const selectUser = `SELECT id, email, full_name, age FROM users`

func (r *UserRepository) FindByID(ctx context.Context, id entity.UserID) (*entity.User, bool, error) {
	return r.findOne(ctx, selectUser+` WHERE id = $1`, id.String())
}

func (r *UserRepository) FindByEmail(ctx context.Context, email entity.EmailAddress) (*entity.User, bool, error) {
	return r.findOne(ctx, selectUser+` WHERE email = $1`, email.String())
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, selectUser+` ORDER BY created_at, id`)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrPersistence, err, "list users")
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
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.ErrPersistence, err, "list users")
	}
	return out, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, full_name, age)
		VALUES ($1, $2, $3, $4)
	`, u.ID().String(), persistence.NullableEmail(u), u.FullName().String(), u.Age().Int())
	if err != nil {
		return mapWriteError(err, "insert user %s", u.ID())
	}
	return nil
}

func (r *UserRepository) ChangeDetails(ctx context.Context, u *entity.User) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $1, full_name = $2, age = $3, updated_at = now()
		WHERE id = $4
		RETURNING id, email, full_name, age
	`, persistence.NullableEmail(u), u.FullName().String(), u.Age().Int(), u.ID().String())

	saved, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.With(apperror.ErrNotFound, "user %s not found", u.ID())
		}
		return nil, mapWriteError(err, "change user %s", u.ID())
	}
	return saved, nil
}

func (r *UserRepository) DeleteBy(ctx context.Context, id entity.UserID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String()); err != nil {
		return apperror.Wrap(apperror.ErrPersistence, err, "delete user %s", id)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, bool, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}

// scanUser rebuilds the aggregate from a row. pgx.ErrNoRows is passed through
// untouched; other failures become apperror.ErrPersistence.
func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		id, fullName string
		email        *string
		age          int
	)
	if err := row.Scan(&id, &email, &fullName, &age); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.ErrPersistence, err, "scan user")
	}
	return persistence.Rehydrate(id, email, fullName, age)
}

func mapWriteError(err error, msgFmt string, args ...any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.Wrap(apperror.ErrConflict, err, msgFmt, args...)
	}
	return apperror.Wrap(apperror.ErrPersistence, err, msgFmt, args...)
}
