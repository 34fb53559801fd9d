// Package sqlite stores users in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/persistence"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

type UserRepository struct {
	db *sql.DB
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const selectUser = `SELECT id, email, full_name, age FROM users`

func (r *UserRepository) FindByID(ctx context.Context, id entity.UserID) (*entity.User, bool, error) {
	return r.findOne(ctx, selectUser+` WHERE id = ?`, id.String())
}

func (r *UserRepository) FindByEmail(ctx context.Context, email entity.EmailAddress) (*entity.User, bool, error) {
	return r.findOne(ctx, selectUser+` WHERE email = ?`, email.String())
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+` ORDER BY seq`)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrPersistence, err, "list users")
	}
	defer func() { _ = rows.Close() }()

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
	now := timestamp()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, age, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID().String(), persistence.NullableEmail(u), u.FullName().String(), u.Age().Int(), now, now)
	if err != nil {
		return mapWriteError(err, "insert user %s", u.ID())
	}
	return nil
}

func (r *UserRepository) ChangeDetails(ctx context.Context, u *entity.User) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET email = ?, full_name = ?, age = ?, updated_at = ?
		WHERE id = ?
		RETURNING id, email, full_name, age
	`, persistence.NullableEmail(u), u.FullName().String(), u.Age().Int(), timestamp(), u.ID().String())

	saved, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.With(apperror.ErrNotFound, "user %s not found", u.ID())
		}
		return nil, mapWriteError(err, "change user %s", u.ID())
	}
	return saved, nil
}

func (r *UserRepository) DeleteBy(ctx context.Context, id entity.UserID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String()); err != nil {
		return apperror.Wrap(apperror.ErrPersistence, err, "delete user %s", id)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, bool, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*entity.User, error) {
	var (
		id, fullName string
		email        sql.NullString
		age          int
	)
	if err := row.Scan(&id, &email, &fullName, &age); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.ErrPersistence, err, "scan user")
	}
	var raw *string
	if email.Valid {
		raw = &email.String
	}
	return persistence.Rehydrate(id, raw, fullName, age)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func mapWriteError(err error, msgFmt string, args ...any) error {
	var sErr *sqlite.Error
	if errors.As(err, &sErr) {
		switch sErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperror.Wrap(apperror.ErrConflict, err, msgFmt, args...)
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return apperror.Wrap(apperror.ErrConflict, err, msgFmt, args...)
	}
	return apperror.Wrap(apperror.ErrPersistence, err, msgFmt, args...)
}
