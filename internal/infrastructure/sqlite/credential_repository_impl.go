package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

type CredentialRepository struct {
	db *sql.DB
}

var _ repository.CredentialRepository = (*CredentialRepository)(nil)

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) SavePassword(ctx context.Context, id entity.UserID, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_credentials (user_id, password_hash, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET password_hash = excluded.password_hash, updated_at = excluded.updated_at
	`, id.String(), hash, timestamp())
	if err != nil {
		return apperror.Wrap(apperror.ErrPersistence, err, "save credentials for %s", id)
	}
	return nil
}

func (r *CredentialRepository) FindPasswordHash(ctx context.Context, id entity.UserID) (string, bool, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM user_credentials WHERE user_id = ?`, id.String()).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, apperror.Wrap(apperror.ErrPersistence, err, "load credentials for %s", id)
	}
	return hash, true, nil
}
