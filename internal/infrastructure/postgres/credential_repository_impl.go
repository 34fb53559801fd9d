package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

type CredentialRepository struct {
	pool *pgxpool.Pool
}

var _ repository.CredentialRepository = (*CredentialRepository)(nil)

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) SavePassword(ctx context.Context, id entity.UserID, hash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_credentials (user_id, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()
	`, id.String(), hash)
	if err != nil {
		return apperror.Wrap(apperror.ErrPersistence, err, "save credentials for %s", id)
	}
	return nil
}

func (r *CredentialRepository) FindPasswordHash(ctx context.Context, id entity.UserID) (string, bool, error) {
	var hash string
	err := r.pool.QueryRow(ctx, `SELECT password_hash FROM user_credentials WHERE user_id = $1`, id.String()).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, apperror.Wrap(apperror.ErrPersistence, err, "load credentials for %s", id)
	}
	return hash, true, nil
}
