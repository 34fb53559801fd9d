package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
)

type CredentialRepository struct {
	mu     sync.RWMutex
	hashes map[string]string
}

var _ repository.CredentialRepository = (*CredentialRepository)(nil)

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{hashes: map[string]string{}}
}

func (r *CredentialRepository) SavePassword(_ context.Context, id entity.UserID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashes[id.String()] = hash
	return nil
}

func (r *CredentialRepository) FindPasswordHash(_ context.Context, id entity.UserID) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hashes[id.String()]
	return h, ok, nil
}
