package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/domain/repository"
)

// IdentityRepository is an in-process credential store for tests and
// local tooling; it mirrors the Postgres implementation's semantics,
// including the unique-email constraint.
type IdentityRepository struct {
	mu      sync.RWMutex
	byID    map[string]entity.Identity
	byEmail map[string]string
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		byID:    make(map[string]entity.Identity),
		byEmail: make(map[string]string),
	}
}

func (r *IdentityRepository) Create(ctx context.Context, id *entity.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[id.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	if id.ID == "" {
		id.ID = uuid.NewString()
	}
	id.CreatedAt = time.Now().UTC()
	r.byID[id.ID] = *id
	r.byEmail[id.Email] = id.ID
	return nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.byID[id]; ok {
		cp := v
		return &cp, nil
	}
	return nil, repository.ErrIdentityNotFound
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byEmail[email]; ok {
		cp := r.byID[id]
		return &cp, nil
	}
	return nil, repository.ErrIdentityNotFound
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)
