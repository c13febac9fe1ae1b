package application

import (
	"context"

	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/infrastructure/kv"
)

// AdminService backs the admin listing endpoints: full prefix scans,
// unfiltered and unpaginated.
type AdminService struct {
	KV kv.Store
}

func (s *AdminService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return kv.List[entity.User](ctx, s.KV, UserPrefix)
}

func (s *AdminService) ListOrders(ctx context.Context) ([]entity.Order, error) {
	return kv.List[entity.Order](ctx, s.KV, OrderPrefix)
}
