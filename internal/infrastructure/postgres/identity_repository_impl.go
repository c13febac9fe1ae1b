package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/domain/repository"
)

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) Create(ctx context.Context, id *entity.Identity) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO identities (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, id.Email, id.PasswordHash, id.Name)

	if err := row.Scan(&id.ID, &id.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM identities
		WHERE id = $1
	`, id))
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM identities
		WHERE email = $1
	`, email))
}

func (r *IdentityRepository) scanOne(row pgx.Row) (*entity.Identity, error) {
	id := &entity.Identity{}
	if err := row.Scan(&id.ID, &id.Email, &id.PasswordHash, &id.Name, &id.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrIdentityNotFound
		}
		return nil, err
	}
	return id, nil
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)
