package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/pasarku/pasarku/config"
	"github.com/pasarku/pasarku/internal/application"
	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/domain/repository"
	"github.com/pasarku/pasarku/internal/infrastructure/kv"
	pginfra "github.com/pasarku/pasarku/internal/infrastructure/postgres"
	"github.com/pasarku/pasarku/pkg/helpers"
)

// seed creates an admin account: an identity row in Postgres plus the
// mirrored profile and empty index lists in the key-value store.
func main() {
	_ = godotenv.Load()

	email := flag.String("email", "admin@pasarku.dev", "admin email")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Administrator", "admin display name")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	store := kv.NewRedisStore(rdb)

	identities := pginfra.NewIdentityRepository(pool)

	hash, err := helpers.HashPassword(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ident := &entity.Identity{Email: *email, PasswordHash: hash, Name: *name}
	err = identities.Create(ctx, ident)
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		existing, err := identities.GetByEmail(ctx, *email)
		if err != nil {
			log.Fatalf("failed to load existing identity: %v", err)
		}
		ident = existing
		log.Printf("identity %s already exists, refreshing mirror", *email)
	case err != nil:
		log.Fatalf("failed to create identity: %v", err)
	}

	user := &entity.User{
		ID:        ident.ID,
		Email:     ident.Email,
		Name:      ident.Name,
		Role:      entity.RoleAdmin,
		CreatedAt: ident.CreatedAt,
	}
	if err := store.Set(ctx, application.UserKey(user.ID), user); err != nil {
		log.Fatalf("failed to mirror user record: %v", err)
	}

	// Index lists start empty; do not clobber them on a re-run.
	var ids []string
	if found, err := store.Get(ctx, application.UserProductsKey(user.ID), &ids); err != nil {
		log.Fatalf("failed to read product index: %v", err)
	} else if !found {
		if err := store.Set(ctx, application.UserProductsKey(user.ID), []string{}); err != nil {
			log.Fatalf("failed to init product index: %v", err)
		}
	}
	if found, err := store.Get(ctx, application.UserOrdersKey(user.ID), &ids); err != nil {
		log.Fatalf("failed to read order index: %v", err)
	} else if !found {
		if err := store.Set(ctx, application.UserOrdersKey(user.ID), []string{}); err != nil {
			log.Fatalf("failed to init order index: %v", err)
		}
	}

	log.Printf("admin %s seeded with id %s", user.Email, user.ID)
}
