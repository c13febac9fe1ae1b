package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/domain/repository"
	"github.com/pasarku/pasarku/internal/infrastructure/kv"
	"github.com/pasarku/pasarku/pkg/apperr"
	"github.com/pasarku/pasarku/pkg/helpers"
	"github.com/pasarku/pasarku/pkg/mailer"
)

// AuthService owns signup, login and the mirrored user records. The
// identity store holds credentials; the key-value store holds the
// profile mirror that the rest of the marketplace reads.
type AuthService struct {
	Identities  repository.IdentityRepository
	KV          kv.Store
	JWT         *helpers.JWTManager
	Pub         *helpers.RabbitPublisher
	Logger      *logrus.Logger
	MailEnabled bool
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
	Role     string // defaults to "user"; "admin" is honored when requested
}

// Signup creates an identity, mirrors the user record into the KV store
// and seeds the two empty index lists. If the mirror writes fail after
// the identity exists, the caller gets a 500 and the records stay
// inconsistent until reconciled; there is no rollback.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, TokenPair, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}

	ident := &entity.Identity{Email: in.Email, PasswordHash: hash, Name: in.Name}
	if err := s.Identities.Create(ctx, ident); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, TokenPair{}, apperr.Validation(err.Error())
		}
		return nil, TokenPair{}, err
	}

	u := &entity.User{
		ID:        ident.ID,
		Email:     ident.Email,
		Name:      ident.Name,
		Role:      role,
		CreatedAt: ident.CreatedAt,
	}
	if err := s.KV.Set(ctx, UserKey(u.ID), u); err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.KV.Set(ctx, UserProductsKey(u.ID), []string{}); err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.KV.Set(ctx, UserOrdersKey(u.ID), []string{}); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if s.MailEnabled {
		publishEmail(ctx, s.Pub, s.Logger, mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateWelcome,
			Data:     map[string]any{"Name": u.Name, "Email": u.Email},
		})
	}
	return u, pair, nil
}

// Login verifies credentials against the identity store and returns the
// mirrored user record with a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	ident, err := s.Identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return nil, TokenPair{}, apperr.Unauthorized("invalid credentials")
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CheckPassword(ident.PasswordHash, password) {
		return nil, TokenPair{}, apperr.Unauthorized("invalid credentials")
	}

	u, err := s.CurrentUser(ctx, ident.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the token pair given a valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid refresh token")
	}
	u, err := s.CurrentUser(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid refresh token")
	}
	return s.issueTokens(u)
}

// CurrentUser looks up the mirrored record for a verified identity.
// "not found" means the identity exists upstream but the signup mirror
// write never landed.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	var u entity.User
	ok, err := s.KV.Get(ctx, UserKey(userID), &u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (s *AuthService) issueTokens(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}
