package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/models"
	"github.com/inamit/colman-WebApplications/internal/repository"
	"github.com/inamit/colman-WebApplications/internal/service/auth/tokencodec"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during registration or login
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// RevokeOnLogout additionally removes the presented refresh token
	// from the store on logout. Off by default: access tokens stay
	// valid until expiry anyway, clearing client state is enough.
	RevokeOnLogout bool
}

// AuthService orchestrates login, logout and refresh-token rotation
type AuthService struct {
	codec   *tokencodec.Codec
	hasher  PasswordHasher
	users   repository.UserRepo
	refresh repository.RefreshTokenRepo

	revokeOnLogout bool
}

func NewService(cfg Config, codec *tokencodec.Codec, users repository.UserRepo, refresh repository.RefreshTokenRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if codec == nil {
		return nil, errors.New("token codec must not be nil")
	}
	if users == nil || refresh == nil {
		return nil, errors.New("repos must not be nil")
	}

	return &AuthService{
		codec:          codec,
		hasher:         hasher,
		users:          users,
		refresh:        refresh,
		revokeOnLogout: cfg.RevokeOnLogout,
	}, nil
}

// Register creates a user with a hashed password
// Returns apperrors.ErrUserAlreadyExists if the username is taken
func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.users.CreateUser(ctx, username, email, hash)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login verifies credentials and issues a fresh token pair. The
// refresh token is appended to the user's valid set before returning.
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.User, models.TokenPair, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// RefreshPair rotates the presented refresh token: verifies it, removes
// it from the user's valid set and issues a brand-new pair.
//
// A signature-valid token that is missing from the set was consumed
// already or invalidated earlier. That is a replay signal, so the whole
// set is wiped and every device has to authenticate again.
func (s *AuthService) RefreshPair(ctx context.Context, refreshToken string) (models.User, models.TokenPair, error) {
	if refreshToken == "" {
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidToken
	}

	userID, _, err := s.codec.ParseRefresh(refreshToken)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	err = s.refresh.Revoke(ctx, user.ID, refreshToken)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		if err := s.refresh.RevokeAll(ctx, user.ID); err != nil {
			return models.User{}, models.TokenPair{}, err
		}
		return models.User{}, models.TokenPair{}, fmt.Errorf("refresh token reused: %w", apperrors.ErrInvalidToken)
	case err != nil:
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// Logout is a transport-level operation: the handler clears whatever
// client state carries the tokens. When RevokeOnLogout is set and a
// verifiable refresh token was presented it is removed server side too.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if !s.revokeOnLogout || refreshToken == "" {
		return nil
	}

	userID, _, err := s.codec.ParseRefresh(refreshToken)
	if err != nil {
		// Nothing to revoke for a token that never verified
		return nil
	}

	err = s.refresh.Revoke(ctx, userID, refreshToken)
	if err != nil && !errors.Is(err, apperrors.ErrRefreshTokenNotFound) {
		return err
	}

	return nil
}

// User returns the user behind an authenticated subject id
func (s *AuthService) User(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *AuthService) issuePair(ctx context.Context, userID uuid.UUID) (models.TokenPair, error) {
	access, err := s.codec.IssueAccess(userID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	refresh, err := s.codec.IssueRefresh(userID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	if err := s.refresh.Append(ctx, userID, refresh.Value); err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
