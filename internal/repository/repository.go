package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/inamit/colman-WebApplications/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// RefreshTokenRepo keeps the set of currently valid refresh tokens per
// user. Tokens are appended on issue and removed on rotation, so a
// token present in the store is one that was issued and never consumed.
type RefreshTokenRepo interface {
	// Add token to the user's valid set
	Append(ctx context.Context, userID uuid.UUID, token string) error

	// Report whether token is in the user's valid set
	Contains(ctx context.Context, userID uuid.UUID, token string) (bool, error)

	// Remove exactly one occurrence of token from the user's set.
	// Must be atomic remove-if-present: with two concurrent calls for
	// the same token only one succeeds, the other gets
	// apperrors.ErrRefreshTokenNotFound.
	Revoke(ctx context.Context, userID uuid.UUID, token string) error

	// Clear the user's set, forcing re-authentication everywhere
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}
