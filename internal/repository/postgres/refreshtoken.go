package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const appendToken = `-- name: Append refresh token
INSERT INTO refresh_tokens (user_id, token)
VALUES ($1, $2)
`

func (r *RefreshTokenRepo) Append(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.DB.Exec(ctx, appendToken, userID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const containsToken = `-- name: Contains refresh token
SELECT EXISTS (
    SELECT 1 FROM refresh_tokens
    WHERE user_id = $1 AND token = $2
)
`

func (r *RefreshTokenRepo) Contains(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var exists bool
	rows, err := r.DB.Query(ctx, containsToken, userID, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return false, fmt.Errorf("db error: %w", rows.Err())
	}
	if err := rows.Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

const revokeToken = `-- name: Revoke refresh token if present
DELETE FROM refresh_tokens
WHERE user_id = $1 AND token = $2
`

// Revoke removes the token from the user's valid set.
// The single DELETE is the serialization point for concurrent refreshes
// presenting the same token: the database removes the row exactly once,
// so only one caller sees it removed, the rest get
// apperrors.ErrRefreshTokenNotFound.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	tag, err := r.DB.Exec(ctx, revokeToken, userID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	}

	return nil
}

const revokeAllTokens = `-- name: Revoke all user's refresh tokens
DELETE FROM refresh_tokens
WHERE user_id = $1
`

func (r *RefreshTokenRepo) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, revokeAllTokens, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
