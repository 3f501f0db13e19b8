// Package redis provides a Redis-backed refresh-token store. It keeps
// the same semantics as the postgres implementation but suits
// deployments where session state should not live in the main database.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
)

const keyPrefix = "refreshtokens:"

type RefreshTokenRepo struct {
	client *redis.Client

	// Keys expire a refresh-token lifetime after the last append, so
	// abandoned sessions clean themselves up.
	ttl time.Duration
}

func NewRefreshTokenRepo(client *redis.Client, ttl time.Duration) *RefreshTokenRepo {
	return &RefreshTokenRepo{client: client, ttl: ttl}
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

func (r *RefreshTokenRepo) Append(ctx context.Context, userID uuid.UUID, token string) error {
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key(userID), token)
	pipe.Expire(ctx, key(userID), r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) Contains(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	tokens, err := r.client.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}

	for _, t := range tokens {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

// Revoke removes one occurrence of token. LREM is atomic on the server,
// so concurrent refreshes presenting the same token see exactly one
// winner, same as the postgres conditional DELETE.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	removed, err := r.client.LRem(ctx, key(userID), 1, token).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	if removed == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	}

	return nil
}

func (r *RefreshTokenRepo) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
