package sessionstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

const keyPrefix = "edumate:revoked:"

// redisCommands is the subset of *redis.Client the store uses.
type redisCommands interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRevocations shares logged-out tokens between API replicas. Keys expire
// with the token, so the set never grows past the live sessions.
type RedisRevocations struct {
	rdb redisCommands
	now func() time.Time
}

func NewRedisRevocations(rdb redisCommands) *RedisRevocations {
	return &RedisRevocations{rdb: rdb, now: time.Now}
}

func (r *RedisRevocations) Revoke(ctx context.Context, token string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, keyPrefix+tokenKey(token), "1", ttl).Err(); err != nil {
		return domain.WrapError(domain.ErrTemporary, "revoke session", fmt.Errorf("redis set: %w", err))
	}
	return nil
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.rdb.Exists(ctx, keyPrefix+tokenKey(token)).Result()
	if err != nil {
		return false, domain.WrapError(domain.ErrTemporary, "check session revocation", fmt.Errorf("redis exists: %w", err))
	}
	return n > 0, nil
}

// Tokens are stored hashed; a leaked key set must not hand out sessions.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
