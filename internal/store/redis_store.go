package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitminesocial/mining-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each profile's state bag in one Redis hash
type RedisStore struct {
	redis *database.Redis
}

// NewRedisStore creates a Redis-backed profile store
func NewRedisStore(rdb *database.Redis) *RedisStore {
	return &RedisStore{redis: rdb}
}

func profileKey(profileID string) string {
	return fmt.Sprintf("profile:%s", profileID)
}

// Get returns the value for a key, or "" when absent
func (s *RedisStore) Get(ctx context.Context, profileID, key string) (string, error) {
	val, err := s.redis.Client.HGet(ctx, profileKey(profileID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read profile key %s: %w", key, err)
	}
	return val, nil
}

// Set writes a single key
func (s *RedisStore) Set(ctx context.Context, profileID, key, value string) error {
	if err := s.redis.Client.HSet(ctx, profileKey(profileID), key, value).Err(); err != nil {
		return fmt.Errorf("failed to write profile key %s: %w", key, err)
	}
	return nil
}

// SetAll writes several keys in one operation
func (s *RedisStore) SetAll(ctx context.Context, profileID string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		args = append(args, k, v)
	}
	if err := s.redis.Client.HSet(ctx, profileKey(profileID), args...).Err(); err != nil {
		return fmt.Errorf("failed to write profile keys: %w", err)
	}
	return nil
}

// Delete removes the given keys
func (s *RedisStore) Delete(ctx context.Context, profileID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis.Client.HDel(ctx, profileKey(profileID), keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete profile keys: %w", err)
	}
	return nil
}

// Snapshot returns every key currently set for a profile
func (s *RedisStore) Snapshot(ctx context.Context, profileID string) (map[string]string, error) {
	values, err := s.redis.Client.HGetAll(ctx, profileKey(profileID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return values, nil
}

var _ ProfileStore = (*RedisStore)(nil)
