package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const authTokenPrefix = "authToken:"

// SaveAuthToken stores the hash of a user's current JWT so it can be revoked
// before its natural expiry.
func SaveAuthToken(client *redis.Client, userID, token string, ttl time.Duration) error {
	ctx := context.Background()
	if err := client.Set(ctx, authTokenPrefix+userID, HashToken(token), ttl).Err(); err != nil {
		return fmt.Errorf("failed to save auth token: %w", err)
	}
	return nil
}

// CheckAuthToken reports whether the presented token matches the stored hash.
func CheckAuthToken(client *redis.Client, userID, token string) (bool, error) {
	ctx := context.Background()
	stored, err := client.Get(ctx, authTokenPrefix+userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up auth token: %w", err)
	}
	return stored == HashToken(token), nil
}

// RevokeAuthToken drops the stored token hash, invalidating the session.
func RevokeAuthToken(client *redis.Client, userID string) error {
	ctx := context.Background()
	return client.Del(ctx, authTokenPrefix+userID).Err()
}
