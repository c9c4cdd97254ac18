package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/e4rthen/storefront-backend/config"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "storefront:revoked:"

var client *redis.Client

// Init connects to Redis and verifies the connection with a ping.
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr(),
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance.
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection.
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// kvStore is the subset of Redis commands the token store needs.
type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type clientStore struct {
	client *redis.Client
}

func (s clientStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s clientStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TokenStore records revoked token ids (jti) until the token would have
// expired anyway.
type TokenStore struct {
	store kvStore
}

func NewTokenStore(c *redis.Client) *TokenStore {
	return &TokenStore{store: clientStore{client: c}}
}

func revokedKey(jti string) string {
	return revokedKeyPrefix + jti
}

// Revoke marks jti as revoked for ttl. A non-positive ttl means the token has
// already expired and nothing is stored.
func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.store.Set(ctx, revokedKey(jti), "1", ttl); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"jti": jti,
		})
		return err
	}
	logger.Debug("Token revoked", map[string]interface{}{
		"jti": jti,
		"ttl": ttl.String(),
	})
	return nil
}

// IsRevoked reports whether jti was revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := s.store.Exists(ctx, revokedKey(jti))
	if err != nil {
		logger.Error("Failed to check token revocation", err, map[string]interface{}{
			"jti": jti,
		})
		return false, err
	}
	return revoked, nil
}
