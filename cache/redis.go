package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore persists cache snapshots in redis, for deployments
// that prefer a shared redis over snapshot rows in the primary store.
type RedisSnapshotStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the redis snapshot store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "lokal:cache:")
}

// NewRedisSnapshotStore creates a redis snapshot store with the given
// configuration.
func NewRedisSnapshotStore(cfg RedisConfig) (*RedisSnapshotStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisSnapshotStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisSnapshotStoreFromClient creates a RedisSnapshotStore from an
// existing redis client.
func NewRedisSnapshotStoreFromClient(client *redis.Client, keyPrefix string) *RedisSnapshotStore {
	if keyPrefix == "" {
		keyPrefix = "lokal:cache:"
	}
	return &RedisSnapshotStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// snapshotKey composes the redis key for a (locale, category) snapshot.
func (s *RedisSnapshotStore) snapshotKey(locale, category string) string {
	if category == "" {
		return s.keyPrefix + locale
	}
	return s.keyPrefix + locale + ":" + category
}

// LoadSnapshot returns the stored snapshot, or (nil, nil) when absent.
func (s *RedisSnapshotStore) LoadSnapshot(ctx context.Context, locale, category string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.snapshotKey(locale, category)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveSnapshot writes a snapshot with a native expiry derived from its
// TTL, so abandoned locales age out of redis on their own.
func (s *RedisSnapshotStore) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	expiry := snap.TTL
	if expiry < 0 {
		expiry = 0
	}
	return s.client.Set(ctx, s.snapshotKey(snap.Locale, snap.Category), data, expiry).Err()
}

// DeleteSnapshots removes the locale-wide snapshot and every
// category-scoped one for the locale.
func (s *RedisSnapshotStore) DeleteSnapshots(ctx context.Context, locale string) error {
	if err := s.client.Del(ctx, s.snapshotKey(locale, "")).Err(); err != nil {
		return err
	}

	// Category-scoped snapshots share the "<locale>:" key prefix
	match := s.keyPrefix + locale + ":*"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the redis connection.
func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}

// Ping tests the redis connection.
func (s *RedisSnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify RedisSnapshotStore implements SnapshotStore
var _ SnapshotStore = (*RedisSnapshotStore)(nil)
