package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultStoreKey is the namespaced key the full notification list lives
// under. The list is always written whole; there is no delta persistence.
const DefaultStoreKey = "donation-api:notifications"

// Store persists the notification history as one atomic document.
type Store interface {
	Load(ctx context.Context) ([]Notification, error)
	Save(ctx context.Context, items []Notification) error
}

// RedisStore keeps the serialized notification list in a single Redis key,
// shared across processes.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store under DefaultStoreKey.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: DefaultStoreKey}
}

// Load reads the persisted list. A missing key is an empty history, not an
// error.
func (s *RedisStore) Load(ctx context.Context) ([]Notification, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	var items []Notification
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return items, nil
}

// Save writes the full list, replacing whatever was stored.
func (s *RedisStore) Save(ctx context.Context, items []Notification) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests. It still round-trips through JSON so serialization behaves the same
// as the Redis store.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the stored document, or returns an empty history.
func (s *MemoryStore) Load(ctx context.Context) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw == nil {
		return nil, nil
	}
	var items []Notification
	if err := json.Unmarshal(s.raw, &items); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return items, nil
}

// Save replaces the stored document.
func (s *MemoryStore) Save(ctx context.Context, items []Notification) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
	return nil
}
