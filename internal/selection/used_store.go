package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// UsedQuestionStore remembers which bank questions each user has already seen.
type UsedQuestionStore interface {
	Used(ctx context.Context, userID string) ([]string, error)
	MarkUsed(ctx context.Context, userID string, ids []string) error
	Reset(ctx context.Context, userID string) error
}

// MemoryStore keeps history in process memory; it is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	used map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{used: map[string][]string{}}
}

func (m *MemoryStore) Used(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.used[userID]...), nil
}

func (m *MemoryStore) MarkUsed(_ context.Context, userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool, len(m.used[userID]))
	for _, id := range m.used[userID] {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			m.used[userID] = append(m.used[userID], id)
		}
	}
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.used, userID)
	return nil
}

// RedisStore shares history between instances as one set per user.
// Each write refreshes the key's TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "iqscalar:used:", ttl: ttl}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisStore) Used(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read used questions: %w", err)
	}
	return ids, nil
}

func (r *RedisStore) MarkUsed(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	key := r.key(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, members...)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark used questions: %w", err)
	}
	return nil
}

func (r *RedisStore) Reset(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to reset used questions: %w", err)
	}
	return nil
}
