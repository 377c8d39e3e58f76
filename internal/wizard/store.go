package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionTTL bounds how long an untouched wizard session is kept.
const SessionTTL = 24 * time.Hour

var ErrSessionNotFound = errors.New("wizard session not found")

// Store persists wizard sessions between requests.
type Store interface {
	Save(ctx context.Context, w *Wizard) error
	Load(ctx context.Context, id string) (*Wizard, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps each session as a JSON blob under wizard:{id}.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a RedisStore instance
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: SessionTTL}
}

func sessionKey(id string) string {
	return fmt.Sprintf("wizard:%s", id)
}

func (s *RedisStore) Save(ctx context.Context, w *Wizard) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(w.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Wizard, error) {
	if s == nil || s.rdb == nil {
		return nil, fmt.Errorf("Redis client not available")
	}
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}
	var w Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard session: %w", err)
	}
	return &w, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

// MemoryStore is used when Redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, w *Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[w.ID] = data
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Wizard, error) {
	s.mu.Lock()
	data, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	var w Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard session: %w", err)
	}
	return &w, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
