package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a verification session is unknown or expired
var ErrSessionNotFound = errors.New("verification session not found")

// VerificationStore keeps phone verification sessions. Sessions are never
// written to the relational database.
type VerificationStore interface {
	Get(ctx context.Context, id string) (*PhoneVerification, error)
	Save(ctx context.Context, v *PhoneVerification, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   PhoneVerification
	expiresAt time.Time
}

// MemoryVerificationStore is a process-local store for single instance deployments
type MemoryVerificationStore struct {
	mu    sync.RWMutex
	store map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryVerificationStore creates an empty in-memory store
func NewMemoryVerificationStore() *MemoryVerificationStore {
	return &MemoryVerificationStore{
		store: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (s *MemoryVerificationStore) Get(ctx context.Context, id string) (*PhoneVerification, error) {
	s.mu.RLock()
	entry, ok := s.store[id]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *MemoryVerificationStore) Save(ctx context.Context, v *PhoneVerification, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, v.ID)
	}
	s.mu.Lock()
	s.store[v.ID] = memoryEntry{session: *v, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryVerificationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.store, id)
	s.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and returns how many were dropped
func (s *MemoryVerificationStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.store {
		if now.After(entry.expiresAt) {
			delete(s.store, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done
func (s *MemoryVerificationStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

const redisSessionPrefix = "phone_verification:"

// RedisVerificationStore shares sessions between instances; expiry is left to Redis TTLs
type RedisVerificationStore struct {
	client *redis.Client
}

// NewRedisVerificationStore wraps an existing client
func NewRedisVerificationStore(client *redis.Client) *RedisVerificationStore {
	return &RedisVerificationStore{client: client}
}

// NewRedisVerificationStoreFromURL parses a redis:// URL and pings the server
func NewRedisVerificationStoreFromURL(ctx context.Context, redisURL string) (*RedisVerificationStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisVerificationStore(client), nil
}

func (s *RedisVerificationStore) Get(ctx context.Context, id string) (*PhoneVerification, error) {
	raw, err := s.client.Get(ctx, redisSessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verification session: %w", err)
	}

	var v PhoneVerification
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode verification session: %w", err)
	}
	return &v, nil
}

func (s *RedisVerificationStore) Save(ctx context.Context, v *PhoneVerification, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, v.ID)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode verification session: %w", err)
	}
	if err := s.client.Set(ctx, redisSessionPrefix+v.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save verification session: %w", err)
	}
	return nil
}

func (s *RedisVerificationStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisSessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete verification session: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisVerificationStore) Close() error {
	return s.client.Close()
}
