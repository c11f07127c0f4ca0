package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lakpay/mpgs-hosted-checkout/internal/redis"
)

const keyPrefix = "checkout:session:"

// RedisStore persists checkout sessions in Redis with the configured TTL, so
// the successIndicator survives process restarts between initiation and the
// completion redirect.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store with the given session TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(orderID string) string {
	return keyPrefix + orderID
}

// Put stores a session, replacing any previous one for the same order.
func (r *RedisStore) Put(ctx context.Context, s *CheckoutSession) error {
	if s == nil || s.OrderID == "" {
		return errors.New("session with order ID is required")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	return r.client.Client().Set(ctx, sessionKey(s.OrderID), data, r.ttl).Err()
}

// Get returns the session for an order, or ErrNotFound.
func (r *RedisStore) Get(ctx context.Context, orderID string) (*CheckoutSession, error) {
	data, err := r.client.Client().Get(ctx, sessionKey(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read checkout session: %w", err)
	}

	s := &CheckoutSession{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return s, nil
}

// Delete removes the session for an order.
func (r *RedisStore) Delete(ctx context.Context, orderID string) error {
	return r.client.Client().Del(ctx, sessionKey(orderID)).Err()
}
