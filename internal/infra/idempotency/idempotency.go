// Package idempotency remembers the response to a request carrying an
// Idempotency-Key so a retried request gets the same answer.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

const pending = "pending"

// ErrInFlight means another request with the same key has not finished yet.
var ErrInFlight = errors.New("request with this idempotency key is still in progress")

// Key returns the trimmed header value, "" when absent.
func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

type Response struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func redisKey(key string) string { return "idem:" + key }

// beginAttempts bounds retries when the key expires between SETNX and GET.
const beginAttempts = 2

// Begin reserves key. It returns (nil, nil) when the caller now owns the key,
// the stored response when the key already completed, or ErrInFlight.
func (s *Store) Begin(ctx context.Context, key string) (*Response, error) {
	for attempt := 0; attempt < beginAttempts; attempt++ {
		ok, err := s.rdb.SetNX(ctx, redisKey(key), pending, s.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, nil
		}

		val, err := s.rdb.Get(ctx, redisKey(key)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if val == pending {
			return nil, ErrInFlight
		}
		var resp Response
		if err := json.Unmarshal([]byte(val), &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}
	return nil, ErrInFlight
}

// Complete stores the final response for key.
func (s *Store) Complete(ctx context.Context, key string, status int, body []byte) error {
	data, err := json.Marshal(Response{Status: status, Body: body})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisKey(key), data, s.ttl).Err()
}

// Release forgets key so the request can be retried, used when the request
// failed before producing a response worth replaying.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, redisKey(key)).Err()
}
