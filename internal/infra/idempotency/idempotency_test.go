package idempotency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	s, _, _ := newStoreWithServer(t)
	return s
}

func newStoreWithServer(t *testing.T) (*Store, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb, time.Hour), mr, rdb
}

// flappingKey recreates the key before every SETNX and drops it before every
// GET, as if it kept expiring in between.
type flappingKey struct {
	mr   *miniredis.Miniredis
	key  string
	gets int
}

func (h *flappingKey) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *flappingKey) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		switch cmd.Name() {
		case "setnx", "set":
			_ = h.mr.Set(h.key, pending)
		case "get":
			h.gets++
			h.mr.Del(h.key)
		}
		return next(ctx, cmd)
	}
}

func (h *flappingKey) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestStore_Lifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	resp, err := s.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, resp, "first caller owns the key")

	_, err = s.Begin(ctx, "k1")
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, s.Complete(ctx, "k1", http.StatusCreated, []byte(`{"order":{"id":1}}`)))

	resp, err = s.Begin(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.JSONEq(t, `{"order":{"id":1}}`, string(resp.Body))
}

func TestStore_Release(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Begin(ctx, "k2")
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k2"))

	resp, err := s.Begin(ctx, "k2")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestStore_BeginGivesUpOnFlappingKey(t *testing.T) {
	s, mr, rdb := newStoreWithServer(t)
	hook := &flappingKey{mr: mr, key: redisKey("k3")}
	rdb.AddHook(hook)

	resp, err := s.Begin(context.Background(), "k3")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, beginAttempts, hook.gets)
}

func TestKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, "", Key(r))
	r.Header.Set(Header, "  abc ")
	assert.Equal(t, "abc", Key(r))
}
