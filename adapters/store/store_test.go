package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/layer-3/cookiecheck/core"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	valid := core.Valid(core.Profile{Username: "jdoe"})
	require.NoError(t, s.Put(ctx, "k1", valid, time.Minute))

	got, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, valid, got)

	now = now.Add(2 * time.Minute)
	_, ok, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k2", core.Invalid("rejected"), time.Minute))
	assert.Len(t, s.entries, 1, "expired entries are swept on write")
}

func TestMemoryStoreMissing(t *testing.T) {
	_, ok, err := NewMemoryStore().Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
	s := NewRedisStore(fake)

	outcome := core.Valid(core.Profile{Username: "jdoe", FullName: "Jane Doe"}).From(core.SourceLocal)
	require.NoError(t, s.Put(ctx, "abc", outcome, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, fake.ttl["cookiecheck:outcome:abc"])

	got, ok, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, outcome, got)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreErrors(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{data: map[string]string{"cookiecheck:outcome:bad": "{"}, ttl: map[string]time.Duration{}}
	s := NewRedisStore(fake)

	_, _, err := s.Get(ctx, "bad")
	assert.Error(t, err)

	fake.err = errors.New("connection refused")
	assert.Error(t, s.Put(ctx, "abc", core.Invalid(""), time.Minute))
	_, _, err = s.Get(ctx, "abc")
	assert.Error(t, err)
}
