package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/layer-3/cookiecheck/adapters/store"
	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCachedVerifierCachesDefinitiveOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome core.Outcome
		err     error
		cached  bool
	}{
		{"valid", core.Valid(core.Profile{Username: "jdoe"}), nil, true},
		{"invalid", core.Invalid("rejected"), nil, true},
		{"challenge", core.ChallengeRequired("captcha"), nil, false},
		{"error", core.Outcome{}, core.ErrNavigation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubVerifier{outcome: tt.outcome, err: tt.err}
			c := NewCachedVerifier(stub, store.NewMemoryStore(), time.Minute, zap.NewNop())
			req := request("valid_cookie_123", "")

			for i := 0; i < 2; i++ {
				_, _ = c.Verify(context.Background(), req)
			}

			want := int32(2)
			if tt.cached {
				want = 1
			}
			assert.Equal(t, want, stub.calls.Load())
		})
	}
}

func TestCachedVerifierMarksHits(t *testing.T) {
	stub := &stubVerifier{outcome: core.Valid(core.Profile{Username: "jdoe"}).From(core.SourceLocal)}
	c := NewCachedVerifier(stub, store.NewMemoryStore(), time.Minute, zap.NewNop())
	req := request("valid_cookie_123", "")

	first, err := c.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, core.SourceLocal, first.Source)

	second, err := c.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, core.SourceCache, second.Source)
	assert.Equal(t, "jdoe", second.Profile.Username)

	other, err := c.Verify(context.Background(), request("valid_cookie_123", "ajax:1"))
	require.NoError(t, err)
	assert.Equal(t, core.SourceLocal, other.Source, "secondary cookie is part of the key")
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (core.Outcome, bool, error) {
	return core.Outcome{}, false, errors.New("redis down")
}

func (brokenStore) Put(context.Context, string, core.Outcome, time.Duration) error {
	return errors.New("redis down")
}

var _ ports.OutcomeStore = brokenStore{}

func TestCachedVerifierDegradesWhenStoreFails(t *testing.T) {
	stub := &stubVerifier{outcome: core.Invalid("rejected")}
	c := NewCachedVerifier(stub, brokenStore{}, time.Minute, zap.NewNop())

	got, err := c.Verify(context.Background(), request("abc", ""))
	require.NoError(t, err)
	assert.Equal(t, core.StatusInvalid, got.Status)
}

func TestCacheKeyHidesCookie(t *testing.T) {
	key := CacheKey(core.CookiePair{Session: "valid_cookie_123"})
	assert.Len(t, key, 64)
	assert.NotContains(t, key, "valid_cookie_123")
	assert.NotEqual(t, key, CacheKey(core.CookiePair{Session: "valid_cookie_12", Secondary: "3"}))
}
