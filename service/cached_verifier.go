package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/internal/metrics"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
)

// CachedVerifier answers repeated checks of the same cookie pair from a
// store. Only definitive outcomes are cached.
type CachedVerifier struct {
	next  ports.Verifier
	store ports.OutcomeStore
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedVerifier wraps next with an outcome cache
func NewCachedVerifier(next ports.Verifier, store ports.OutcomeStore, ttl time.Duration, log *zap.Logger) *CachedVerifier {
	return &CachedVerifier{next: next, store: store, ttl: ttl, log: log}
}

var _ ports.Verifier = (*CachedVerifier)(nil)

func (c *CachedVerifier) Verify(ctx context.Context, req core.Request) (core.Outcome, error) {
	key := CacheKey(req.Cookies)

	cached, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("outcome cache read failed", zap.Error(err))
	} else if ok {
		metrics.CacheHits.Inc()
		return cached.From(core.SourceCache), nil
	}

	outcome, err := c.next.Verify(ctx, req)
	if err != nil {
		return outcome, err
	}

	if outcome.Status == core.StatusValid || outcome.Status == core.StatusInvalid {
		if err := c.store.Put(ctx, key, outcome, c.ttl); err != nil {
			c.log.Warn("outcome cache write failed", zap.Error(err))
		}
	}
	return outcome, nil
}

// CacheKey derives the store key for a cookie pair. Raw cookie values are never stored.
func CacheKey(cookies core.CookiePair) string {
	h := sha256.New()
	h.Write([]byte(cookies.Session))
	h.Write([]byte{0})
	h.Write([]byte(cookies.Secondary))
	return hex.EncodeToString(h.Sum(nil))
}
