package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
	"github.com/stretchr/testify/require"
)

const testBase = "https://www.linkedin.com"

// snapshot is one scripted page: the URL the browser shows and a fixture file
type snapshot struct {
	url     string
	fixture string
}

// fakeBrowser hands out scripted contexts and counts acquisitions and releases
type fakeBrowser struct {
	t *testing.T

	routes map[string][]snapshot

	acquireErr  error
	navigateErr error
	snapshotErr error
	closeErr    error
	block       bool

	// flakySnapshots fails that many snapshots before the script resumes
	flakySnapshots atomic.Int32

	acquired atomic.Int32
	released atomic.Int32
	cookies  []core.CookiePair
	mu       sync.Mutex
}

func newFakeBrowser(t *testing.T, routes map[string][]snapshot) *fakeBrowser {
	return &fakeBrowser{t: t, routes: routes}
}

func (b *fakeBrowser) Acquire(ctx context.Context, cookies core.CookiePair) (ports.BrowserContext, error) {
	if b.acquireErr != nil {
		return nil, b.acquireErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.cookies = append(b.cookies, cookies)
	b.mu.Unlock()
	b.acquired.Add(1)
	return &fakeContext{browser: b}, nil
}

func (b *fakeBrowser) balanced() bool {
	return b.acquired.Load() == b.released.Load()
}

type fakeContext struct {
	browser *fakeBrowser
	script  []snapshot
	pos     int
	closed  atomic.Bool
}

func (c *fakeContext) Navigate(ctx context.Context, url string) error {
	if c.browser.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if c.browser.navigateErr != nil {
		return c.browser.navigateErr
	}
	script, ok := c.browser.routes[url]
	if !ok {
		return fmt.Errorf("%w: net::ERR_NAME_NOT_RESOLVED", core.ErrNavigation)
	}
	c.script, c.pos = script, 0
	return nil
}

func (c *fakeContext) Snapshot(ctx context.Context) (*core.PageState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.browser.snapshotErr != nil {
		return nil, c.browser.snapshotErr
	}
	if c.browser.flakySnapshots.Add(-1) >= 0 {
		return nil, errors.New("execution context was destroyed")
	}
	if len(c.script) == 0 {
		return core.ParsePage("about:blank", "<html></html>")
	}
	s := c.script[c.pos]
	if c.pos < len(c.script)-1 {
		c.pos++
	}
	return loadSnapshot(c.browser.t, s), nil
}

func (c *fakeContext) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.browser.released.Add(1)
	}
	return c.browser.closeErr
}

func loadSnapshot(t *testing.T, s snapshot) *core.PageState {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("..", "core", "testdata", s.fixture))
	require.NoError(t, err)
	p, err := core.ParsePage(s.url, string(body))
	require.NoError(t, err)
	return p
}

// recordingAudit captures audit events
type recordingAudit struct {
	mu      sync.Mutex
	events  []core.AuditEvent
	err     error
	explode bool
}

func (a *recordingAudit) Record(ctx context.Context, event core.AuditEvent) error {
	a.mu.Lock()
	a.events = append(a.events, event)
	a.mu.Unlock()
	if a.explode {
		panic("audit exploded")
	}
	return a.err
}

func (a *recordingAudit) all() []core.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]core.AuditEvent(nil), a.events...)
}

// stubVerifier returns a fixed answer and counts calls
type stubVerifier struct {
	outcome core.Outcome
	err     error
	calls   atomic.Int32
	panics  bool
}

func (s *stubVerifier) Verify(ctx context.Context, req core.Request) (core.Outcome, error) {
	s.calls.Add(1)
	if s.panics {
		panic("strategy exploded")
	}
	return s.outcome, s.err
}
