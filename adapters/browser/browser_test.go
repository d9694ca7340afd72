package browser

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/proto"
	"github.com/layer-3/cookiecheck/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCookieParams(t *testing.T) {
	params, err := CookieParams("https://www.linkedin.com", core.CookiePair{Session: " AQEDAR ", Secondary: `"ajax:123"`})
	require.NoError(t, err)
	require.Len(t, params, 2)

	liAt := params[0]
	assert.Equal(t, "li_at", liAt.Name)
	assert.Equal(t, "AQEDAR", liAt.Value)
	assert.Equal(t, ".linkedin.com", liAt.Domain)
	assert.Equal(t, "/", liAt.Path)
	assert.True(t, liAt.Secure)
	assert.True(t, liAt.HTTPOnly)
	assert.Equal(t, proto.NetworkCookieSameSiteNone, liAt.SameSite)

	jsession := params[1]
	assert.Equal(t, "JSESSIONID", jsession.Name)
	assert.Equal(t, `"ajax:123"`, jsession.Value)
	assert.Equal(t, ".www.linkedin.com", jsession.Domain)
}

func TestCookieParamsWithoutSecondary(t *testing.T) {
	params, err := CookieParams("https://www.linkedin.com/", core.CookiePair{Session: "AQEDAR"})
	require.NoError(t, err)
	assert.Len(t, params, 1)
}

func TestCookieParamsBadBase(t *testing.T) {
	_, err := CookieParams("::not a url", core.CookiePair{Session: "AQEDAR"})
	assert.Error(t, err)
}

func TestNavigatorPlatform(t *testing.T) {
	assert.Equal(t, "MacIntel", NewPersona(userAgents[0]).Platform)
	assert.Equal(t, "Win32", NewPersona(userAgents[1]).Platform)
	assert.Equal(t, "Linux x86_64", NewPersona(userAgents[4]).Platform)
	assert.Empty(t, NewPersona("curl/8.4.0").Platform)

	p := RandomPersona()
	assert.Contains(t, userAgents, p.UserAgent)
	assert.Equal(t, acceptLanguage, p.userAgentOverride().AcceptLanguage)
}

func TestAvailableWithConfiguredBin(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "chromium")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	assert.True(t, NewManager(Config{Bin: bin}, zap.NewNop()).Available())
	assert.False(t, NewManager(Config{Bin: bin + "-missing"}, zap.NewNop()).Available())
}

func TestRodContextCloseReleasesOnce(t *testing.T) {
	released := 0
	c := &rodContext{release: func() { released++ }}

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, released)
}

func TestAcquireRejectsBadBaseURL(t *testing.T) {
	m := NewManager(Config{BaseURL: "::bad"}, zap.NewNop())
	_, err := m.Acquire(context.Background(), core.CookiePair{Session: "AQEDAR"})
	assert.ErrorIs(t, err, core.ErrLaunch)
}

func TestAcquireHonoursCancelledContext(t *testing.T) {
	m := NewManager(Config{BaseURL: "https://www.linkedin.com", MaxConcurrent: 1}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Acquire(ctx, core.CookiePair{Session: "AQEDAR"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAcquireLaunchFailureReleasesSlot(t *testing.T) {
	notExecutable := filepath.Join(t.TempDir(), "chromium")
	require.NoError(t, os.WriteFile(notExecutable, []byte("not a browser"), 0o644))

	tests := []struct {
		name string
		bin  string
	}{
		{"missing binary", filepath.Join(t.TempDir(), "no-such-chrome")},
		{"binary not executable", notExecutable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(Config{
				BaseURL:       "https://www.linkedin.com",
				Bin:           tt.bin,
				Headless:      true,
				MaxConcurrent: 1,
				DataDir:       t.TempDir(),
			}, zap.NewNop())

			for i := 0; i < 2; i++ {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				start := time.Now()
				_, err := m.Acquire(ctx, core.CookiePair{Session: "AQEDAR"})
				cancel()

				assert.ErrorIs(t, err, core.ErrLaunch, "attempt %d", i)
				assert.NotErrorIs(t, err, context.DeadlineExceeded, "attempt %d", i)
				assert.Less(t, time.Since(start), 5*time.Second, "attempt %d", i)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			assert.NoError(t, m.Shutdown(ctx))
		})
	}
}

// stuckCDP never answers anything except Browser.close, like a wedged Chromium
type stuckCDP struct{}

func (stuckCDP) Event() <-chan *cdp.Event { return nil }

func (stuckCDP) Call(ctx context.Context, sessionID, method string, params interface{}) ([]byte, error) {
	if method == (proto.BrowserClose{}).ProtoReq() {
		return nil, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAcquireNotBlockedByWedgedEngine(t *testing.T) {
	m := NewManager(Config{BaseURL: "https://www.linkedin.com", MaxConcurrent: 2}, zap.NewNop())
	m.browser = rod.New().Client(stuckCDP{})
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := time.Now()
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			_, errs[i] = m.Acquire(ctx, core.CookiePair{Session: "AQEDAR"})
		}()
	}
	wg.Wait()

	assert.Less(t, time.Since(start), livenessTimeout)
	for _, err := range errs {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}

func TestRodContextCloseIsBounded(t *testing.T) {
	incognito := rod.New().Client(stuckCDP{})
	incognito.BrowserContextID = "ctx-1"

	released := 0
	c := &rodContext{
		incognito:    incognito,
		closeTimeout: 50 * time.Millisecond,
		release:      func() { released++ },
	}

	start := time.Now()
	err := c.Close()

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, released)
}
