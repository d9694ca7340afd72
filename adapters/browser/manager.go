// Package browser provides isolated, cookie-seeded Chromium contexts backed by go-rod.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/internal/metrics"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	livenessTimeout = 3 * time.Second
	closeTimeout    = 5 * time.Second
)

var defaultFlags = []string{
	"no-sandbox",
	"disable-blink-features=AutomationControlled",
	"disable-dev-shm-usage",
	"disable-gpu",
	"disable-extensions",
	"no-first-run",
	"no-default-browser-check",
	"disable-background-networking",
}

// Config tunes the shared engine
type Config struct {
	Bin           string
	DataDir       string
	Headless      bool
	MaxConcurrent int64
	Flags         []string
	BaseURL       string
}

type launchResult struct {
	done    chan struct{}
	browser *rod.Browser
	err     error
}

// Manager owns one lazily started Chromium process and hands out one
// incognito context per attempt.
type Manager struct {
	cfg Config
	log *zap.Logger
	sem *semaphore.Weighted

	engineCtx    context.Context
	cancelEngine context.CancelFunc

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	starting *launchResult
}

// NewManager creates a manager. No process is started until the first Acquire.
func NewManager(cfg Config, log *zap.Logger) *Manager {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.DataDir == "" {
		cfg.DataDir = os.TempDir()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:          cfg,
		log:          log.Named("browser"),
		sem:          semaphore.NewWeighted(cfg.MaxConcurrent),
		engineCtx:    ctx,
		cancelEngine: cancel,
	}
}

var _ ports.Browser = (*Manager)(nil)

// Available reports whether a Chromium binary can be found
func (m *Manager) Available() bool {
	if m.cfg.Bin != "" {
		_, err := os.Stat(m.cfg.Bin)
		return err == nil
	}
	_, has := launcher.LookPath()
	return has
}

// Acquire opens a fresh incognito context with the cookies injected and the
// persona applied. The returned context must be closed by the caller.
func (m *Manager) Acquire(ctx context.Context, cookies core.CookiePair) (ports.BrowserContext, error) {
	params, err := CookieParams(m.cfg.BaseURL, cookies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrLaunch, err)
	}

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	metrics.BrowserContextsActive.Inc()

	bc := &rodContext{closeTimeout: closeTimeout, release: func() {
		metrics.BrowserContextsActive.Dec()
		m.sem.Release(1)
	}}

	fail := func(err error) (ports.BrowserContext, error) {
		_ = bc.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	browser, err := m.engine(ctx)
	if err != nil {
		return fail(err)
	}

	bc.incognito, err = browser.Incognito()
	if err != nil {
		return fail(fmt.Errorf("%w: incognito context: %v", core.ErrLaunch, err))
	}

	if err := bc.incognito.SetCookies(params); err != nil {
		return fail(fmt.Errorf("%w: set cookies: %v", core.ErrLaunch, err))
	}

	bc.page, err = bc.incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fail(fmt.Errorf("%w: create page: %v", core.ErrLaunch, err))
	}

	if err := m.applyPersona(bc.page.Context(ctx), RandomPersona()); err != nil {
		return fail(fmt.Errorf("%w: apply persona: %v", core.ErrLaunch, err))
	}

	return bc, nil
}

func (m *Manager) applyPersona(page *rod.Page, p Persona) error {
	if err := page.SetUserAgent(p.userAgentOverride()); err != nil {
		return err
	}
	if _, err := page.SetExtraHeaders(extraHeaders()); err != nil {
		return err
	}
	if _, err := page.EvalOnNewDocument(stealthScript); err != nil {
		return err
	}

	// Cosmetic overrides only warn
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		m.log.Warn("failed to set viewport", zap.Error(err))
	}
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: timezone}).Call(page); err != nil {
		m.log.Warn("failed to set timezone", zap.Error(err))
	}
	return nil
}

// engine returns the shared browser, starting or restarting it when needed.
// Waiting honours ctx; the launch itself belongs to the manager.
func (m *Manager) engine(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	current := m.browser
	m.mu.Unlock()

	if current != nil {
		if m.alive(ctx, current) {
			return current, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.mu.Lock()
		if m.browser == current {
			m.log.Warn("stale browser connection detected, relaunching")
			m.closeEngineLocked()
		}
		m.mu.Unlock()
	}

	m.mu.Lock()
	if b := m.browser; b != nil {
		m.mu.Unlock()
		return b, nil
	}
	if m.starting == nil {
		m.starting = &launchResult{done: make(chan struct{})}
		go m.launch(m.starting)
	}
	pending := m.starting
	m.mu.Unlock()

	select {
	case <-pending.done:
		return pending.browser, pending.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// alive checks the CDP connection without holding the manager lock
func (m *Manager) alive(ctx context.Context, b *rod.Browser) bool {
	check := b.Context(ctx).Timeout(livenessTimeout)
	defer check.CancelTimeout()

	_, err := check.Version()
	return err == nil
}

func (m *Manager) launch(res *launchResult) {
	browser, l, err := m.startEngine()

	m.mu.Lock()
	if err == nil && m.engineCtx.Err() != nil {
		// shut down while launching
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		err = fmt.Errorf("%w: manager shut down", core.ErrLaunch)
	}
	if err == nil {
		m.browser, m.launcher = browser, l
	}
	res.browser, res.err = browser, err
	m.starting = nil
	m.mu.Unlock()

	close(res.done)
}

func (m *Manager) startEngine() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Context(m.engineCtx).
		Headless(m.cfg.Headless).
		UserDataDir(filepath.Join(m.cfg.DataDir, "cookiecheck-"+uuid.NewString()))
	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}
	for _, raw := range append(append([]string{}, defaultFlags...), m.cfg.Flags...) {
		name, val, hasVal := strings.Cut(strings.TrimLeft(raw, "-"), "=")
		if hasVal {
			l = l.Set(flags.Flag(name), val)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		// no process was started, so Cleanup would wait forever for its exit
		_ = os.RemoveAll(l.Get(flags.UserDataDir))
		return nil, nil, fmt.Errorf("%w: launch chrome: %v", core.ErrLaunch, err)
	}

	browser := rod.New().ControlURL(controlURL).Context(m.engineCtx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, nil, fmt.Errorf("%w: connect to chrome: %v", core.ErrLaunch, err)
	}

	metrics.BrowserLaunches.Inc()
	m.log.Info("browser engine started", zap.String("control_url", controlURL))
	return browser, l, nil
}

func (m *Manager) closeEngineLocked() {
	if m.browser != nil {
		_ = m.browser.Timeout(closeTimeout).Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.launcher.Kill()
		m.launcher.Cleanup()
		m.launcher = nil
	}
}

// Shutdown closes the engine. Contexts still held by attempts fail on their next call.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancelEngine()

	m.mu.Lock()
	pending := m.starting
	m.closeEngineLocked()
	m.mu.Unlock()

	if pending == nil {
		return nil
	}
	select {
	case <-pending.done:
		return nil
	case <-ctx.Done():
		return errors.Join(ctx.Err(), errors.New("browser launch still in progress"))
	}
}
