package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/layer-3/cookiecheck/core"
)

// rodContext is one attempt's incognito context and page. Handles are bound
// to the engine, not the attempt, so Close works after the attempt is cancelled.
type rodContext struct {
	incognito    *rod.Browser
	page         *rod.Page
	release      func()
	closeTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

func (c *rodContext) Navigate(ctx context.Context, url string) error {
	if err := c.page.Context(ctx).Navigate(url); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", core.ErrNavigation, err)
	}
	return nil
}

func (c *rodContext) Snapshot(ctx context.Context) (*core.PageState, error) {
	page := c.page.Context(ctx)

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info: %w", err)
	}
	doc, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("page html: %w", err)
	}
	return core.ParsePage(info.URL, doc)
}

// Close closes the page, disposes the incognito context and frees the slot.
// Each CDP call is bounded by closeTimeout; the slot is freed either way.
func (c *rodContext) Close() error {
	c.closeOnce.Do(func() {
		var errs []error
		if c.page != nil {
			if err := c.page.Timeout(c.closeTimeout).Close(); err != nil {
				errs = append(errs, fmt.Errorf("close page: %w", err))
			}
		}
		if c.incognito != nil {
			if err := c.incognito.Timeout(c.closeTimeout).Close(); err != nil {
				errs = append(errs, fmt.Errorf("dispose context: %w", err))
			}
		}
		if c.release != nil {
			c.release()
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}
