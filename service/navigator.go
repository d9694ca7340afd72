package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
)

// maxSnapshotFailures bounds consecutive unreadable snapshots before the page is given up
const maxSnapshotFailures = 5

// Navigator opens the authenticated landing page and polls snapshots until
// the classifier reaches a terminal verdict.
type Navigator struct {
	baseURL string
	poll    time.Duration
	settle  int
	log     *zap.Logger
}

// NewNavigator creates a navigator
func NewNavigator(baseURL string, poll time.Duration, settle int, log *zap.Logger) *Navigator {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &Navigator{
		baseURL: strings.TrimRight(baseURL, "/"),
		poll:    poll,
		settle:  settle,
		log:     log,
	}
}

// Classify returns the terminal verdict and the classifier that produced it.
// The only bound is ctx.
func (n *Navigator) Classify(ctx context.Context, bc ports.BrowserContext) (core.Verdict, *core.Classifier, error) {
	cls := core.NewClassifier(n.settle)

	if err := bc.Navigate(ctx, n.baseURL+"/feed/"); err != nil {
		return core.VerdictPending, cls, err
	}

	ticker := time.NewTicker(n.poll)
	defer ticker.Stop()

	failures := 0
	for {
		page, err := bc.Snapshot(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return core.VerdictPending, cls, ctx.Err()
		case err != nil:
			// the document is replaced while a redirect is in flight
			failures++
			if failures >= maxSnapshotFailures {
				return core.VerdictPending, cls, fmt.Errorf("%w: page unreadable: %v", core.ErrNavigation, err)
			}
			n.log.Debug("snapshot failed, retrying", zap.Error(err), zap.Int("failures", failures))
		default:
			failures = 0
			verdict := cls.Observe(page)
			if verdict == core.VerdictBrowserError {
				return verdict, cls, fmt.Errorf("%w: browser error page at %s", core.ErrNavigation, page.URL.Redacted())
			}
			if verdict.Terminal() {
				return verdict, cls, nil
			}
		}

		select {
		case <-ctx.Done():
			return core.VerdictPending, cls, ctx.Err()
		case <-ticker.C:
		}
	}
}
