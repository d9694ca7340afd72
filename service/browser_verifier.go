package service

import (
	"context"
	"fmt"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
)

const (
	msgRedirectedToLogin = "cookies expired or invalid: redirected to login"
	msgChallenge         = "additional verification required by the site"
)

// BrowserVerifier verifies cookies with a local headless browser
type BrowserVerifier struct {
	browser   ports.Browser
	navigator *Navigator
	extractor *Extractor
	log       *zap.Logger
}

// NewBrowserVerifier creates a browser verifier
func NewBrowserVerifier(browser ports.Browser, navigator *Navigator, extractor *Extractor, log *zap.Logger) *BrowserVerifier {
	return &BrowserVerifier{
		browser:   browser,
		navigator: navigator,
		extractor: extractor,
		log:       log,
	}
}

var _ ports.Verifier = (*BrowserVerifier)(nil)

// Verify acquires a context, classifies the landing page and extracts the
// profile. The context is released on every path before Verify returns.
func (v *BrowserVerifier) Verify(ctx context.Context, req core.Request) (core.Outcome, error) {
	bc, err := v.browser.Acquire(ctx, req.Cookies)
	if err != nil {
		return core.Outcome{}, err
	}
	defer func() {
		if err := bc.Close(); err != nil {
			v.log.Warn("failed to close browser context", zap.Error(err), zap.String("correlation_id", req.CorrelationID))
		}
	}()

	verdict, cls, err := v.navigator.Classify(ctx, bc)
	if err != nil {
		return core.Outcome{}, err
	}

	switch verdict {
	case core.VerdictInvalid:
		return core.Invalid(msgRedirectedToLogin).From(core.SourceLocal), nil
	case core.VerdictChallenge:
		return core.ChallengeRequired(msgChallenge).From(core.SourceLocal), nil
	case core.VerdictAuthenticated:
		profile, err := v.extractor.Extract(ctx, bc, cls.Last(), cls.StructureSeen())
		if err != nil {
			return core.Outcome{}, err
		}
		return core.Valid(profile).From(core.SourceLocal), nil
	default:
		return core.Outcome{}, fmt.Errorf("unexpected verdict %s", verdict)
	}
}
