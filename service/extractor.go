package service

import (
	"context"
	"strings"
	"time"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
)

// Extractor reads the identity of an authenticated session. It only reads
// pages and never submits anything.
type Extractor struct {
	baseURL  string
	fallback time.Duration
	poll     time.Duration
	log      *zap.Logger
}

// NewExtractor creates an extractor. fallback bounds the extra visit to the
// member's own profile page; zero disables it.
func NewExtractor(baseURL string, fallback, poll time.Duration, log *zap.Logger) *Extractor {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &Extractor{
		baseURL:  strings.TrimRight(baseURL, "/"),
		fallback: fallback,
		poll:     poll,
		log:      log,
	}
}

// Extract returns the profile found on the settled page, completed from the
// profile page when fields are missing. structureSeen reports whether any
// earlier snapshot carried an identity region.
func (e *Extractor) Extract(ctx context.Context, bc ports.BrowserContext, settled *core.PageState, structureSeen bool) (core.Profile, error) {
	profile := core.ExtractProfile(settled, e.baseURL)
	structure := structureSeen || core.HasStructure(settled)

	if !profile.Complete() && e.fallback > 0 {
		fromProfile, seen, err := e.visitOwnProfile(ctx, bc)
		if err != nil {
			if ctx.Err() != nil {
				return core.Profile{}, ctx.Err()
			}
			e.log.Debug("profile page fallback failed", zap.Error(err))
		}
		profile = profile.Merge(fromProfile)
		structure = structure || seen
	}

	if profile.Empty() && !structure {
		return core.Profile{}, core.ErrExtractionAmbiguous
	}
	return profile, nil
}

func (e *Extractor) visitOwnProfile(ctx context.Context, bc ports.BrowserContext) (core.Profile, bool, error) {
	subCtx, cancel := context.WithTimeout(ctx, e.fallback)
	defer cancel()

	if err := bc.Navigate(subCtx, e.baseURL+"/in/me/"); err != nil {
		return core.Profile{}, false, err
	}

	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	var best core.Profile
	var seen bool
	for {
		page, err := bc.Snapshot(subCtx)
		if err == nil {
			if core.LoginWall.Detect(page) || core.CheckpointPath.Detect(page) {
				return best, seen, nil
			}
			best = best.Merge(core.ExtractProfile(page, e.baseURL))
			seen = seen || core.HasStructure(page)
			if best.Complete() {
				return best, seen, nil
			}
		}

		select {
		case <-subCtx.Done():
			return best, seen, subCtx.Err()
		case <-ticker.C:
		}
	}
}
