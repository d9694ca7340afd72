package core

// Verdict is the classifier state after an observation
type Verdict int

const (
	VerdictPending Verdict = iota
	VerdictAuthenticated
	VerdictInvalid
	VerdictChallenge
	VerdictBrowserError
)

func (v Verdict) String() string {
	switch v {
	case VerdictAuthenticated:
		return "authenticated"
	case VerdictInvalid:
		return "invalid"
	case VerdictChallenge:
		return "challenge"
	case VerdictBrowserError:
		return "browser_error"
	default:
		return "pending"
	}
}

// Terminal reports whether no further observation can change the verdict
func (v Verdict) Terminal() bool {
	return v != VerdictPending
}

// Classifier folds the snapshots of one navigation into a verdict.
// A challenge marker seen at any point takes precedence over an authenticated page.
// It is not safe for concurrent use; each attempt owns its own.
type Classifier struct {
	settle int

	challengeSeen bool
	stableURL     string
	stableCount   int
	structureSeen bool
	last          *PageState
}

// NewClassifier creates a classifier. An authenticated path without the
// navigation chrome is accepted after settle consecutive snapshots on the same URL.
func NewClassifier(settle int) *Classifier {
	if settle < 1 {
		settle = 1
	}
	return &Classifier{settle: settle}
}

// Observe records a snapshot and returns the current verdict
func (c *Classifier) Observe(p *PageState) Verdict {
	if p == nil {
		return VerdictPending
	}
	c.last = p

	if ChallengeMarker.Detect(p) {
		c.challengeSeen = true
	}
	if ProfileStructure.Detect(p) {
		c.structureSeen = true
	}

	if BrowserErrorPage.Detect(p) {
		return VerdictBrowserError
	}

	if LoginWall.Detect(p) || CheckpointPath.Detect(p) {
		if c.challengeSeen {
			return VerdictChallenge
		}
		return VerdictInvalid
	}

	if !AuthenticatedPath.Detect(p) {
		c.stableURL, c.stableCount = "", 0
		if c.challengeSeen && ChallengeMarker.Detect(p) {
			return VerdictChallenge
		}
		return VerdictPending
	}

	key := p.URL.String()
	if key == c.stableURL {
		c.stableCount++
	} else {
		c.stableURL, c.stableCount = key, 1
	}

	if !AuthenticatedChrome.Detect(p) && c.stableCount < c.settle {
		return VerdictPending
	}
	if c.challengeSeen {
		return VerdictChallenge
	}
	return VerdictAuthenticated
}

// ChallengeSeen reports whether any snapshot carried a challenge marker
func (c *Classifier) ChallengeSeen() bool {
	return c.challengeSeen
}

// StructureSeen reports whether any snapshot carried an identity region
func (c *Classifier) StructureSeen() bool {
	return c.structureSeen
}

// Last returns the most recent snapshot
func (c *Classifier) Last() *PageState {
	return c.last
}
