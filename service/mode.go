package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
)

// Mode selects the verification strategy
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeLocal    Mode = "local"
	ModeRemote   Mode = "remote"
	ModeDisabled Mode = "disabled"
)

const (
	reasonNoBrowser = "no Chromium binary available for local verification"
	reasonNoRemote  = "remote verification endpoint not configured"
	reasonNeither   = "no Chromium binary available and remote verification endpoint not configured"
)

// ParseMode normalizes a configured mode. Legacy names are accepted.
func ParseMode(raw string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return ModeAuto, true
	case "local", "playwright", "browser":
		return ModeLocal, true
	case "remote", "api":
		return ModeRemote, true
	case "disabled", "off", "none":
		return ModeDisabled, true
	default:
		return ModeAuto, false
	}
}

// ResolveMode picks the effective mode and, when verification is disabled, the reason
func ResolveMode(requested Mode, browserAvailable, remoteConfigured bool) (Mode, string) {
	switch requested {
	case ModeLocal:
		if browserAvailable {
			return ModeLocal, ""
		}
		return ModeDisabled, reasonNoBrowser
	case ModeRemote:
		if remoteConfigured {
			return ModeRemote, ""
		}
		return ModeDisabled, reasonNoRemote
	case ModeDisabled:
		return ModeDisabled, "verification disabled by configuration"
	default:
		switch {
		case browserAvailable:
			return ModeLocal, ""
		case remoteConfigured:
			return ModeRemote, ""
		default:
			return ModeDisabled, reasonNeither
		}
	}
}

// Source maps a mode to the audit source of its outcomes
func (m Mode) Source() core.Source {
	switch m {
	case ModeLocal:
		return core.SourceLocal
	case ModeRemote:
		return core.SourceRemote
	default:
		return core.SourceDisabled
	}
}

// DisabledVerifier rejects every request with the reason verification is off
type DisabledVerifier struct {
	Reason string
}

var _ ports.Verifier = DisabledVerifier{}

func (d DisabledVerifier) Verify(context.Context, core.Request) (core.Outcome, error) {
	if d.Reason == "" {
		return core.Outcome{}, core.ErrVerifierDisabled
	}
	return core.Outcome{}, fmt.Errorf("%w: %s", core.ErrVerifierDisabled, d.Reason)
}

// VerifierHealth is the static description of the configured strategy
type VerifierHealth struct {
	Provider         string `json:"provider"`
	Configured       bool   `json:"configured"`
	Mode             Mode   `json:"mode"`
	Reason           string `json:"reason,omitempty"`
	BrowserAvailable bool   `json:"browser_available"`
	RemoteConfigured bool   `json:"api_configured"`
}

// NewVerifierHealth describes a resolved mode
func NewVerifierHealth(mode Mode, reason string, browserAvailable, remoteConfigured bool) VerifierHealth {
	return VerifierHealth{
		Provider:         "cookie_verifier",
		Configured:       mode != ModeDisabled,
		Mode:             mode,
		Reason:           reason,
		BrowserAvailable: browserAvailable,
		RemoteConfigured: remoteConfigured,
	}
}
