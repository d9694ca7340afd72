package service

import (
	"context"
	"testing"

	"github.com/layer-3/cookiecheck/core"
	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw  string
		want Mode
		ok   bool
	}{
		{"", ModeAuto, true},
		{"AUTO", ModeAuto, true},
		{"playwright", ModeLocal, true},
		{"local", ModeLocal, true},
		{"api", ModeRemote, true},
		{" remote ", ModeRemote, true},
		{"disabled", ModeDisabled, true},
		{"sometimes", ModeAuto, false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name       string
		requested  Mode
		browser    bool
		remote     bool
		want       Mode
		wantReason bool
	}{
		{"auto prefers browser", ModeAuto, true, true, ModeLocal, false},
		{"auto falls back to remote", ModeAuto, false, true, ModeRemote, false},
		{"auto with nothing", ModeAuto, false, false, ModeDisabled, true},
		{"local available", ModeLocal, true, false, ModeLocal, false},
		{"local unavailable", ModeLocal, false, true, ModeDisabled, true},
		{"remote configured", ModeRemote, true, true, ModeRemote, false},
		{"remote missing", ModeRemote, true, false, ModeDisabled, true},
		{"disabled", ModeDisabled, true, true, ModeDisabled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := ResolveMode(tt.requested, tt.browser, tt.remote)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantReason, reason != "")
		})
	}
}

func TestDisabledVerifier(t *testing.T) {
	_, err := DisabledVerifier{Reason: reasonNeither}.Verify(context.Background(), core.Request{})
	assert.ErrorIs(t, err, core.ErrVerifierDisabled)
	assert.Contains(t, err.Error(), reasonNeither)
}

func TestVerifierHealth(t *testing.T) {
	h := NewVerifierHealth(ModeDisabled, reasonNoBrowser, false, false)
	assert.Equal(t, "cookie_verifier", h.Provider)
	assert.False(t, h.Configured)

	assert.True(t, NewVerifierHealth(ModeRemote, "", false, true).Configured)
	assert.Equal(t, core.SourceRemote, ModeRemote.Source())
}
