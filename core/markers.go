package core

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker is a named detector over a page snapshot
type Marker struct {
	Name   string
	Detect func(p *PageState) bool
}

var authenticatedPaths = []string{"/feed", "/in/", "/mynetwork", "/messaging", "/notifications", "/jobs"}

var loginPaths = []string{"/login", "/uas/login", "/authwall", "/signup", "/uas/authenticate"}

var challengeFrameHosts = []string{"captcha", "arkoselabs", "funcaptcha", "recaptcha"}

var (
	globalNav = Any(
		All(Tag(atom.Nav), Class("global-nav")),
		ID("global-nav"),
		Class("global-nav__me"),
	)

	loginForm = Any(
		Attr("name", "session_key"),
		Attr("name", "session_password"),
		All(Tag(atom.Form), AttrContains("action", "login-submit")),
	)

	challengeElement = Any(
		ID("captcha-internal"),
		ID("captchaInternal"),
		All(Tag(atom.Iframe), func(n *html.Node) bool {
			src, _ := attr(n, "src")
			src = strings.ToLower(src)
			for _, h := range challengeFrameHosts {
				if strings.Contains(src, h) {
					return true
				}
			}
			return false
		}),
		All(Tag(atom.Input), Attr("name", "pin")),
		All(Tag(atom.Form), AttrContains("action", "checkpoint/challenge")),
		All(Tag(atom.Form), AttrContains("id", "two-step-challenge")),
	)

	browserErrorElement = Any(
		ID("main-frame-error"),
		All(Tag(atom.Body), Class("neterror")),
	)
)

// AuthenticatedPath matches URLs only reachable with a session
var AuthenticatedPath = Marker{Name: "authenticated_path", Detect: func(p *PageState) bool {
	path := p.Path()
	if path == "/in/me" || path == "/in/me/" {
		return false
	}
	for _, prefix := range authenticatedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}}

// AuthenticatedChrome matches the global navigation bar of a signed-in page
var AuthenticatedChrome = Marker{Name: "authenticated_chrome", Detect: func(p *PageState) bool {
	return p.Has(globalNav)
}}

// LoginWall matches login pages and the sign-in wall
var LoginWall = Marker{Name: "login_wall", Detect: func(p *PageState) bool {
	path := p.Path()
	for _, prefix := range loginPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return !p.Has(globalNav) && p.Has(loginForm)
}}

// CheckpointPath matches security checkpoint URLs
var CheckpointPath = Marker{Name: "checkpoint_path", Detect: func(p *PageState) bool {
	return strings.HasPrefix(p.Path(), "/checkpoint")
}}

// ChallengeMarker matches verification prompts: captcha frames, PIN entry and challenge forms
var ChallengeMarker = Marker{Name: "challenge", Detect: func(p *PageState) bool {
	if strings.HasPrefix(p.Path(), "/checkpoint/challenge") {
		return true
	}
	return p.Has(challengeElement)
}}

// BrowserErrorPage matches the browser's own network error page
var BrowserErrorPage = Marker{Name: "browser_error", Detect: func(p *PageState) bool {
	if p.URL != nil && strings.HasPrefix(p.URL.Scheme, "chrome-error") {
		return true
	}
	return p.Has(browserErrorElement)
}}

// ProfileStructure matches pages that carry the identity regions the extractor reads
var ProfileStructure = Marker{Name: "profile_structure", Detect: func(p *PageState) bool {
	return p.Has(identityRegion) || p.Has(profileHeading)
}}
