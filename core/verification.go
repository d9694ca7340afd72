package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SessionCookieName   = "li_at"
	SecondaryCookieName = "JSESSIONID"

	maxCookieLength = 4096
)

// Status is the verdict reported for a verification attempt
type Status string

const (
	StatusValid             Status = "valid"
	StatusInvalid           Status = "invalid"
	StatusChallengeRequired Status = "challenge_required"
	StatusError             Status = "error"
)

// CookiePair holds the session cookies supplied by the caller
type CookiePair struct {
	Session   string // li_at, required
	Secondary string // JSESSIONID, optional
}

// Normalize returns the pair with surrounding whitespace removed
func (c CookiePair) Normalize() CookiePair {
	return CookiePair{
		Session:   strings.TrimSpace(c.Session),
		Secondary: strings.TrimSpace(c.Secondary),
	}
}

// Validate checks that both values are plausible cookie values
func (c CookiePair) Validate() error {
	n := c.Normalize()
	if n.Session == "" {
		return ErrMissingSessionCookie
	}
	if !validCookieValue(n.Session) {
		return ErrMalformedSessionCookie
	}
	if n.Secondary != "" && !validCookieValue(n.Secondary) {
		return ErrMalformedSecondaryCookie
	}
	return nil
}

// validCookieValue implements the cookie-value grammar of RFC 6265 section 4.1.1.
func validCookieValue(v string) bool {
	if len(v) > maxCookieLength {
		return false
	}
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		b := v[i]
		if b < 0x21 || b > 0x7e || b == '"' || b == ',' || b == ';' || b == '\\' {
			return false
		}
	}
	return true
}

// Profile is the identity extracted for a valid session
type Profile struct {
	Username   string `json:"username,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// Empty reports whether no field was extracted
func (p Profile) Empty() bool {
	return p.Username == "" && p.FullName == "" && p.ProfileURL == ""
}

// Merge fills the empty fields of p from other
func (p Profile) Merge(other Profile) Profile {
	if p.Username == "" {
		p.Username = other.Username
	}
	if p.FullName == "" {
		p.FullName = other.FullName
	}
	if p.ProfileURL == "" {
		p.ProfileURL = other.ProfileURL
	}
	return p
}

// Complete reports whether username and name are both known
func (p Profile) Complete() bool {
	return p.Username != "" && p.FullName != ""
}

// Outcome is the result of one verification attempt.
// Build it with Valid, Invalid, ChallengeRequired or TransientError.
type Outcome struct {
	Status  Status    `json:"status"`
	Profile Profile   `json:"profile"`
	Message string    `json:"message,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Source  Source    `json:"source,omitempty"`
}

// From returns a copy of o attributed to src
func (o Outcome) From(src Source) Outcome {
	o.Source = src
	return o
}

// Valid builds a valid outcome
func Valid(p Profile) Outcome {
	return Outcome{Status: StatusValid, Profile: p}
}

// Invalid builds an invalid outcome
func Invalid(msg string) Outcome {
	return Outcome{Status: StatusInvalid, Message: msg}
}

// ChallengeRequired builds a challenge outcome
func ChallengeRequired(msg string) Outcome {
	return Outcome{Status: StatusChallengeRequired, Message: msg}
}

// TransientError builds an error outcome from err
func TransientError(err error) Outcome {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Outcome{Status: StatusError, Message: err.Error(), Kind: KindOf(err)}
}

// Request is a single verification request
type Request struct {
	Cookies       CookiePair
	Timeout       time.Duration
	CorrelationID string
}
