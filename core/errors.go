package core

import "errors"

var (
	ErrMissingSessionCookie     = errors.New("missing li_at")
	ErrMalformedSessionCookie   = errors.New("malformed li_at")
	ErrMalformedSecondaryCookie = errors.New("malformed jsessionid")
	ErrLaunch                   = errors.New("browser launch failed")
	ErrNavigation               = errors.New("navigation failed")
	ErrTimeout                  = errors.New("timeout")
	ErrExtractionAmbiguous      = errors.New("session accepted but profile could not be extracted")
	ErrVerifierDisabled         = errors.New("cookie verifier disabled")
	ErrRemote                   = errors.New("verification API error")
)

// ErrorKind classifies an error outcome
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindLaunch     ErrorKind = "launch"
	KindNavigation ErrorKind = "navigation"
	KindTimeout    ErrorKind = "timeout"
	KindExtraction ErrorKind = "extraction"
	KindDisabled   ErrorKind = "disabled"
	KindRemote     ErrorKind = "remote"
	KindInternal   ErrorKind = "internal"
)

// KindOf maps an error chain to its kind
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingSessionCookie),
		errors.Is(err, ErrMalformedSessionCookie),
		errors.Is(err, ErrMalformedSecondaryCookie):
		return KindValidation
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrLaunch):
		return KindLaunch
	case errors.Is(err, ErrNavigation):
		return KindNavigation
	case errors.Is(err, ErrExtractionAmbiguous):
		return KindExtraction
	case errors.Is(err, ErrVerifierDisabled):
		return KindDisabled
	case errors.Is(err, ErrRemote):
		return KindRemote
	default:
		return KindInternal
	}
}
